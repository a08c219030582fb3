package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCycleAndDayLifecycle(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := registerTestUser(t, app, "owner@example.com", "StrongPass1")

	// No active cycle yet.
	response := doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/cycles/current", nil), cookie))
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("current cycle status = %d, want 404", response.StatusCode)
	}

	request := withAuth(jsonRequest(t, http.MethodPost, "/api/cycles", map[string]any{
		"start_date": "2026-01-01",
	}), cookie)
	response = doRequest(t, app, request)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("start cycle status = %d, want 201", response.StatusCode)
	}
	cycle, _ := decodeBody(t, response)["cycle"].(map[string]any)
	if cycle["start_date"] != "2026-01-01" || cycle["active"] != true {
		t.Fatalf("created cycle = %v", cycle)
	}

	// Log a day inside the cycle.
	request = withAuth(jsonRequest(t, http.MethodPost, "/api/days/2026-01-05", map[string]any{
		"temperature":    36.55,
		"cervical_fluid": "eggwhite",
		"flow":           "none",
		"intercourse":    true,
	}), cookie)
	response = doRequest(t, app, request)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("upsert day status = %d, want 200", response.StatusCode)
	}
	day, _ := decodeBody(t, response)["day"].(map[string]any)
	if day["temperature"] != 36.55 || day["cervical_fluid"] != "eggwhite" {
		t.Fatalf("stored day = %v", day)
	}

	// A date outside any cycle is rejected.
	request = withAuth(jsonRequest(t, http.MethodPost, "/api/days/2025-12-20", map[string]any{
		"flow": "light",
	}), cookie)
	if response := doRequest(t, app, request); response.StatusCode != http.StatusBadRequest {
		t.Fatalf("out-of-cycle day status = %d, want 400", response.StatusCode)
	}

	// Read the day back.
	response = doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/days/2026-01-05", nil), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("get day status = %d, want 200", response.StatusCode)
	}

	// An all-empty payload removes it.
	request = withAuth(jsonRequest(t, http.MethodPost, "/api/days/2026-01-05", map[string]any{}), cookie)
	response = doRequest(t, app, request)
	if body := decodeBody(t, response); body["deleted"] != true {
		t.Fatalf("empty upsert response = %v, want deleted", body)
	}
	response = doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/days/2026-01-05", nil), cookie))
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted day status = %d, want 404", response.StatusCode)
	}

	// Starting the next cycle auto-ends the first one.
	request = withAuth(jsonRequest(t, http.MethodPost, "/api/cycles", map[string]any{
		"start_date": "2026-01-29",
	}), cookie)
	response = doRequest(t, app, request)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("second cycle status = %d, want 201", response.StatusCode)
	}

	response = doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/cycles", nil), cookie))
	body := decodeBody(t, response)
	cycles, _ := body["cycles"].([]any)
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	first, _ := cycles[0].(map[string]any)
	if first["active"] != false || first["end_date"] != "2026-01-28" {
		t.Fatalf("first cycle after auto-end = %v", first)
	}
	if first["length"] != float64(28) {
		t.Fatalf("first cycle length = %v, want 28", first["length"])
	}
}

func TestEndAndReactivateCycle(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := registerTestUser(t, app, "owner@example.com", "StrongPass1")

	request := withAuth(jsonRequest(t, http.MethodPost, "/api/cycles", map[string]any{
		"start_date": "2026-01-01",
	}), cookie)
	response := doRequest(t, app, request)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("start cycle status = %d, want 201", response.StatusCode)
	}

	request = withAuth(jsonRequest(t, http.MethodPost, "/api/days/2026-01-20", map[string]any{
		"flow": "light",
	}), cookie)
	doRequest(t, app, request)

	// Ending without a date falls back to the last logged day.
	request = withAuth(jsonRequest(t, http.MethodPost, "/api/cycles/1/end", map[string]any{}), cookie)
	response = doRequest(t, app, request)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("end cycle status = %d, want 200", response.StatusCode)
	}
	ended, _ := decodeBody(t, response)["cycle"].(map[string]any)
	if ended["end_date"] != "2026-01-20" || ended["active"] != false {
		t.Fatalf("ended cycle = %v", ended)
	}

	// An end date before the last logged day is rejected.
	request = withAuth(jsonRequest(t, http.MethodPost, "/api/cycles/1/end", map[string]any{
		"end_date": "2026-01-10",
	}), cookie)
	if response := doRequest(t, app, request); response.StatusCode != http.StatusBadRequest {
		t.Fatalf("early end status = %d, want 400", response.StatusCode)
	}

	request = withAuth(jsonRequest(t, http.MethodPost, "/api/cycles/1/reactivate", nil), cookie)
	response = doRequest(t, app, request)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("reactivate status = %d, want 200", response.StatusCode)
	}
	reopened, _ := decodeBody(t, response)["cycle"].(map[string]any)
	if reopened["active"] != true {
		t.Fatalf("reopened cycle = %v", reopened)
	}
	if _, hasEnd := reopened["end_date"]; hasEnd {
		t.Fatalf("reopened cycle still carries an end date: %v", reopened)
	}
}

func TestChartEndpointDetectsCoverline(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := registerTestUser(t, app, "owner@example.com", "StrongPass1")

	request := withAuth(jsonRequest(t, http.MethodPost, "/api/cycles", map[string]any{
		"start_date": "2026-01-01",
	}), cookie)
	doRequest(t, app, request)

	temps := []float64{36.40, 36.50, 36.30, 36.45, 36.50, 36.40, 36.70, 36.75, 36.80}
	dates := []string{
		"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04", "2026-01-05",
		"2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09",
	}
	for i, date := range dates {
		request = withAuth(jsonRequest(t, http.MethodPost, "/api/days/"+date, map[string]any{
			"temperature": temps[i],
		}), cookie)
		if response := doRequest(t, app, request); response.StatusCode != http.StatusOK {
			t.Fatalf("log day %s status = %d", date, response.StatusCode)
		}
	}

	response := doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/cycles/current/chart", nil), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("chart status = %d, want 200", response.StatusCode)
	}
	chart := decodeBody(t, response)
	if chart["coverline"] != 36.55 {
		t.Fatalf("coverline = %v, want 36.55", chart["coverline"])
	}
	if chart["ovulation_day"] != float64(6) {
		t.Fatalf("ovulation_day = %v, want 6", chart["ovulation_day"])
	}
	if chart["total_days"] != float64(28) {
		t.Fatalf("total_days = %v, want 28", chart["total_days"])
	}
}
