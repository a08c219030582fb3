package api

import (
	"bytes"
	"encoding/csv"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func csvImportRequest(t *testing.T, csvData string, overwrite bool) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "export.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.Copy(part, strings.NewReader(csvData)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if overwrite {
		if err := writer.WriteField("overwrite", "true"); err != nil {
			t.Fatalf("write overwrite field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/import/csv", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestImportThenExportRoundTrip(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := registerTestUser(t, app, "owner@example.com", "StrongPass1")

	csvData := strings.Join([]string{
		"Date,BBT,Flow,Notes",
		"2026-01-01,36.50,medium,",
		"2026-01-02,36.55,light,",
		"2026-01-05,36.45,,slept badly",
	}, "\n")

	response := doRequest(t, app, withAuth(csvImportRequest(t, csvData, false), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d, want 200", response.StatusCode)
	}
	result := decodeBody(t, response)
	if result["imported"] != float64(3) {
		t.Fatalf("imported = %v, want 3", result["imported"])
	}
	if result["unit"] != "celsius" {
		t.Fatalf("unit = %v, want celsius", result["unit"])
	}

	// The import created a cycle at the first flow day.
	response = doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/cycles/current", nil), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("current cycle status = %d, want 200", response.StatusCode)
	}
	cycle, _ := decodeBody(t, response)["cycle"].(map[string]any)
	if cycle["start_date"] != "2026-01-01" {
		t.Fatalf("cycle start = %v, want 2026-01-01", cycle["start_date"])
	}

	// Re-importing without overwrite skips every row.
	response = doRequest(t, app, withAuth(csvImportRequest(t, csvData, false), cookie))
	result = decodeBody(t, response)
	if result["imported"] != float64(0) || result["skipped"] != float64(3) {
		t.Fatalf("re-import = %v, want everything skipped", result)
	}

	// CSV export carries the imported rows back out.
	response = doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/export/csv", nil), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d, want 200", response.StatusCode)
	}
	if disposition := response.Header.Get("Content-Disposition"); !strings.Contains(disposition, "attachment") {
		t.Fatalf("Content-Disposition = %q, want an attachment", disposition)
	}

	records, err := csv.NewReader(response.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d records", len(records))
	}
	if records[1][0] != "2026-01-01" || records[1][6] != "medium" {
		t.Fatalf("first exported row = %v", records[1])
	}
	if records[3][8] != "slept badly" {
		t.Fatalf("notes column = %q, want slept badly", records[3][8])
	}
}

func TestImportWithNoImportableRowsIsRejected(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := registerTestUser(t, app, "owner@example.com", "StrongPass1")

	request := withAuth(jsonRequest(t, http.MethodPost, "/api/cycles", map[string]any{
		"start_date": "2026-02-01",
	}), cookie)
	doRequest(t, app, request)

	// Every row predates the only cycle.
	csvData := "Date,BBT\n2026-01-05,36.50\n2026-01-06,36.55\n"

	response := doRequest(t, app, withAuth(csvImportRequest(t, csvData, false), cookie))
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("import status = %d, want 400", response.StatusCode)
	}
	body := decodeBody(t, response)
	if body["error"] != "no importable rows" {
		t.Fatalf("error = %v, want no importable rows", body["error"])
	}
	rowErrors, _ := body["errors"].([]any)
	if len(rowErrors) != 2 {
		t.Fatalf("expected 2 row errors, got %v", body["errors"])
	}
}

func TestExportSummaryAndJSON(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := registerTestUser(t, app, "owner@example.com", "StrongPass1")

	request := withAuth(jsonRequest(t, http.MethodPost, "/api/cycles", map[string]any{
		"start_date": "2026-01-01",
	}), cookie)
	doRequest(t, app, request)
	request = withAuth(jsonRequest(t, http.MethodPost, "/api/days/2026-01-03", map[string]any{
		"temperature": 36.6,
		"flow":        "light",
	}), cookie)
	doRequest(t, app, request)

	response := doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/export/summary", nil), cookie))
	summary := decodeBody(t, response)
	if summary["total_entries"] != float64(1) || summary["has_data"] != true {
		t.Fatalf("summary = %v", summary)
	}
	if summary["date_from"] != "2026-01-03" {
		t.Fatalf("date_from = %v, want 2026-01-03", summary["date_from"])
	}

	response = doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/export/json", nil), cookie))
	body := decodeBody(t, response)
	cycles, _ := body["cycles"].([]any)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 exported cycle, got %d", len(cycles))
	}
	exported, _ := cycles[0].(map[string]any)
	entries, _ := exported["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry, _ := entries[0].(map[string]any)
	if entry["cycle_day"] != float64(3) {
		t.Fatalf("cycle_day = %v, want 3", entry["cycle_day"])
	}

	// An inverted range is rejected.
	request = withAuth(httptest.NewRequest(http.MethodGet, "/api/export/summary?from=2026-02-01&to=2026-01-01", nil), cookie)
	if response := doRequest(t, app, request); response.StatusCode != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d, want 400", response.StatusCode)
	}
}

func TestStatsOverviewEndpoint(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := registerTestUser(t, app, "owner@example.com", "StrongPass1")

	request := withAuth(jsonRequest(t, http.MethodPost, "/api/cycles", map[string]any{
		"start_date": "2026-01-01",
	}), cookie)
	doRequest(t, app, request)

	response := doRequest(t, app, withAuth(httptest.NewRequest(http.MethodGet, "/api/stats/overview", nil), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", response.StatusCode)
	}
	stats := decodeBody(t, response)
	if _, ok := stats["current_phase"]; !ok {
		t.Fatalf("stats = %v, want a current_phase field", stats)
	}
	if _, ok := stats["next_period_start"]; !ok {
		t.Fatalf("stats = %v, want a next_period_start field", stats)
	}
}
