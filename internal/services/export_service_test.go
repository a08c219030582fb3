package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

func exportFixture() (*fakeCycleRepo, *fakeDayRepo) {
	end := day(2026, 1, 28)
	cycles := newFakeCycleRepo(
		models.Cycle{UserID: 1, StartDate: day(2026, 1, 1), EndDate: &end},
		models.Cycle{UserID: 1, StartDate: day(2026, 1, 29), Active: true},
	)
	days := newFakeDayRepo(
		models.CycleDay{CycleID: 1, UserID: 1, Date: day(2026, 1, 1), Flow: models.FlowMedium},
		models.CycleDay{CycleID: 1, UserID: 1, Date: day(2026, 1, 5), Temperature: temp(36.55), CervicalFluid: models.FluidEggwhite, Intercourse: true, Flow: models.FlowNone},
		models.CycleDay{CycleID: 2, UserID: 1, Date: day(2026, 1, 30), Flow: models.FlowLight, Notes: "cramps"},
	)
	return cycles, days
}

func TestExportSummary(t *testing.T) {
	cycles, days := exportFixture()
	service := NewExportService(days, cycles, time.UTC)

	summary, err := service.Summary(1, nil, nil)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalEntries != 3 || !summary.HasData {
		t.Fatalf("summary = %+v, want 3 entries", summary)
	}
	if summary.DateFrom != "2026-01-01" || summary.DateTo != "2026-01-30" {
		t.Fatalf("range = %s..%s, want 2026-01-01..2026-01-30", summary.DateFrom, summary.DateTo)
	}

	from := day(2026, 1, 2)
	to := day(2026, 1, 5)
	summary, err = service.Summary(1, &from, &to)
	if err != nil {
		t.Fatalf("Summary() with range error = %v", err)
	}
	if summary.TotalEntries != 1 {
		t.Fatalf("ranged entries = %d, want 1 (the range end is inclusive)", summary.TotalEntries)
	}
}

func TestExportSummaryEmpty(t *testing.T) {
	service := NewExportService(newFakeDayRepo(), newFakeCycleRepo(), time.UTC)

	summary, err := service.Summary(1, nil, nil)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.HasData || summary.TotalEntries != 0 {
		t.Fatalf("summary = %+v, want empty", summary)
	}
}

func TestWriteCSV(t *testing.T) {
	cycles, days := exportFixture()
	service := NewExportService(days, cycles, time.UTC)

	var buffer bytes.Buffer
	if err := service.WriteCSV(&buffer, 1, nil, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buffer).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d records", len(records))
	}
	if records[0][0] != "Date" || records[0][2] != "Temperature (°C)" {
		t.Fatalf("header = %v", records[0])
	}

	row := records[2] // 2026-01-05
	if row[0] != "2026-01-05" {
		t.Fatalf("date = %s, want 2026-01-05", row[0])
	}
	if row[1] != "5" {
		t.Fatalf("cycle day = %s, want 5", row[1])
	}
	if row[2] != "36.55" {
		t.Fatalf("temperature = %s, want 36.55", row[2])
	}
	if row[4] != models.FluidEggwhite {
		t.Fatalf("fluid = %s, want eggwhite", row[4])
	}
	if row[7] != "yes" {
		t.Fatalf("intercourse = %q, want yes", row[7])
	}

	secondCycleRow := records[3]
	if secondCycleRow[1] != "2" {
		t.Fatalf("second cycle day = %s, want 2", secondCycleRow[1])
	}
}

func TestBuildJSONGroupsByCycle(t *testing.T) {
	cycles, days := exportFixture()
	service := NewExportService(days, cycles, time.UTC)

	grouped, err := service.BuildJSON(1, nil, nil)
	if err != nil {
		t.Fatalf("BuildJSON() error = %v", err)
	}
	if len(grouped) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(grouped))
	}

	first := grouped[0]
	if first.StartDate != "2026-01-01" || first.EndDate != "2026-01-28" || first.Active {
		t.Fatalf("first cycle = %+v", first)
	}
	if len(first.Entries) != 2 {
		t.Fatalf("first cycle entries = %d, want 2", len(first.Entries))
	}
	if first.Entries[1].CycleDay != 5 {
		t.Fatalf("entry cycle day = %d, want 5", first.Entries[1].CycleDay)
	}

	second := grouped[1]
	if !second.Active || second.EndDate != "" {
		t.Fatalf("second cycle = %+v, want active without end", second)
	}
	if len(second.Entries) != 1 || second.Entries[0].Notes != "cramps" {
		t.Fatalf("second cycle entries = %+v", second.Entries)
	}
}

func TestBuildJSONSkipsCyclesWithoutEntries(t *testing.T) {
	cycles, _ := exportFixture()
	days := newFakeDayRepo(models.CycleDay{CycleID: 2, UserID: 1, Date: day(2026, 1, 30), Flow: models.FlowLight})
	service := NewExportService(days, cycles, time.UTC)

	grouped, err := service.BuildJSON(1, nil, nil)
	if err != nil {
		t.Fatalf("BuildJSON() error = %v", err)
	}
	if len(grouped) != 1 {
		t.Fatalf("expected only the cycle with entries, got %d", len(grouped))
	}
	if grouped[0].StartDate != "2026-01-29" {
		t.Fatalf("StartDate = %s, want 2026-01-29", grouped[0].StartDate)
	}
}
