package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

const exportDateLayout = "2006-01-02"

var ExportCSVHeaders = []string{
	"Date",
	"Cycle Day",
	"Temperature (°C)",
	"Disturbed",
	"Cervical Fluid",
	"OPK",
	"Flow",
	"Intercourse",
	"Notes",
}

type ExportDayReader interface {
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.CycleDay, error)
}

type ExportCycleReader interface {
	ListByUser(userID uint) ([]models.Cycle, error)
}

type ExportService struct {
	days     ExportDayReader
	cycles   ExportCycleReader
	location *time.Location
}

type ExportSummary struct {
	TotalEntries int    `json:"total_entries"`
	HasData      bool   `json:"has_data"`
	DateFrom     string `json:"date_from"`
	DateTo       string `json:"date_to"`
}

type ExportJSONEntry struct {
	Date          string   `json:"date"`
	CycleDay      int      `json:"cycle_day"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TempDisturbed bool     `json:"temp_disturbed,omitempty"`
	CervicalFluid string   `json:"cervical_fluid,omitempty"`
	OPK           string   `json:"opk,omitempty"`
	Flow          string   `json:"flow"`
	Intercourse   bool     `json:"intercourse,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type ExportJSONCycle struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date,omitempty"`
	Active    bool              `json:"active"`
	Entries   []ExportJSONEntry `json:"entries"`
}

func NewExportService(days ExportDayReader, cycles ExportCycleReader, location *time.Location) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{days: days, cycles: cycles, location: location}
}

func (service *ExportService) Summary(userID uint, from *time.Time, to *time.Time) (ExportSummary, error) {
	days, err := service.loadRange(userID, from, to)
	if err != nil {
		return ExportSummary{}, err
	}
	if len(days) == 0 {
		return ExportSummary{}, nil
	}
	return ExportSummary{
		TotalEntries: len(days),
		HasData:      true,
		DateFrom:     days[0].Date.Format(exportDateLayout),
		DateTo:       days[len(days)-1].Date.Format(exportDateLayout),
	}, nil
}

// WriteCSV streams the user's days in the export column layout, temperatures
// in canonical Celsius.
func (service *ExportService) WriteCSV(writer io.Writer, userID uint, from *time.Time, to *time.Time) error {
	days, err := service.loadRange(userID, from, to)
	if err != nil {
		return err
	}
	cycles, err := service.cycles.ListByUser(userID)
	if err != nil {
		return err
	}
	startByCycleID := cycleStartIndex(cycles)

	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(ExportCSVHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, day := range days {
		record := []string{
			day.Date.Format(exportDateLayout),
			strconv.Itoa(service.cycleDayNumber(startByCycleID, day)),
			formatOptionalTemperature(day.Temperature),
			formatBool(day.TempDisturbed),
			day.CervicalFluid,
			day.OPK,
			day.Flow,
			formatBool(day.Intercourse),
			day.Notes,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// BuildJSON groups the user's days by cycle, skipping cycles with no entries
// in range.
func (service *ExportService) BuildJSON(userID uint, from *time.Time, to *time.Time) ([]ExportJSONCycle, error) {
	days, err := service.loadRange(userID, from, to)
	if err != nil {
		return nil, err
	}
	cycles, err := service.cycles.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	daysByCycleID := make(map[uint][]models.CycleDay, len(cycles))
	for _, day := range days {
		daysByCycleID[day.CycleID] = append(daysByCycleID[day.CycleID], day)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].StartDate.Before(cycles[j].StartDate)
	})

	result := make([]ExportJSONCycle, 0, len(cycles))
	for _, cycle := range cycles {
		cycleDays := daysByCycleID[cycle.ID]
		if len(cycleDays) == 0 {
			continue
		}

		entry := ExportJSONCycle{
			StartDate: cycle.StartDate.Format(exportDateLayout),
			Active:    cycle.Active,
			Entries:   make([]ExportJSONEntry, 0, len(cycleDays)),
		}
		if cycle.EndDate != nil {
			entry.EndDate = cycle.EndDate.Format(exportDateLayout)
		}

		start := DateAtLocation(cycle.StartDate, service.location)
		for _, day := range cycleDays {
			entry.Entries = append(entry.Entries, ExportJSONEntry{
				Date:          day.Date.Format(exportDateLayout),
				CycleDay:      CycleDayNumber(start, DateAtLocation(day.Date, service.location)),
				Temperature:   day.Temperature,
				TempDisturbed: day.TempDisturbed,
				CervicalFluid: day.CervicalFluid,
				OPK:           day.OPK,
				Flow:          day.Flow,
				Intercourse:   day.Intercourse,
				Notes:         day.Notes,
			})
		}
		result = append(result, entry)
	}

	return result, nil
}

func (service *ExportService) loadRange(userID uint, from *time.Time, to *time.Time) ([]models.CycleDay, error) {
	var fromStart *time.Time
	var toEnd *time.Time
	if from != nil {
		value := DateAtLocation(*from, service.location)
		fromStart = &value
	}
	if to != nil {
		value := DateAtLocation(*to, service.location).AddDate(0, 0, 1)
		toEnd = &value
	}
	return service.days.ListByUserRange(userID, fromStart, toEnd)
}

func (service *ExportService) cycleDayNumber(startByCycleID map[uint]time.Time, day models.CycleDay) int {
	start, known := startByCycleID[day.CycleID]
	if !known {
		return 0
	}
	return CycleDayNumber(DateAtLocation(start, service.location), DateAtLocation(day.Date, service.location))
}

func cycleStartIndex(cycles []models.Cycle) map[uint]time.Time {
	index := make(map[uint]time.Time, len(cycles))
	for _, cycle := range cycles {
		index[cycle.ID] = cycle.StartDate
	}
	return index
}

func formatOptionalTemperature(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return ""
}
