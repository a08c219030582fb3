package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

var ErrImportNoRows = errors.New("no importable rows")

const (
	importColDate        = "date"
	importColTemperature = "temperature"
	importColFluid       = "cervical_fluid"
	importColOPK         = "opk"
	importColFlow        = "flow"
	importColDisturbed   = "disturbed"
	importColNotes       = "notes"
)

var importHeaderAliases = map[string]string{
	"date":           importColDate,
	"day":            importColDate,
	"temp":           importColTemperature,
	"temperature":    importColTemperature,
	"bbt":            importColTemperature,
	"basal temp":     importColTemperature,
	"cervical fluid": importColFluid,
	"cervical mucus": importColFluid,
	"cf":             importColFluid,
	"cm":             importColFluid,
	"fluid":          importColFluid,
	"opk":            importColOPK,
	"lh":             importColOPK,
	"lh test":        importColOPK,
	"ovulation test": importColOPK,
	"flow":           importColFlow,
	"period":         importColFlow,
	"menses":         importColFlow,
	"bleeding":       importColFlow,
	"disturbed":      importColDisturbed,
	"deviation":      importColDisturbed,
	"notes":          importColNotes,
	"comment":        importColNotes,
}

// Column order assumed when the file carries no recognizable header.
var importDefaultColumns = []string{
	importColDate,
	importColTemperature,
	importColFluid,
	importColOPK,
	importColFlow,
	importColNotes,
}

const (
	layoutISO      = "2006-01-02"
	layoutDotted   = "02.01.2006"
	layoutSlashMD  = "01/02/2006"
	layoutSlashDM  = "02/01/2006"
	layoutSlashISO = "2006/01/02"
)

var importDateLayouts = []string{layoutISO, layoutDotted, layoutSlashMD, layoutSlashDM, layoutSlashISO}

// Any reading above this is taken as Fahrenheit; human BBT values in Celsius
// and Fahrenheit occupy disjoint bands (34-42 vs 93-108).
const fahrenheitThreshold = 45.0

type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported   int              `json:"imported"`
	Skipped    int              `json:"skipped"`
	Unit       string           `json:"unit"`
	DateLayout string           `json:"date_layout"`
	Errors     []ImportRowError `json:"errors"`
}

type importedRow struct {
	Line          int
	Date          time.Time
	Temperature   *float64 // Celsius
	TempDisturbed bool
	CervicalFluid string
	OPK           string
	Flow          string
	Notes         string
}

type ImportCycleRepository interface {
	ListByUser(userID uint) ([]models.Cycle, error)
	Create(cycle *models.Cycle) error
	Save(cycle *models.Cycle) error
}

type ImportDayRepository interface {
	ListByUser(userID uint) ([]models.CycleDay, error)
	Create(day *models.CycleDay) error
	Save(day *models.CycleDay) error
}

type ImportService struct {
	cycles   ImportCycleRepository
	days     ImportDayRepository
	location *time.Location
}

func NewImportService(cycles ImportCycleRepository, days ImportDayRepository, location *time.Location) *ImportService {
	if location == nil {
		location = time.UTC
	}
	return &ImportService{cycles: cycles, days: days, location: location}
}

// Import parses a CSV export from another tracker and merges it into the
// user's cycles, creating cycles at detected flow starts. Rows for dates that
// already exist are skipped unless overwrite is set.
func (service *ImportService) Import(userID uint, reader io.Reader, overwrite bool) (ImportResult, error) {
	rows, unit, layout, rowErrors, err := parseImportCSV(reader, service.location)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Unit: unit, DateLayout: layout, Errors: rowErrors}
	if len(rows) == 0 {
		return result, ErrImportNoRows
	}

	existingDays, err := service.days.ListByUser(userID)
	if err != nil {
		return ImportResult{}, err
	}
	cycles, err := service.cycles.ListByUser(userID)
	if err != nil {
		return ImportResult{}, err
	}

	cycles, err = service.ensureCyclesForRows(userID, cycles, existingDays, rows)
	if err != nil {
		return ImportResult{}, err
	}

	existingByDate := make(map[string]models.CycleDay, len(existingDays))
	for _, day := range existingDays {
		existingByDate[DateAtLocation(day.Date, service.location).Format(layoutISO)] = day
	}

	for _, row := range rows {
		cycle, covered := coveringCycle(cycles, row.Date)
		if !covered {
			result.Errors = append(result.Errors, ImportRowError{
				Line:    row.Line,
				Message: "date precedes the first cycle start",
			})
			continue
		}

		day := models.CycleDay{
			CycleID:       cycle.ID,
			UserID:        userID,
			Date:          row.Date,
			Temperature:   row.Temperature,
			TempDisturbed: row.TempDisturbed,
			CervicalFluid: row.CervicalFluid,
			OPK:           row.OPK,
			Flow:          row.Flow,
			Notes:         row.Notes,
		}

		if existing, exists := existingByDate[row.Date.Format(layoutISO)]; exists {
			if !overwrite {
				result.Skipped++
				continue
			}
			day.ID = existing.ID
			day.CreatedAt = existing.CreatedAt
			if err := service.days.Save(&day); err != nil {
				return ImportResult{}, err
			}
		} else if err := service.days.Create(&day); err != nil {
			return ImportResult{}, err
		}
		result.Imported++
	}

	if result.Imported == 0 && result.Skipped == 0 {
		return result, ErrImportNoRows
	}
	return result, nil
}

// ensureCyclesForRows detects cycle starts from flow days (existing and
// imported) and creates the missing cycles, ending each predecessor the day
// before the next start.
func (service *ImportService) ensureCyclesForRows(userID uint, cycles []models.Cycle, existingDays []models.CycleDay, rows []importedRow) ([]models.Cycle, error) {
	flowDates := make(map[string]time.Time)
	for _, day := range existingDays {
		if day.IsFlowDay() {
			date := DateAtLocation(day.Date, service.location)
			flowDates[date.Format(layoutISO)] = date
		}
	}
	for _, row := range rows {
		probe := models.CycleDay{Flow: row.Flow}
		if probe.IsFlowDay() {
			flowDates[row.Date.Format(layoutISO)] = row.Date
		}
	}

	starts := detectFlowStarts(flowDates)

	for _, start := range starts {
		if _, covered := coveringCycle(cycles, start); covered {
			continue
		}

		// End the closest earlier open cycle right before the new start.
		for i := range cycles {
			if cycles[i].StartDate.Before(start) && cycles[i].EndDate == nil {
				end := start.AddDate(0, 0, -1)
				cycles[i].EndDate = &end
				cycles[i].Active = false
				if err := service.cycles.Save(&cycles[i]); err != nil {
					return nil, err
				}
			}
		}

		cycle := models.Cycle{UserID: userID, StartDate: start, Active: true}
		if next, hasNext := nextCycleStart(cycles, starts, start); hasNext {
			end := next.AddDate(0, 0, -1)
			cycle.EndDate = &end
			cycle.Active = false
		}
		if err := service.cycles.Create(&cycle); err != nil {
			return nil, err
		}
		cycles = append(cycles, cycle)
		sort.Slice(cycles, func(i, j int) bool {
			return cycles[i].StartDate.Before(cycles[j].StartDate)
		})
	}

	return cycles, nil
}

// detectFlowStarts marks a cycle start at every flow day preceded by at least
// five clear days (or nothing at all).
func detectFlowStarts(flowDates map[string]time.Time) []time.Time {
	dates := make([]time.Time, 0, len(flowDates))
	for _, date := range flowDates {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	starts := make([]time.Time, 0)
	for i, date := range dates {
		if i == 0 {
			starts = append(starts, date)
			continue
		}
		gapDays := DaysBetween(dates[i-1], date) - 1
		if gapDays >= 5 {
			starts = append(starts, date)
		}
	}
	return starts
}

func coveringCycle(cycles []models.Cycle, day time.Time) (models.Cycle, bool) {
	for i := len(cycles) - 1; i >= 0; i-- {
		if cycles[i].Contains(day) {
			return cycles[i], true
		}
	}
	return models.Cycle{}, false
}

func nextCycleStart(cycles []models.Cycle, starts []time.Time, after time.Time) (time.Time, bool) {
	best := time.Time{}
	found := false
	consider := func(candidate time.Time) {
		if !candidate.After(after) {
			return
		}
		if !found || candidate.Before(best) {
			best = candidate
			found = true
		}
	}
	for _, cycle := range cycles {
		consider(cycle.StartDate)
	}
	for _, start := range starts {
		consider(start)
	}
	return best, found
}

func parseImportCSV(reader io.Reader, location *time.Location) ([]importedRow, string, string, []ImportRowError, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, "", "", nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	records = dropBlankRecords(records)
	if len(records) == 0 {
		return nil, "", "", nil, ErrImportNoRows
	}

	columns, hasHeader := detectImportHeader(records[0])
	firstDataLine := 1
	if hasHeader {
		records = records[1:]
		firstDataLine = 2
	}
	if len(records) == 0 {
		return nil, "", "", nil, ErrImportNoRows
	}

	dateIndex, hasDate := columns[importColDate]
	if !hasDate {
		return nil, "", "", nil, errors.New("no date column")
	}

	dateCells := make([]string, 0, len(records))
	tempValues := make([]float64, 0, len(records))
	for _, record := range records {
		if cell := cellAt(record, dateIndex); cell != "" {
			dateCells = append(dateCells, cell)
		}
		if index, ok := columns[importColTemperature]; ok {
			if value, err := parseTemperatureCell(cellAt(record, index)); err == nil && value != nil {
				tempValues = append(tempValues, *value)
			}
		}
	}

	layout, err := inferDateLayout(dateCells)
	if err != nil {
		return nil, "", "", nil, err
	}
	unit := inferTemperatureUnit(tempValues)

	rows := make([]importedRow, 0, len(records))
	rowErrors := make([]ImportRowError, 0)
	seenDates := make(map[string]int)

	for offset, record := range records {
		line := firstDataLine + offset
		fail := func(message string) {
			rowErrors = append(rowErrors, ImportRowError{Line: line, Message: message})
		}

		dateCell := cellAt(record, dateIndex)
		if dateCell == "" {
			fail("missing date")
			continue
		}
		parsedDate, err := time.ParseInLocation(layout, dateCell, location)
		if err != nil {
			fail(fmt.Sprintf("unparseable date %q", dateCell))
			continue
		}
		date := DateAtLocation(parsedDate, location)

		dateKey := date.Format(layoutISO)
		if firstLine, duplicate := seenDates[dateKey]; duplicate {
			fail(fmt.Sprintf("duplicate date %s (first seen on line %d)", dateKey, firstLine))
			continue
		}
		seenDates[dateKey] = line

		row := importedRow{Line: line, Date: date}

		if index, ok := columns[importColTemperature]; ok {
			raw, err := parseTemperatureCell(cellAt(record, index))
			if err != nil {
				fail(err.Error())
				continue
			}
			if raw != nil {
				celsius, err := NormalizeTemperatureInput(*raw, unit)
				if err != nil {
					fail(fmt.Sprintf("temperature %v out of range", *raw))
					continue
				}
				row.Temperature = &celsius
			}
		}

		if index, ok := columns[importColFluid]; ok {
			fluid, ok := normalizeFluidValue(cellAt(record, index))
			if !ok {
				fail(fmt.Sprintf("unknown cervical fluid %q", cellAt(record, index)))
				continue
			}
			row.CervicalFluid = fluid
		}

		if index, ok := columns[importColOPK]; ok {
			opk, ok := normalizeOPKValue(cellAt(record, index))
			if !ok {
				fail(fmt.Sprintf("unknown opk value %q", cellAt(record, index)))
				continue
			}
			row.OPK = opk
		}

		row.Flow = models.FlowNone
		if index, ok := columns[importColFlow]; ok {
			flow, ok := normalizeFlowValue(cellAt(record, index))
			if !ok {
				fail(fmt.Sprintf("unknown flow value %q", cellAt(record, index)))
				continue
			}
			row.Flow = flow
		}

		if index, ok := columns[importColDisturbed]; ok {
			row.TempDisturbed = parseBoolCell(cellAt(record, index)) && row.Temperature != nil
		}

		if index, ok := columns[importColNotes]; ok {
			row.Notes = TrimDayNotes(cellAt(record, index))
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, unit, layout, rowErrors, nil
}

// detectImportHeader maps column roles to indices when the first record looks
// like a header; otherwise the default column order applies.
func detectImportHeader(record []string) (map[string]int, bool) {
	columns := make(map[string]int)
	for index, cell := range record {
		key := strings.ToLower(strings.TrimSpace(cell))
		key = strings.Join(strings.Fields(key), " ")
		role, known := importHeaderAliases[key]
		if !known {
			continue
		}
		if _, taken := columns[role]; !taken {
			columns[role] = index
		}
	}
	if len(columns) > 0 {
		return columns, true
	}

	columns = make(map[string]int, len(importDefaultColumns))
	for index, role := range importDefaultColumns {
		columns[role] = index
	}
	return columns, false
}

// inferDateLayout picks the candidate layout that parses every non-empty date
// cell. When both slash layouts survive, a first token above 12 anywhere in
// the file proves day-first; otherwise month-first wins.
func inferDateLayout(cells []string) (string, error) {
	if len(cells) == 0 {
		return "", errors.New("no date values")
	}

	surviving := make(map[string]bool, len(importDateLayouts))
	for _, layout := range importDateLayouts {
		surviving[layout] = true
	}
	for _, cell := range cells {
		for layout := range surviving {
			if _, err := time.Parse(layout, cell); err != nil {
				delete(surviving, layout)
			}
		}
	}
	if len(surviving) == 0 {
		return "", fmt.Errorf("no known date layout matches %q", cells[0])
	}

	if surviving[layoutISO] {
		return layoutISO, nil
	}
	if surviving[layoutSlashISO] {
		return layoutSlashISO, nil
	}
	if surviving[layoutDotted] {
		return layoutDotted, nil
	}
	if surviving[layoutSlashMD] && surviving[layoutSlashDM] {
		for _, cell := range cells {
			first, _, found := strings.Cut(cell, "/")
			if !found {
				continue
			}
			if value, err := strconv.Atoi(first); err == nil && value > 12 {
				return layoutSlashDM, nil
			}
		}
		return layoutSlashMD, nil
	}
	if surviving[layoutSlashMD] {
		return layoutSlashMD, nil
	}
	return layoutSlashDM, nil
}

// inferTemperatureUnit decides per file: any reading past the threshold makes
// the whole file Fahrenheit.
func inferTemperatureUnit(values []float64) string {
	for _, value := range values {
		if value > fahrenheitThreshold {
			return models.UnitFahrenheit
		}
	}
	return models.UnitCelsius
}

func parseTemperatureCell(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	cell = strings.ReplaceAll(cell, ",", ".")
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable temperature %q", cell)
	}
	return &value, nil
}

func normalizeFlowValue(cell string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "none", "0", "no":
		return models.FlowNone, true
	case "spotting":
		return models.FlowSpotting, true
	case "light", "1":
		return models.FlowLight, true
	case "medium", "2":
		return models.FlowMedium, true
	case "heavy", "3":
		return models.FlowHeavy, true
	default:
		return "", false
	}
}

func normalizeFluidValue(cell string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "none":
		return models.FluidNone, true
	case "dry":
		return models.FluidDry, true
	case "sticky":
		return models.FluidSticky, true
	case "creamy":
		return models.FluidCreamy, true
	case "watery":
		return models.FluidWatery, true
	case "eggwhite", "egg white", "ewcm":
		return models.FluidEggwhite, true
	default:
		return "", false
	}
}

func normalizeOPKValue(cell string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "none", "not taken":
		return models.OPKNone, true
	case "negative", "neg", "-", "low":
		return models.OPKNegative, true
	case "positive", "pos", "+":
		return models.OPKPositive, true
	case "peak", "high":
		return models.OPKPeak, true
	default:
		return "", false
	}
}

func parseBoolCell(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "yes", "y", "true", "1", "x":
		return true
	default:
		return false
	}
}

func cellAt(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func dropBlankRecords(records [][]string) [][]string {
	kept := make([][]string, 0, len(records))
	for _, record := range records {
		blank := true
		for _, cell := range record {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			kept = append(kept, record)
		}
	}
	return kept
}
