package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

const (
	chartMinDays = 21
	chartMaxDays = 60

	// 3-over-6 coverline rule parameters.
	coverlineLowDays  = 6
	coverlineHighDays = 3

	chartDateLayout = "2006-01-02"
)

// ChartPoint is a plotted temperature, positioned on the day-aligned grid.
// X is the horizontal center of the point's day column as a fraction of the
// plot width, so the overlay table and the temperature line share coordinates.
type ChartPoint struct {
	Day         int     `json:"day"`
	X           float64 `json:"x"`
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Disturbed   bool    `json:"disturbed,omitempty"`
}

type ChartColumn struct {
	Day    int     `json:"day"`
	X      float64 `json:"x"`
	Date   string  `json:"date"`
	Logged bool    `json:"logged"`
}

// OverlayRow is one observation row of the chart table (flow, fluid, opk,
// intercourse), keyed by cycle day number.
type OverlayRow struct {
	Name  string         `json:"name"`
	Cells map[int]string `json:"cells"`
}

type ChartData struct {
	CycleID      uint           `json:"cycle_id"`
	Unit         string         `json:"unit"`
	TotalDays    int            `json:"total_days"`
	Columns      []ChartColumn  `json:"columns"`
	Segments     [][]ChartPoint `json:"segments"`
	Excluded     []ChartPoint   `json:"excluded"`
	Coverline    *float64       `json:"coverline,omitempty"`
	ShiftDay     int            `json:"shift_day,omitempty"`
	OvulationDay int            `json:"ovulation_day,omitempty"`
	Rows         []OverlayRow   `json:"rows"`
}

// BuildChart derives render-ready chart data for one cycle. Included
// temperatures (present, undisturbed, inside the plot band) are split into
// polyline segments at every gap; everything else plottable lands in Excluded.
func BuildChart(cycle models.Cycle, days []models.CycleDay, unit string, defaultCycleLength int, location *time.Location) ChartData {
	if !models.IsValidTemperatureUnit(unit) {
		unit = models.UnitCelsius
	}
	if defaultCycleLength <= 0 {
		defaultCycleLength = models.DefaultCycleLength
	}
	if location == nil {
		location = time.UTC
	}

	start := DateAtLocation(cycle.StartDate, location)

	sorted := make([]models.CycleDay, 0, len(days))
	sorted = append(sorted, days...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	byDay := make(map[int]models.CycleDay, len(sorted))
	maxDay := 0
	for _, day := range sorted {
		number := CycleDayNumber(start, DateAtLocation(day.Date, location))
		if number < 1 {
			continue
		}
		byDay[number] = day
		if number > maxDay {
			maxDay = number
		}
	}

	totalDays := chartTotalDays(maxDay, defaultCycleLength, cycle.Length())

	data := ChartData{
		CycleID:   cycle.ID,
		Unit:      unit,
		TotalDays: totalDays,
		Columns:   make([]ChartColumn, 0, totalDays),
		Segments:  make([][]ChartPoint, 0),
		Excluded:  make([]ChartPoint, 0),
	}

	for number := 1; number <= totalDays; number++ {
		_, logged := byDay[number]
		data.Columns = append(data.Columns, ChartColumn{
			Day:    number,
			X:      dayCenterFraction(number, totalDays),
			Date:   start.AddDate(0, 0, number-1).Format(chartDateLayout),
			Logged: logged,
		})
	}

	included := make([]ChartPoint, 0, len(byDay))
	segment := make([]ChartPoint, 0)
	previousDay := 0
	for number := 1; number <= totalDays; number++ {
		day, logged := byDay[number]
		if !logged || day.Temperature == nil {
			continue
		}

		point := ChartPoint{
			Day:         number,
			X:           dayCenterFraction(number, totalDays),
			Date:        start.AddDate(0, 0, number-1).Format(chartDateLayout),
			Temperature: *day.Temperature,
			Disturbed:   day.TempDisturbed,
		}

		if day.TempDisturbed || !InPlotBand(*day.Temperature) {
			data.Excluded = append(data.Excluded, point)
			continue
		}

		if len(segment) > 0 && number != previousDay+1 {
			data.Segments = append(data.Segments, segment)
			segment = make([]ChartPoint, 0)
		}
		segment = append(segment, point)
		included = append(included, point)
		previousDay = number
	}
	if len(segment) > 0 {
		data.Segments = append(data.Segments, segment)
	}

	if coverline, shiftDay, found := detectCoverline(included); found {
		data.Coverline = &coverline
		data.ShiftDay = shiftDay
		data.OvulationDay = shiftDay - 1
	}

	data.Rows = buildOverlayRows(byDay, totalDays)
	convertChartUnit(&data, unit)
	return data
}

func chartTotalDays(maxLoggedDay int, defaultCycleLength int, endedLength int) int {
	total := maxLoggedDay
	if defaultCycleLength > total {
		total = defaultCycleLength
	}
	if endedLength > total {
		total = endedLength
	}
	if total < chartMinDays {
		total = chartMinDays
	}
	if total > chartMaxDays {
		total = chartMaxDays
	}
	return total
}

// dayCenterFraction positions day n at the center of its grid column.
func dayCenterFraction(day int, totalDays int) float64 {
	return math.Round((float64(day)-0.5)/float64(totalDays)*10000) / 10000
}

// detectCoverline applies the 3-over-6 rule to included points ordered by day:
// the first point preceded by at least six included points and opening a run
// of three all strictly above the six-day high fixes the coverline at that
// high plus the standard offset.
func detectCoverline(included []ChartPoint) (float64, int, bool) {
	for i := coverlineLowDays; i+coverlineHighDays <= len(included); i++ {
		high := included[i-coverlineLowDays].Temperature
		for _, low := range included[i-coverlineLowDays : i] {
			if low.Temperature > high {
				high = low.Temperature
			}
		}

		qualifies := true
		for _, candidate := range included[i : i+coverlineHighDays] {
			if candidate.Temperature <= high {
				qualifies = false
				break
			}
		}
		if qualifies {
			return RoundTemperature(high + CoverlineOffsetCelsius), included[i].Day, true
		}
	}
	return 0, 0, false
}

func buildOverlayRows(byDay map[int]models.CycleDay, totalDays int) []OverlayRow {
	flow := OverlayRow{Name: "flow", Cells: make(map[int]string)}
	fluid := OverlayRow{Name: "cervical_fluid", Cells: make(map[int]string)}
	opk := OverlayRow{Name: "opk", Cells: make(map[int]string)}
	intercourse := OverlayRow{Name: "intercourse", Cells: make(map[int]string)}

	for number := 1; number <= totalDays; number++ {
		day, logged := byDay[number]
		if !logged {
			continue
		}
		if day.Flow != "" && day.Flow != models.FlowNone {
			flow.Cells[number] = day.Flow
		}
		if day.CervicalFluid != models.FluidNone {
			fluid.Cells[number] = day.CervicalFluid
		}
		if day.OPK != models.OPKNone {
			opk.Cells[number] = day.OPK
		}
		if day.Intercourse {
			intercourse.Cells[number] = "yes"
		}
	}

	return []OverlayRow{flow, fluid, opk, intercourse}
}

func convertChartUnit(data *ChartData, unit string) {
	convert := func(point *ChartPoint) {
		point.Temperature = DisplayTemperature(point.Temperature, unit)
	}
	for i := range data.Segments {
		for j := range data.Segments[i] {
			convert(&data.Segments[i][j])
		}
	}
	for i := range data.Excluded {
		convert(&data.Excluded[i])
	}
	if data.Coverline != nil {
		converted := DisplayTemperature(*data.Coverline, unit)
		data.Coverline = &converted
	}
}
