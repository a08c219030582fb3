package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

const statsRecentCycles = 6

const (
	PhaseUnknown    = "unknown"
	PhaseMenstrual  = "menstrual"
	PhaseFollicular = "follicular"
	PhaseFertile    = "fertile"
	PhaseOvulation  = "ovulation"
	PhaseLuteal     = "luteal"
)

type CycleStats struct {
	CurrentCycleDay      int       `json:"current_cycle_day"`
	CurrentPhase         string    `json:"current_phase"`
	AverageCycleLength   float64   `json:"average_cycle_length"`
	MedianCycleLength    int       `json:"median_cycle_length"`
	AveragePeriodLength  float64   `json:"average_period_length"`
	AverageLutealLength  float64   `json:"average_luteal_length"`
	NextPeriodStart      time.Time `json:"next_period_start"`
	OvulationDate        time.Time `json:"ovulation_date"`
	FertilityWindowStart time.Time `json:"fertility_window_start"`
	FertilityWindowEnd   time.Time `json:"fertility_window_end"`
}

// BuildCycleStats derives the overview from explicit cycle records and their
// days. Cycle lengths come from ended cycles; luteal lengths from cycles whose
// chart shows a thermal shift.
func BuildCycleStats(cycles []models.Cycle, days []models.CycleDay, now time.Time, lutealPhaseDays int, defaultCycleLength int, location *time.Location) CycleStats {
	stats := CycleStats{CurrentPhase: PhaseUnknown}
	if len(cycles) == 0 {
		return stats
	}
	if lutealPhaseDays <= 0 {
		lutealPhaseDays = models.DefaultLutealPhaseDays
	}
	if defaultCycleLength <= 0 {
		defaultCycleLength = models.DefaultCycleLength
	}
	if location == nil {
		location = time.UTC
	}

	sorted := make([]models.Cycle, 0, len(cycles))
	sorted = append(sorted, cycles...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	daysByCycleID := make(map[uint][]models.CycleDay, len(sorted))
	for _, day := range days {
		daysByCycleID[day.CycleID] = append(daysByCycleID[day.CycleID], day)
	}

	lengths := make([]int, 0, len(sorted))
	periodLengths := make([]int, 0, len(sorted))
	lutealLengths := make([]int, 0, len(sorted))
	for _, cycle := range sorted {
		length := cycle.Length()
		if length > 0 {
			lengths = append(lengths, length)
		}
		if period := periodLength(cycle, daysByCycleID[cycle.ID], location); period > 0 {
			periodLengths = append(periodLengths, period)
		}
		if length > 0 {
			if luteal := lutealLength(cycle, daysByCycleID[cycle.ID], location); luteal > 0 {
				lutealLengths = append(lutealLengths, luteal)
			}
		}
	}

	recentLengths := tailInts(lengths, statsRecentCycles)
	if len(recentLengths) > 0 {
		stats.AverageCycleLength = averageInts(recentLengths)
		stats.MedianCycleLength = medianInt(recentLengths)
	}
	if recent := tailInts(periodLengths, statsRecentCycles); len(recent) > 0 {
		stats.AveragePeriodLength = averageInts(recent)
	}
	if recent := tailInts(lutealLengths, statsRecentCycles); len(recent) > 0 {
		stats.AverageLutealLength = averageInts(recent)
	}

	// Predictions anchor on the active cycle; with none, the next period
	// start is unknowable and the fields stay zero.
	latest := sorted[len(sorted)-1]
	if !latest.Active {
		return stats
	}
	latestStart := DateAtLocation(latest.StartDate, location)

	predictionCycleLength := stats.MedianCycleLength
	if predictionCycleLength == 0 {
		predictionCycleLength = defaultCycleLength
	}

	stats.NextPeriodStart = latestStart.AddDate(0, 0, predictionCycleLength)
	stats.OvulationDate = stats.NextPeriodStart.AddDate(0, 0, -lutealPhaseDays)
	stats.FertilityWindowStart = stats.OvulationDate.AddDate(0, 0, -5)
	stats.FertilityWindowEnd = stats.OvulationDate.AddDate(0, 0, 1)

	today := DateAtLocation(now, location)
	if !today.Before(latestStart) {
		stats.CurrentCycleDay = CycleDayNumber(latestStart, today)
	}

	stats.CurrentPhase = currentPhase(today, latest, daysByCycleID[latest.ID], stats, location)
	return stats
}

func currentPhase(today time.Time, latest models.Cycle, latestDays []models.CycleDay, stats CycleStats, location *time.Location) string {
	if !latest.Contains(today) {
		return PhaseUnknown
	}

	for _, day := range latestDays {
		if day.IsFlowDay() && DateAtLocation(day.Date, location).Equal(today) {
			return PhaseMenstrual
		}
	}

	if !today.Before(stats.FertilityWindowStart) && !today.After(stats.FertilityWindowEnd) {
		if today.Equal(stats.OvulationDate) {
			return PhaseOvulation
		}
		return PhaseFertile
	}
	if today.Before(stats.OvulationDate) {
		return PhaseFollicular
	}
	return PhaseLuteal
}

// periodLength counts consecutive flow days from the cycle start.
func periodLength(cycle models.Cycle, days []models.CycleDay, location *time.Location) int {
	flowByDay := make(map[int]bool, len(days))
	start := DateAtLocation(cycle.StartDate, location)
	for _, day := range days {
		if day.IsFlowDay() {
			flowByDay[CycleDayNumber(start, DateAtLocation(day.Date, location))] = true
		}
	}

	length := 0
	for number := 1; flowByDay[number]; number++ {
		length++
	}
	return length
}

// lutealLength is the span from the chart-detected ovulation day to the cycle
// end, when a thermal shift exists.
func lutealLength(cycle models.Cycle, days []models.CycleDay, location *time.Location) int {
	chart := BuildChart(cycle, days, models.UnitCelsius, models.DefaultCycleLength, location)
	if chart.OvulationDay == 0 {
		return 0
	}
	return cycle.Length() - chart.OvulationDay
}

func tailInts(values []int, n int) []int {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func averageInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values))
}

func medianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, 0, len(values))
	sorted = append(sorted, values...)
	sort.Ints(sorted)
	middle := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[middle-1] + sorted[middle]) / 2
	}
	return sorted[middle]
}
