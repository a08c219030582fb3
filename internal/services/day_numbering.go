package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DaysBetween counts whole local days from a (midnight) to b (midnight).
// Negative when b precedes a.
func DaysBetween(a time.Time, b time.Time) int {
	hours := b.Sub(a).Hours()
	if hours < 0 {
		return -int((-hours + 1) / 24)
	}
	// +1h guards against DST making a day 23 or 25 hours long.
	return int((hours + 1) / 24)
}

// CycleDayNumber returns the 1-based day number of day within a cycle starting
// at start, or 0 when day precedes the start.
func CycleDayNumber(start time.Time, day time.Time) int {
	delta := DaysBetween(start, day)
	if delta < 0 {
		return 0
	}
	return delta + 1
}

// DayHasData reports whether a day carries any observation worth storing.
func DayHasData(day models.CycleDay) bool {
	if day.Temperature != nil {
		return true
	}
	if day.Intercourse {
		return true
	}
	if day.CervicalFluid != models.FluidNone || day.OPK != models.OPKNone {
		return true
	}
	if strings.TrimSpace(day.Notes) != "" {
		return true
	}
	return strings.TrimSpace(day.Flow) != "" && day.Flow != models.FlowNone
}
