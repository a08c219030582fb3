package models

import "time"

type Cycle struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"not null;index"`
	StartDate time.Time  `gorm:"type:date;not null"`
	EndDate   *time.Time `gorm:"type:date"`
	Active    bool       `gorm:"not null;default:false"`
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Length reports the cycle length in days, or 0 for a still-open cycle.
func (cycle Cycle) Length() int {
	if cycle.EndDate == nil {
		return 0
	}
	return int(cycle.EndDate.Sub(cycle.StartDate).Hours()/24) + 1
}

// Contains reports whether day (date-only) falls inside the cycle span.
// An active cycle is open-ended on the right.
func (cycle Cycle) Contains(day time.Time) bool {
	if day.Before(cycle.StartDate) {
		return false
	}
	if cycle.EndDate == nil {
		return true
	}
	return !day.After(*cycle.EndDate)
}
