package models

import "time"

const (
	FlowNone     = "none"
	FlowSpotting = "spotting"
	FlowLight    = "light"
	FlowMedium   = "medium"
	FlowHeavy    = "heavy"
)

const (
	FluidNone     = ""
	FluidDry      = "dry"
	FluidSticky   = "sticky"
	FluidCreamy   = "creamy"
	FluidWatery   = "watery"
	FluidEggwhite = "eggwhite"
)

const (
	OPKNone     = ""
	OPKNegative = "negative"
	OPKPositive = "positive"
	OPKPeak     = "peak"
)

// CycleDay holds one day of observations. Temperature is stored in Celsius
// regardless of the user's display unit.
type CycleDay struct {
	ID            uint      `gorm:"primaryKey"`
	CycleID       uint      `gorm:"not null;index"`
	UserID        uint      `gorm:"not null;uniqueIndex:uidx_user_day"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex:uidx_user_day"`
	Temperature   *float64
	TempDisturbed bool   `gorm:"not null;default:false"`
	CervicalFluid string `gorm:"not null"`
	OPK           string `gorm:"not null"`
	Flow          string `gorm:"not null;default:none"`
	Intercourse   bool   `gorm:"not null;default:false"`
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsFlowDay reports whether the day carries menstrual bleeding heavier than spotting.
func (day CycleDay) IsFlowDay() bool {
	switch day.Flow {
	case FlowLight, FlowMedium, FlowHeavy:
		return true
	default:
		return false
	}
}

func IsValidFlow(flow string) bool {
	switch flow {
	case FlowNone, FlowSpotting, FlowLight, FlowMedium, FlowHeavy:
		return true
	default:
		return false
	}
}

func IsValidCervicalFluid(fluid string) bool {
	switch fluid {
	case FluidNone, FluidDry, FluidSticky, FluidCreamy, FluidWatery, FluidEggwhite:
		return true
	default:
		return false
	}
}

func IsValidOPK(opk string) bool {
	switch opk {
	case OPKNone, OPKNegative, OPKPositive, OPKPeak:
		return true
	default:
		return false
	}
}
