package models

import "time"

const (
	RoleOwner   = "owner"
	RolePartner = "partner"
)

const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

const (
	DefaultLutealPhaseDays = 14
	DefaultCycleLength     = 28
	MinLutealPhaseDays     = 9
	MaxLutealPhaseDays     = 16
	MinDefaultCycleLength  = 21
	MaxDefaultCycleLength  = 45
)

type User struct {
	ID                 uint      `gorm:"primaryKey"`
	Email              string    `gorm:"uniqueIndex;not null"`
	PasswordHash       string    `gorm:"not null"`
	Role               string    `gorm:"not null;default:owner"`
	RecoveryCodeHash   string
	TemperatureUnit    string    `gorm:"not null;default:celsius"`
	LutealPhaseDays    int       `gorm:"not null;default:14"`
	DefaultCycleLength int       `gorm:"not null;default:28"`
	CreatedAt          time.Time `gorm:"not null"`
}

func IsValidTemperatureUnit(unit string) bool {
	return unit == UnitCelsius || unit == UnitFahrenheit
}
