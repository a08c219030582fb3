package services

import (
	"errors"

	"github.com/terraincognita07/ovella/internal/models"
)

var (
	ErrInvalidTemperatureUnit = errors.New("invalid temperature unit")
	ErrLutealPhaseOutOfRange  = errors.New("luteal phase days out of range")
	ErrCycleLengthOutOfRange  = errors.New("default cycle length out of range")
)

type SettingsInput struct {
	TemperatureUnit    string
	LutealPhaseDays    int
	DefaultCycleLength int
}

func ValidateSettingsInput(input SettingsInput) error {
	if !models.IsValidTemperatureUnit(input.TemperatureUnit) {
		return ErrInvalidTemperatureUnit
	}
	if input.LutealPhaseDays < models.MinLutealPhaseDays || input.LutealPhaseDays > models.MaxLutealPhaseDays {
		return ErrLutealPhaseOutOfRange
	}
	if input.DefaultCycleLength < models.MinDefaultCycleLength || input.DefaultCycleLength > models.MaxDefaultCycleLength {
		return ErrCycleLengthOutOfRange
	}
	return nil
}

func ApplySettings(user *models.User, input SettingsInput) {
	user.TemperatureUnit = input.TemperatureUnit
	user.LutealPhaseDays = input.LutealPhaseDays
	user.DefaultCycleLength = input.DefaultCycleLength
}
