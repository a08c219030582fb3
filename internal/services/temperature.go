package services

import (
	"errors"
	"math"

	"github.com/terraincognita07/ovella/internal/models"
)

// Accepted input band, in Celsius. Readings outside it are rejected outright;
// readings inside it but outside the plot band are stored yet excluded from
// the chart line.
const (
	MinInputCelsius = 34.0
	MaxInputCelsius = 42.0

	PlotBandMinCelsius = 35.0
	PlotBandMaxCelsius = 38.5

	// 0.1 degF convention, expressed in Celsius.
	CoverlineOffsetCelsius = 0.05
)

var (
	ErrTemperatureOutOfRange  = errors.New("temperature out of range")
	ErrUnknownTemperatureUnit = errors.New("unknown temperature unit")
)

func CelsiusToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

func FahrenheitToCelsius(fahrenheit float64) float64 {
	return (fahrenheit - 32) * 5 / 9
}

func RoundTemperature(value float64) float64 {
	return math.Round(value*100) / 100
}

// NormalizeTemperatureInput converts a user-entered reading to canonical
// Celsius, rejecting values outside the accepted band.
func NormalizeTemperatureInput(value float64, unit string) (float64, error) {
	celsius := value
	switch unit {
	case models.UnitCelsius:
	case models.UnitFahrenheit:
		celsius = FahrenheitToCelsius(value)
	default:
		return 0, ErrUnknownTemperatureUnit
	}

	celsius = RoundTemperature(celsius)
	if celsius < MinInputCelsius || celsius > MaxInputCelsius {
		return 0, ErrTemperatureOutOfRange
	}
	return celsius, nil
}

// DisplayTemperature converts a stored Celsius reading to the user's unit.
func DisplayTemperature(celsius float64, unit string) float64 {
	if unit == models.UnitFahrenheit {
		return RoundTemperature(CelsiusToFahrenheit(celsius))
	}
	return RoundTemperature(celsius)
}

// InPlotBand reports whether a stored reading falls inside the chart band.
func InPlotBand(celsius float64) bool {
	return celsius >= PlotBandMinCelsius && celsius <= PlotBandMaxCelsius
}
