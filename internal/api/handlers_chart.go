package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/services"
)

// GetCycleChart returns render-ready chart data for one cycle: temperature
// segments, excluded points, coverline, and the day-aligned overlay rows.
func (handler *Handler) GetCycleChart(c *fiber.Ctx) error {
	user := currentUser(c)

	cycleID, err := parseIDParam(c, "id")
	if err != nil {
		return jsonBadRequest(c, "invalid cycle id")
	}

	cycle, err := handler.cycleService.FindCycle(user.ID, cycleID)
	if err != nil {
		if errors.Is(err, services.ErrCycleNotFound) {
			return jsonNotFound(c, err.Error())
		}
		return jsonInternalError(c, err)
	}

	days, err := handler.repos.CycleDays.ListByCycle(user.ID, cycle.ID)
	if err != nil {
		return jsonInternalError(c, err)
	}

	chart := services.BuildChart(cycle, days, user.TemperatureUnit, user.DefaultCycleLength, handler.location)
	return c.JSON(chart)
}

// GetCurrentChart serves the active cycle's chart.
func (handler *Handler) GetCurrentChart(c *fiber.Ctx) error {
	user := currentUser(c)

	cycle, found, err := handler.cycleService.ActiveCycle(user.ID)
	if err != nil {
		return jsonInternalError(c, err)
	}
	if !found {
		return jsonNotFound(c, "no active cycle")
	}

	days, err := handler.repos.CycleDays.ListByCycle(user.ID, cycle.ID)
	if err != nil {
		return jsonInternalError(c, err)
	}

	chart := services.BuildChart(cycle, days, user.TemperatureUnit, user.DefaultCycleLength, handler.location)
	return c.JSON(chart)
}
