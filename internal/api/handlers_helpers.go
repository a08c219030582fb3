package api

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/models"
)

const dateParamLayout = "2006-01-02"

func jsonBadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func jsonUnauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}

func jsonNotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func jsonInternalError(c *fiber.Ctx, err error) error {
	log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func (handler *Handler) parseDateParam(c *fiber.Ctx, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Params(name))
	return time.ParseInLocation(dateParamLayout, raw, handler.location)
}

// parseDateQuery returns nil when the query parameter is absent.
func (handler *Handler) parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := time.ParseInLocation(dateParamLayout, raw, handler.location)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"settings": fiber.Map{
			"temperature_unit":     user.TemperatureUnit,
			"luteal_phase_days":    user.LutealPhaseDays,
			"default_cycle_length": user.DefaultCycleLength,
		},
	}
}

func cycleResponse(cycle models.Cycle) fiber.Map {
	response := fiber.Map{
		"id":         cycle.ID,
		"start_date": cycle.StartDate.Format(dateParamLayout),
		"active":     cycle.Active,
		"notes":      cycle.Notes,
	}
	if cycle.EndDate != nil {
		response["end_date"] = cycle.EndDate.Format(dateParamLayout)
		response["length"] = cycle.Length()
	}
	return response
}

func dayResponse(day models.CycleDay, unit string, temperature *float64) fiber.Map {
	return fiber.Map{
		"date":             day.Date.Format(dateParamLayout),
		"cycle_id":         day.CycleID,
		"temperature":      temperature,
		"temperature_unit": unit,
		"temp_disturbed":   day.TempDisturbed,
		"cervical_fluid":   day.CervicalFluid,
		"opk":              day.OPK,
		"flow":             day.Flow,
		"intercourse":      day.Intercourse,
		"notes":            day.Notes,
	}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
