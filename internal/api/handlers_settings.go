package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/services"
)

type settingsInput struct {
	TemperatureUnit    string `json:"temperature_unit" form:"temperature_unit"`
	LutealPhaseDays    int    `json:"luteal_phase_days" form:"luteal_phase_days"`
	DefaultCycleLength int    `json:"default_cycle_length" form:"default_cycle_length"`
}

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": userResponse(currentUser(c))})
}

func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	user := currentUser(c)

	input := settingsInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	settings := services.SettingsInput{
		TemperatureUnit:    input.TemperatureUnit,
		LutealPhaseDays:    input.LutealPhaseDays,
		DefaultCycleLength: input.DefaultCycleLength,
	}
	if err := services.ValidateSettingsInput(settings); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTemperatureUnit),
			errors.Is(err, services.ErrLutealPhaseOutOfRange),
			errors.Is(err, services.ErrCycleLengthOutOfRange):
			return jsonBadRequest(c, err.Error())
		default:
			return jsonInternalError(c, err)
		}
	}

	services.ApplySettings(user, settings)
	if err := handler.authService.SaveUser(user); err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"user": userResponse(user)})
}

// ClearData deletes every cycle and day but keeps the account.
func (handler *Handler) ClearData(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := handler.repos.CycleDays.DeleteAllByUser(user.ID); err != nil {
		return jsonInternalError(c, err)
	}
	if err := handler.repos.Cycles.DeleteAllByUser(user.ID); err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := handler.repos.Users.DeleteWithData(user.ID); err != nil {
		return jsonInternalError(c, err)
	}
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
