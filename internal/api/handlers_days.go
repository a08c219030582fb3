package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/services"
)

type dayEntryPayload struct {
	Temperature   *float64 `json:"temperature" form:"temperature"`
	TempDisturbed bool     `json:"temp_disturbed" form:"temp_disturbed"`
	CervicalFluid string   `json:"cervical_fluid" form:"cervical_fluid"`
	OPK           string   `json:"opk" form:"opk"`
	Flow          string   `json:"flow" form:"flow"`
	Intercourse   bool     `json:"intercourse" form:"intercourse"`
	Notes         string   `json:"notes" form:"notes"`
}

// GetDays lists logged days, optionally bounded by from/to query dates.
func (handler *Handler) GetDays(c *fiber.Ctx) error {
	user := currentUser(c)

	from, err := handler.parseDateQuery(c, "from")
	if err != nil {
		return jsonBadRequest(c, "invalid from date")
	}
	to, err := handler.parseDateQuery(c, "to")
	if err != nil {
		return jsonBadRequest(c, "invalid to date")
	}

	var fromStart, toEnd *time.Time
	if from != nil {
		value := services.DateAtLocation(*from, handler.location)
		fromStart = &value
	}
	if to != nil {
		value := services.DateAtLocation(*to, handler.location).AddDate(0, 0, 1)
		toEnd = &value
	}

	days, err := handler.repos.CycleDays.ListByUserRange(user.ID, fromStart, toEnd)
	if err != nil {
		return jsonInternalError(c, err)
	}

	response := make([]fiber.Map, 0, len(days))
	for _, day := range days {
		var temperature *float64
		if day.Temperature != nil {
			value := services.DisplayTemperature(*day.Temperature, user.TemperatureUnit)
			temperature = &value
		}
		response = append(response, dayResponse(day, user.TemperatureUnit, temperature))
	}
	return c.JSON(fiber.Map{"days": response})
}

func (handler *Handler) GetDay(c *fiber.Ctx) error {
	user := currentUser(c)

	date, err := handler.parseDateParam(c, "date")
	if err != nil {
		return jsonBadRequest(c, "invalid date")
	}

	dayStart, dayEnd := services.DayRange(date, handler.location)
	day, found, err := handler.repos.CycleDays.FindByUserAndDayRange(user.ID, dayStart, dayEnd)
	if err != nil {
		return jsonInternalError(c, err)
	}
	if !found {
		return jsonNotFound(c, "no entry for this date")
	}

	var temperature *float64
	if day.Temperature != nil {
		value := services.DisplayTemperature(*day.Temperature, user.TemperatureUnit)
		temperature = &value
	}
	return c.JSON(fiber.Map{"day": dayResponse(day, user.TemperatureUnit, temperature)})
}

// UpsertDay writes a day's observations; an all-empty payload deletes the day.
func (handler *Handler) UpsertDay(c *fiber.Ctx) error {
	user := currentUser(c)

	date, err := handler.parseDateParam(c, "date")
	if err != nil {
		return jsonBadRequest(c, "invalid date")
	}

	payload := dayEntryPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	input := services.DayEntryInput{
		Temperature:   payload.Temperature,
		TempDisturbed: payload.TempDisturbed,
		CervicalFluid: payload.CervicalFluid,
		OPK:           payload.OPK,
		Flow:          payload.Flow,
		Intercourse:   payload.Intercourse,
		Notes:         payload.Notes,
	}

	day, stored, err := handler.dayService.UpsertDay(user.ID, date, input, user.TemperatureUnit)
	if err != nil {
		return dayErrorResponse(c, err)
	}
	if !stored {
		return c.JSON(fiber.Map{"ok": true, "deleted": true})
	}

	var temperature *float64
	if day.Temperature != nil {
		value := services.DisplayTemperature(*day.Temperature, user.TemperatureUnit)
		temperature = &value
	}
	return c.JSON(fiber.Map{"ok": true, "day": dayResponse(day, user.TemperatureUnit, temperature)})
}

func (handler *Handler) DeleteDay(c *fiber.Ctx) error {
	user := currentUser(c)

	date, err := handler.parseDateParam(c, "date")
	if err != nil {
		return jsonBadRequest(c, "invalid date")
	}

	if err := handler.dayService.DeleteDay(user.ID, date); err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func dayErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNoCycleForDate):
		return jsonBadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidFlow),
		errors.Is(err, services.ErrInvalidFluid),
		errors.Is(err, services.ErrInvalidOPK),
		errors.Is(err, services.ErrTemperatureOutOfRange),
		errors.Is(err, services.ErrUnknownTemperatureUnit):
		return jsonBadRequest(c, err.Error())
	default:
		return jsonInternalError(c, err)
	}
}
