package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/services"
)

type startCycleInput struct {
	StartDate string `json:"start_date" form:"start_date"`
	Notes     string `json:"notes" form:"notes"`
}

type endCycleInput struct {
	EndDate string `json:"end_date" form:"end_date"`
}

func (handler *Handler) ListCycles(c *fiber.Ctx) error {
	user := currentUser(c)

	cycles, err := handler.cycleService.ListCycles(user.ID)
	if err != nil {
		return jsonInternalError(c, err)
	}

	response := make([]fiber.Map, 0, len(cycles))
	for _, cycle := range cycles {
		response = append(response, cycleResponse(cycle))
	}
	return c.JSON(fiber.Map{"cycles": response})
}

func (handler *Handler) CurrentCycle(c *fiber.Ctx) error {
	user := currentUser(c)

	cycle, found, err := handler.cycleService.ActiveCycle(user.ID)
	if err != nil {
		return jsonInternalError(c, err)
	}
	if !found {
		return jsonNotFound(c, "no active cycle")
	}
	return c.JSON(fiber.Map{"cycle": cycleResponse(cycle)})
}

func (handler *Handler) GetCycle(c *fiber.Ctx) error {
	user := currentUser(c)

	cycleID, err := parseIDParam(c, "id")
	if err != nil {
		return jsonBadRequest(c, "invalid cycle id")
	}

	cycle, err := handler.cycleService.FindCycle(user.ID, cycleID)
	if err != nil {
		return cycleErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"cycle": cycleResponse(cycle)})
}

func (handler *Handler) StartCycle(c *fiber.Ctx) error {
	user := currentUser(c)

	input := startCycleInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	start, err := time.ParseInLocation(dateParamLayout, strings.TrimSpace(input.StartDate), handler.location)
	if err != nil {
		return jsonBadRequest(c, "invalid start date")
	}

	cycle, err := handler.cycleService.StartCycle(user.ID, start, strings.TrimSpace(input.Notes))
	if err != nil {
		return cycleErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"cycle": cycleResponse(cycle)})
}

func (handler *Handler) EndCycle(c *fiber.Ctx) error {
	user := currentUser(c)

	cycleID, err := parseIDParam(c, "id")
	if err != nil {
		return jsonBadRequest(c, "invalid cycle id")
	}

	input := endCycleInput{}
	if err := c.BodyParser(&input); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return jsonBadRequest(c, "invalid input")
	}

	var end *time.Time
	if raw := strings.TrimSpace(input.EndDate); raw != "" {
		value, err := time.ParseInLocation(dateParamLayout, raw, handler.location)
		if err != nil {
			return jsonBadRequest(c, "invalid end date")
		}
		end = &value
	}

	cycle, err := handler.cycleService.EndCycle(user.ID, cycleID, end)
	if err != nil {
		return cycleErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"cycle": cycleResponse(cycle)})
}

func (handler *Handler) ReactivateCycle(c *fiber.Ctx) error {
	user := currentUser(c)

	cycleID, err := parseIDParam(c, "id")
	if err != nil {
		return jsonBadRequest(c, "invalid cycle id")
	}

	cycle, err := handler.cycleService.ReactivateCycle(user.ID, cycleID)
	if err != nil {
		return cycleErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"cycle": cycleResponse(cycle)})
}

func (handler *Handler) DeleteCycle(c *fiber.Ctx) error {
	user := currentUser(c)

	cycleID, err := parseIDParam(c, "id")
	if err != nil {
		return jsonBadRequest(c, "invalid cycle id")
	}

	if err := handler.cycleService.DeleteCycle(user.ID, cycleID); err != nil {
		return cycleErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func cycleErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCycleNotFound):
		return jsonNotFound(c, err.Error())
	case errors.Is(err, services.ErrCycleOverlap),
		errors.Is(err, services.ErrStartNotAfterActive),
		errors.Is(err, services.ErrDaysAfterStart),
		errors.Is(err, services.ErrEndBeforeStart),
		errors.Is(err, services.ErrEndBeforeLastDay),
		errors.Is(err, services.ErrEndOverlapsNext),
		errors.Is(err, services.ErrNotLatestCycle):
		return jsonBadRequest(c, err.Error())
	default:
		return jsonInternalError(c, err)
	}
}
