package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/services"
)

func (handler *Handler) GetStatsOverview(c *fiber.Ctx) error {
	user := currentUser(c)

	cycles, err := handler.repos.Cycles.ListByUser(user.ID)
	if err != nil {
		return jsonInternalError(c, err)
	}
	days, err := handler.repos.CycleDays.ListByUser(user.ID)
	if err != nil {
		return jsonInternalError(c, err)
	}

	stats := services.BuildCycleStats(cycles, days, time.Now(), user.LutealPhaseDays, user.DefaultCycleLength, handler.location)
	return c.JSON(stats)
}
