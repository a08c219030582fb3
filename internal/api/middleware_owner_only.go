package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/models"
)

// OwnerOnly rejects writes from partner (read-only) accounts.
func (handler *Handler) OwnerOnly(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || user.Role != models.RoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "read-only account"})
	}
	return c.Next()
}
