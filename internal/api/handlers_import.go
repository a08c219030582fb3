package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/services"
)

const maxImportFileSize = 5 << 20

// ImportCSV accepts a multipart "file" field with a CSV export from another
// tracker. Set overwrite=true to replace existing days.
func (handler *Handler) ImportCSV(c *fiber.Ctx) error {
	user := currentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonBadRequest(c, "missing file")
	}
	if fileHeader.Size > maxImportFileSize {
		return jsonBadRequest(c, "file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonBadRequest(c, "unreadable file")
	}
	defer file.Close()

	overwrite := strings.EqualFold(c.FormValue("overwrite"), "true")

	result, err := handler.importService.Import(user.ID, file, overwrite)
	if err != nil {
		if errors.Is(err, services.ErrImportNoRows) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "no importable rows",
				"errors": result.Errors,
			})
		}
		return jsonBadRequest(c, err.Error())
	}
	return c.JSON(result)
}
