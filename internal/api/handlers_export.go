package api

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ExportSummary(c *fiber.Ctx) error {
	user := currentUser(c)

	from, to, err := handler.parseExportRange(c)
	if err != nil {
		return jsonBadRequest(c, err.Error())
	}

	summary, err := handler.exportService.Summary(user.ID, from, to)
	if err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(summary)
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	user := currentUser(c)

	from, to, err := handler.parseExportRange(c)
	if err != nil {
		return jsonBadRequest(c, err.Error())
	}

	buffer := &bytes.Buffer{}
	if err := handler.exportService.WriteCSV(buffer, user.ID, from, to); err != nil {
		return jsonInternalError(c, err)
	}

	fileName := fmt.Sprintf("ovella-export-%s.csv", time.Now().In(handler.location).Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(buffer.Bytes())
}

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	user := currentUser(c)

	from, to, err := handler.parseExportRange(c)
	if err != nil {
		return jsonBadRequest(c, err.Error())
	}

	cycles, err := handler.exportService.BuildJSON(user.ID, from, to)
	if err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"cycles": cycles})
}

func (handler *Handler) parseExportRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	from, err := handler.parseDateQuery(c, "from")
	if err != nil {
		return nil, nil, fmt.Errorf("invalid from date")
	}
	to, err := handler.parseDateQuery(c, "to")
	if err != nil {
		return nil, nil, fmt.Errorf("invalid to date")
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("to date precedes from date")
	}
	return from, to, nil
}
