package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/setup-status", handler.SetupStatus)
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/forgot-password", handler.ForgotPassword)
	auth.Post("/reset-password", handler.ResetPassword)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	cycles := api.Group("/cycles", handler.AuthRequired)
	cycles.Get("", handler.ListCycles)
	cycles.Post("", handler.OwnerOnly, handler.StartCycle)
	cycles.Get("/current", handler.CurrentCycle)
	cycles.Get("/current/chart", handler.GetCurrentChart)
	cycles.Get("/:id", handler.GetCycle)
	cycles.Get("/:id/chart", handler.GetCycleChart)
	cycles.Post("/:id/end", handler.OwnerOnly, handler.EndCycle)
	cycles.Post("/:id/reactivate", handler.OwnerOnly, handler.ReactivateCycle)
	cycles.Delete("/:id", handler.OwnerOnly, handler.DeleteCycle)

	days := api.Group("/days", handler.AuthRequired)
	days.Get("", handler.GetDays)
	days.Get("/:date", handler.GetDay)
	days.Post("/:date", handler.OwnerOnly, handler.UpsertDay)
	days.Delete("/:date", handler.OwnerOnly, handler.DeleteDay)

	importGroup := api.Group("/import", handler.AuthRequired, handler.OwnerOnly)
	importGroup.Post("/csv", handler.ImportCSV)

	export := api.Group("/export", handler.AuthRequired)
	export.Get("/summary", handler.ExportSummary)
	export.Get("/csv", handler.ExportCSV)
	export.Get("/json", handler.ExportJSON)

	stats := api.Group("/stats", handler.AuthRequired)
	stats.Get("/overview", handler.GetStatsOverview)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Get("", handler.GetSettings)
	settings.Post("", handler.OwnerOnly, handler.UpdateSettings)
	settings.Post("/change-password", handler.ChangePassword)
	settings.Post("/regenerate-recovery-code", handler.RegenerateRecoveryCode)
	settings.Post("/clear-data", handler.OwnerOnly, handler.ClearData)
	settings.Delete("/delete-account", handler.DeleteAccount)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
