package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/middleware"
	"github.com/meinhoongagan/medical-turns/models"
)

// SetupConsumerRoutes configures the per-user routes: files, notifications, badges and statistics
func SetupConsumerRoutes(app *fiber.App, h Handlers, protected fiber.Handler) {
	files := app.Group("/files", protected)
	files.Post("/", middleware.RequireRole(models.RolePatient), h.Files.Upload)
	files.Get("/patients/:id", h.Files.List)

	notifications := app.Group("/notifications", protected)
	notifications.Get("/", h.Notifications.List)
	notifications.Post("/read-all", h.Notifications.MarkAllRead)
	notifications.Post("/:id/read", h.Notifications.MarkRead)

	users := app.Group("/users")
	users.Get("/me/statistics", protected, h.Badges.MyStatistics)
	users.Get("/:id/badges", h.Badges.ListBadges)
	users.Get("/:id/ratings", h.Ratings.ListReceived)
}
