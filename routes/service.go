package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/controllers"
	"github.com/meinhoongagan/medical-turns/middleware"
	"github.com/meinhoongagan/medical-turns/models"
)

// SetupModifyRequestRoutes configures the reschedule request routes
func SetupModifyRequestRoutes(app *fiber.App, requests *controllers.ModifyRequestController, protected fiber.Handler) {
	group := app.Group("/modify-requests", protected)
	group.Get("/", requests.ListRequests)
	group.Post("/:id/review", middleware.RequireRole(models.RoleDoctor), requests.ReviewModification)
}
