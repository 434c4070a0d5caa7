package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/controllers"
	"github.com/meinhoongagan/medical-turns/middleware"
	"github.com/meinhoongagan/medical-turns/models"
)

// SetupAdminRoutes configures the doctor approval routes
func SetupAdminRoutes(app *fiber.App, doctors *controllers.DoctorController, protected fiber.Handler) {
	admin := app.Group("/admin", protected, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/doctors/pending", doctors.ListPendingDoctors)
	admin.Post("/doctors/:id/review", doctors.ReviewDoctor)
}
