package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/controllers"
	"github.com/meinhoongagan/medical-turns/middleware"
	"github.com/meinhoongagan/medical-turns/models"
)

// SetupDoctorRoutes configures the doctor directory, working hours and agenda routes
func SetupDoctorRoutes(app *fiber.App, doctors *controllers.DoctorController, turns *controllers.TurnController, badges *controllers.BadgeController, protected fiber.Handler) {
	group := app.Group("/doctors")
	group.Get("/", doctors.ListDoctors)
	group.Get("/:id", doctors.GetDoctor)
	group.Get("/:id/turns/available", turns.ListAvailableTurns)
	group.Get("/:id/statistics", badges.DoctorStatistics)

	doctorOnly := middleware.RequireRole(models.RoleDoctor)
	group.Patch("/:id/profile", protected, doctorOnly, doctors.UpdateProfile)
	group.Get("/:id/turns", protected, middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), turns.ListDoctorTurns)
	group.Post("/:id/turns", protected, doctorOnly, turns.CreateTurn)
	group.Post("/:id/turns/generate", protected, doctorOnly, turns.GenerateTurns)
}
