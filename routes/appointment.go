package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/controllers"
	"github.com/meinhoongagan/medical-turns/middleware"
	"github.com/meinhoongagan/medical-turns/models"
)

// SetupAppointmentRoutes configures the turn lifecycle routes
func SetupAppointmentRoutes(app *fiber.App, turns *controllers.TurnController, ratings *controllers.RatingController, requests *controllers.ModifyRequestController, protected fiber.Handler) {
	group := app.Group("/turns", protected)
	group.Get("/mine", turns.ListMyTurns)
	group.Get("/:id", turns.GetTurn)
	group.Post("/:id/reserve", middleware.RequireRole(models.RolePatient, models.RoleAdmin), turns.ReserveTurn)
	group.Post("/:id/cancel", turns.CancelTurn)
	group.Post("/:id/complete", middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), turns.CompleteTurn)
	group.Post("/:id/no-show", middleware.RequireRole(models.RoleDoctor), turns.MarkNoShow)
	group.Put("/:id/documentation", middleware.RequireRole(models.RoleDoctor), turns.AddDocumentation)
	group.Post("/:id/ratings", middleware.RequireRole(models.RoleDoctor, models.RolePatient), ratings.SubmitRating)
	group.Post("/:id/modify-requests", middleware.RequireRole(models.RolePatient), requests.RequestModification)
}
