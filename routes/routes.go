package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/controllers"
	"github.com/meinhoongagan/medical-turns/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the controllers mounted by Setup.
type Handlers struct {
	Auth          *controllers.AuthController
	Turns         *controllers.TurnController
	Requests      *controllers.ModifyRequestController
	Ratings       *controllers.RatingController
	Doctors       *controllers.DoctorController
	Badges        *controllers.BadgeController
	Notifications *controllers.NotificationController
	Files         *controllers.PatientFileController
}

// Setup mounts every route group; protected groups validate the bearer token with secret.
func Setup(app *fiber.App, h Handlers, secret string, log *zap.Logger) {
	protected := middleware.Protected(secret, log)

	SetupAuthRoutes(app, h.Auth, protected)
	SetupDoctorRoutes(app, h.Doctors, h.Turns, h.Badges, protected)
	SetupAppointmentRoutes(app, h.Turns, h.Ratings, h.Requests, protected)
	SetupModifyRequestRoutes(app, h.Requests, protected)
	SetupAdminRoutes(app, h.Doctors, protected)
	SetupConsumerRoutes(app, h, protected)
}
