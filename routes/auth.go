package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/controllers"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, auth *controllers.AuthController, protected fiber.Handler) {
	group := app.Group("/auth")

	// Public routes
	group.Post("/register", auth.Register)
	group.Post("/login", auth.Login)
	group.Post("/verify-email", auth.VerifyEmail)

	// Protected routes
	group.Get("/me", protected, auth.Me)
}
