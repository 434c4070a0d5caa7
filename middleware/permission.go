package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/utils"
)

// RequireRole lets the request through only when the actor has one of roles.
// It must run after Protected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return unauthorized(c, "No authentication token")
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You don't have the required role to perform this action",
			Error:   "Forbidden",
		})
	}
}
