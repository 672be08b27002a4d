package middleware

import (
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns a middleware enforcing bearer-token authentication.
// On success the resolved user is stored in c.Locals("currentUser") and its
// ID in c.Locals("userID"); on failure the request is rejected with 401.
func AuthRequired(gate *auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			observability.AuthFailures.WithLabelValues("missing_header").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			observability.AuthFailures.WithLabelValues("bad_header").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header format must be Bearer <token>"))
		}

		user, err := gate.ResolveUser(c.Context(), parts[1])
		if err != nil {
			observability.AuthFailures.WithLabelValues("invalid_token").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized, auth.ErrUnauthenticated)
		}

		c.Locals("currentUser", user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by AuthRequired, or nil
// when the request is unauthenticated.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("currentUser").(*models.User)
	return user
}
