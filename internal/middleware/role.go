package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It assumes
// JWTAuth has already stored a normalized booking.Role in the context
// under the key "role".  Requests without an allowed role are
// rejected with 403 Forbidden.
func RequireRole(roles ...booking.Role) echo.MiddlewareFunc {
	allowed := make(map[booking.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(booking.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
