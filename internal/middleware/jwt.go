package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject and role claims into the
// request context.  The role claim is normalized into the closed
// booking.Role set here, at the boundary; a token carrying an
// unrecognized role is rejected with 403 instead of flowing a
// free-form string into the handlers.  Handlers read the values via
// c.Get("user_id") (uint64) and c.Get("role") (booking.Role).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Numeric claims decode as float64 from JSON.
			var userID uint64
			switch sub := claims["sub"].(type) {
			case float64:
				userID = uint64(sub)
			case string:
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject claim"})
			}
			if userID == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject claim"})
			}

			roleStr, _ := claims["role"].(string)
			role, ok := booking.ParseRole(roleStr)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}

			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}
