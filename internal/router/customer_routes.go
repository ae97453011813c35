package router

import (
	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/handler"
	"github.com/jarimae/jarimae-api/internal/middleware"
)

// RegisterReservations registers the reservation lifecycle endpoints
// under /v1.  All routes require a valid JWT; the role-specific rules
// (customers may only cancel, owners act on their own stores) are
// enforced inside the handlers, not here, so that the server answers
// 403 with a structured error instead of a blanket role rejection.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, rev *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(booking.RoleCustomer, booking.RoleOwner, booking.RoleAdmin),
	)

	// Creation is a customer action.
	create := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(booking.RoleCustomer),
	)
	create.POST("/reservations", h.Create)

	g.GET("/reservations/:id", h.Get)
	g.PUT("/reservations/:id", h.Update)
	g.PATCH("/reservations/:id", h.UpdateStatus)
	g.GET("/my-reservations", h.ListMine)

	// Reviews: one per completed reservation, by its customer.
	g.POST("/reservations/:id/review", rev.Create)
}
