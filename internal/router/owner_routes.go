package router

import (
	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/handler"
	"github.com/jarimae/jarimae-api/internal/middleware"
)

// RegisterOwner registers OWNER-scoped management endpoints under /v1.
// All routes require a valid JWT and the OWNER role; ownership of the
// individual store, table or menu item is verified in the repository
// layer.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, res *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(booking.RoleOwner, booking.RoleAdmin),
	)

	// ---- Stores ----
	g.POST("/owner/stores", o.CreateStore)
	g.PATCH("/owner/stores/:id", o.UpdateStore)
	g.PUT("/owner/stores/:id/hours", o.ReplaceHours)

	// ---- Tables ----
	g.POST("/owner/stores/:id/tables", o.CreateTable)
	g.GET("/owner/stores/:id/tables", o.ListTables)
	g.PATCH("/owner/tables/:id", o.UpdateTable)
	g.DELETE("/owner/tables/:id", o.DeleteTable)

	// ---- Menu ----
	g.POST("/owner/stores/:id/menu", o.CreateMenuItem)
	g.PATCH("/owner/menu/:id", o.UpdateMenuItem)
	g.DELETE("/owner/menu/:id", o.DeleteMenuItem)

	// ---- Reservations of owned stores ----
	g.GET("/stores/:id/reservations", res.ListForStore)
}
