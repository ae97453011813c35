package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health returns a minimal liveness response.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
