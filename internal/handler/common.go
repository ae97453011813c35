package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
)

// getUserID extracts the user_id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get("user_id").(uint64); ok && v != 0 {
		return v, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the normalized role stored by the JWT middleware.
func getRole(c echo.Context) (booking.Role, error) {
	if r, ok := c.Get("role").(booking.Role); ok {
		return r, nil
	}
	return "", errors.New("invalid role in context")
}

// caller builds the booking.Caller for the current request, or returns
// an error when the middleware did not populate the context.
func caller(c echo.Context) (booking.Caller, error) {
	uid, err := getUserID(c)
	if err != nil {
		return booking.Caller{}, err
	}
	role, err := getRole(c)
	if err != nil {
		return booking.Caller{}, err
	}
	return booking.Caller{ID: uid, Role: role}, nil
}

// pathID parses a numeric :id path parameter and rejects zero.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// bizError serializes a business rule violation as a structured error
// payload.  Business codes map to 400 except FORBIDDEN (403) and
// RESERVATION_NOT_FOUND (404); plumbing failures use the plain string
// form elsewhere.
func bizError(c echo.Context, e *booking.Error) error {
	status := http.StatusBadRequest
	switch e.Code {
	case booking.CodeForbidden:
		status = http.StatusForbidden
	case booking.CodeReservationNotFound:
		status = http.StatusNotFound
	}
	return c.JSON(status, echo.Map{
		"error": echo.Map{"code": e.Code, "message": e.Message},
	})
}

// forbidden is the uniform 403 response.
func forbidden(c echo.Context) error {
	return bizError(c, booking.NewError(booking.CodeForbidden, "you do not have permission to perform this action"))
}
