// Package booking holds the pure reservation business rules: the
// status state machine, the business-hours slot validator and the
// role-based permission checks.  Nothing in this package touches the
// database; repositories and handlers compose these pieces around
// their transactions.
package booking

import "fmt"

// Error codes returned to clients in the structured error payload.
// Handlers map every one of these to an HTTP 400 except CodeForbidden
// (403) and CodeReservationNotFound (404).
const (
	CodeForbidden                = "FORBIDDEN"
	CodeReservationNotFound      = "RESERVATION_NOT_FOUND"
	CodeReservationNotModifiable = "RESERVATION_NOT_MODIFIABLE"
	CodeReservationInPast        = "RESERVATION_IN_PAST"
	CodeStoreClosed              = "STORE_CLOSED"
	CodeOutsideBusinessHours     = "OUTSIDE_BUSINESS_HOURS"
	CodePartySizeExceedsCapacity = "PARTY_SIZE_EXCEEDS_CAPACITY"
	CodeTimeSlotUnavailable      = "TIME_SLOT_UNAVAILABLE"
	CodeInvalidStatusTransition  = "INVALID_STATUS_TRANSITION"
)

// Error is a typed business rule violation.  It carries a stable
// machine-readable code alongside a human message so handlers can
// serialize it as {"code": ..., "message": ...} without inspecting
// the message text.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a typed business error from a code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}
