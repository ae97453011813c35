package booking

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a reservation as exposed
// by the REST API.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// ParseStatus normalizes a client-supplied status string into a
// Status.  The second return value reports whether the input named a
// known status.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusCancelled:
		return StatusCancelled, true
	case StatusNoShow:
		return StatusNoShow, true
	}
	return "", false
}

// Active reports whether the status counts toward slot conflicts.
// Only PENDING and CONFIRMED reservations occupy a slot; terminal
// reservations stay in history without blocking it.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// transitions is the full legal transition table.  Statuses missing
// from the map (the terminal ones) allow no outgoing transitions.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// CanTransition reports whether moving from one status to another is
// listed in the transition table.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// StatusChange describes the column updates a legal transition must
// persist atomically: the new status plus whichever side-effect
// fields the target state stamps or clears.
type StatusChange struct {
	Status             Status
	ConfirmedAt        *time.Time // set when entering CONFIRMED
	CompletedAt        *time.Time // set when entering COMPLETED
	CancellationReason *string    // persisted when entering CANCELLED
	TotalAmount        *int64     // persisted when entering COMPLETED, if supplied
	ClearTotalAmount   bool       // entering CANCELLED nulls any total
}

// Transition validates a requested status change against the
// transition table and, when legal, returns the StatusChange the
// caller must persist.  reason and totalAmount are optional inputs
// used only by the CANCELLED and COMPLETED targets respectively.
// An illegal transition yields an INVALID_STATUS_TRANSITION error
// naming both statuses.
func Transition(current, requested Status, reason *string, totalAmount *int64, now time.Time) (StatusChange, *Error) {
	if !CanTransition(current, requested) {
		return StatusChange{}, NewError(CodeInvalidStatusTransition,
			fmt.Sprintf("cannot change status from %s to %s", current, requested))
	}
	change := StatusChange{Status: requested}
	switch requested {
	case StatusConfirmed:
		ts := now
		change.ConfirmedAt = &ts
	case StatusCompleted:
		ts := now
		change.CompletedAt = &ts
		change.TotalAmount = totalAmount
	case StatusCancelled:
		change.CancellationReason = reason
		change.ClearTotalAmount = true
	}
	return change, nil
}
