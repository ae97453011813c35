package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayHours is one weekday's entry in a store's business-hours table.
// Open and Close are "HH:MM" strings; the break window is optional.
type DayHours struct {
	IsClosed   bool
	Open       string
	Close      string
	BreakStart *string
	BreakEnd   *string
}

// WeekHours maps a weekday to its hours entry.  Days missing from
// the map are treated the same as closed days.
type WeekHours map[time.Weekday]DayHours

// MinutesOfDay converts an "HH:MM" (or "HH:MM:SS") string into
// minutes since midnight.  It rejects malformed input and values
// outside a single day.
func MinutesOfDay(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return h*60 + m, nil
}

// SlotStart combines a calendar date and an "HH:MM" time-of-day into
// a single instant.  Dates are time-zone-naive; the service keeps
// everything in UTC, matching the database connection.
func SlotStart(date time.Time, clock string) time.Time {
	mins, err := MinutesOfDay(clock)
	if err != nil {
		return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), mins/60, mins%60, 0, 0, time.UTC)
}

// Validate decides whether a candidate reservation start time is
// legal for the week's hours.  The upper bound is inclusive: a
// reservation exactly at closing time is a last seating and passes.
// Break windows are only rejected when enforceBreak is set; the
// reference behavior leaves them advisory, so callers opt in via
// configuration.
func (w WeekHours) Validate(date time.Time, clock string, enforceBreak bool) *Error {
	day, ok := w[date.Weekday()]
	if !ok || day.IsClosed {
		return NewError(CodeStoreClosed, "the store is closed on the requested day")
	}
	at, err := MinutesOfDay(clock)
	if err != nil {
		return NewError(CodeOutsideBusinessHours, "invalid reservation time")
	}
	open, err := MinutesOfDay(day.Open)
	if err != nil {
		return NewError(CodeStoreClosed, "the store has no opening time for the requested day")
	}
	closeAt, err := MinutesOfDay(day.Close)
	if err != nil {
		return NewError(CodeStoreClosed, "the store has no closing time for the requested day")
	}
	if at < open || at > closeAt {
		return NewError(CodeOutsideBusinessHours,
			fmt.Sprintf("reservation time must be between %s and %s", day.Open, day.Close))
	}
	if enforceBreak && day.BreakStart != nil && day.BreakEnd != nil {
		bs, errS := MinutesOfDay(*day.BreakStart)
		be, errE := MinutesOfDay(*day.BreakEnd)
		if errS == nil && errE == nil && at >= bs && at < be {
			return NewError(CodeOutsideBusinessHours,
				fmt.Sprintf("reservation time falls within the break %s~%s", *day.BreakStart, *day.BreakEnd))
		}
	}
	return nil
}
