package utils

import (
	"fmt"
	"strings"
	"time"
)

// NewReservationNumber builds a human-readable reservation number of
// the form JM-20260901-3F9A2C.  The number is for display only and
// never used for lookups, so a short random suffix is enough.
func NewReservationNumber(date time.Time) (string, error) {
	suffix, err := RandomHex(3)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JM-%s-%s", date.Format("20060102"), strings.ToUpper(suffix)), nil
}
