package services

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate accepts ISO dates (2024-03-15) as sent by date inputs and the
// French short form (15/03/2024) shown back to users.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range []string{"2006-01-02", frShortDateLayout} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD or JJ/MM/AAAA", ErrValidation, dateStr)
}

// EndOfDay returns the last instant of t's calendar day
func EndOfDay(t time.Time) time.Time {
	return t.Add(24*time.Hour - time.Nanosecond)
}
