package models

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
	}
	return t, nil
}

// FormatDate renders t in the storage layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDate drops the time of day, keeping the calendar date.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights counts calendar nights in [checkIn, checkOut). Non-positive ranges give 0.
func Nights(checkIn, checkOut time.Time) int {
	n := int(TruncateDate(checkOut).Sub(TruncateDate(checkIn)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}
