package events

import (
	"strings"
	"time"
)

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate accepts the ISO 8601 forms clients send for event_date. Values
// without an offset are taken as UTC wall clock; values with one are converted
// to UTC. Fractional seconds are kept to microsecond precision.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Truncate(time.Microsecond), nil
		}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.UTC().Truncate(time.Microsecond), nil
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders a naive UTC timestamp the way responses expose it.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}
