package util

import "time"

// DateFormat is the calendar date format used for menu entries.
const DateFormat = "2006-01-02"

// FormatDate formats a time as a calendar date string.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDate parses a calendar date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// StartOfDay returns midnight of the given day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
