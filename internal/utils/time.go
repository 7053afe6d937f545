package utils

import "time"

// ISOLayout matches the millisecond UTC timestamps produced by JavaScript's toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the calendar date format used for journal entries.
const DateLayout = "2006-01-02"

// ISOTimestamp formats t as a UTC ISO-8601 timestamp with millisecond precision.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISOTimestamp accepts both the millisecond layout and plain RFC 3339.
func ParseISOTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Today returns the calendar date of now as midnight UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
