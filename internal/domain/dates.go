package domain

import (
	"fmt"
	"time"
)

// DateKey is a calendar date in ISO format (YYYY-MM-DD). All period ids,
// completion dates and calendar instance dates use this representation so
// that chronological order equals lexicographic order.
type DateKey string

const dateKeyLayout = "2006-01-02"

// NewDateKey truncates a timestamp to its calendar date in the timestamp's
// own location.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates a raw string as a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.Parse(dateKeyLayout, s); err != nil {
		return "", fmt.Errorf("parse date key %q: %w", s, err)
	}
	return DateKey(s), nil
}

// Time returns the date at midnight UTC.
func (d DateKey) Time() (time.Time, error) {
	t, err := time.Parse(dateKeyLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("date key %q: %w", string(d), err)
	}
	return t, nil
}

// IsZero reports whether the key is unset.
func (d DateKey) IsZero() bool { return d == "" }

// Before reports whether d is chronologically before other.
func (d DateKey) Before(other DateKey) bool { return string(d) < string(other) }

// AddDays returns the key n days later (earlier for negative n). Invalid
// keys return the zero key.
func (d DateKey) AddDays(n int) DateKey {
	t, err := d.Time()
	if err != nil {
		return ""
	}
	return NewDateKey(t.AddDate(0, 0, n))
}

// DaysBetween returns the number of whole days from a to b. Negative when b
// precedes a. Invalid keys yield 0.
func DaysBetween(a, b DateKey) int {
	ta, err := a.Time()
	if err != nil {
		return 0
	}
	tb, err := b.Time()
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday opening t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// MonthKey identifies a calendar month as YYYY-MM. Used by the freeze bank
// rollover stamp.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// SameWeek reports whether two dates fall in the same Monday-based week.
// Comparison is by calendar date, so mixed locations behave.
func SameWeek(a, b time.Time) bool {
	return NewDateKey(StartOfWeek(a)) == NewDateKey(StartOfWeek(b))
}
