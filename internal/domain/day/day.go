// Package day holds calendar-date helpers.
// A calendar date is a time.Time at midnight UTC; ISO strings use Layout.
package day

import (
	"fmt"
	"time"

	"studio/internal/domain/errs"
)

// Layout is the ISO date layout used in storage and on the wire.
const Layout = "2006-01-02"

// Of truncates t to its calendar date in UTC.
// PRE: none
// POST: Returns midnight UTC of t's year, month and day
func Of(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date.
func Date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// Parse parses an ISO date string.
// PRE: s is in YYYY-MM-DD format
// POST: Returns the calendar date or a validation error
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", errs.ErrValidation, s)
	}
	return t, nil
}

// ParseOptional parses s, returning nil for an empty string.
func ParseOptional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Format renders a calendar date as ISO.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatAll renders each date as ISO, preserving order.
func FormatAll(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = Format(d)
	}
	return out
}

// FormatOptional renders t as ISO, or "" when nil.
func FormatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// Within reports whether d lies in [from, until], treating a nil until as open-ended.
// INVARIANT: comparison is on calendar dates only
func Within(d, from time.Time, until *time.Time) bool {
	d = Of(d)
	if d.Before(Of(from)) {
		return false
	}
	return until == nil || !d.After(Of(*until))
}
