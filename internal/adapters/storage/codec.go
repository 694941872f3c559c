package storage

import (
	"fmt"
	"strings"
	"time"

	"studio/internal/domain/day"
)

// TimeFormat is the layout for stored timestamps.
const TimeFormat = time.RFC3339Nano

// NullString maps "" to NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ParseTime parses a stored timestamp; empty yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported time format: %q", s)
	}
	return t, nil
}

// FormatTime renders a timestamp for storage; the zero time yields NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeFormat)
}

// JoinDates renders calendar dates as a comma-separated ISO list.
func JoinDates(dates []time.Time) string {
	return strings.Join(day.FormatAll(dates), ",")
}

// SplitList splits a comma-separated column; empty yields nil.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// SplitDates parses a list written by JoinDates.
func SplitDates(s string) ([]time.Time, error) {
	parts := SplitList(s)
	out := make([]time.Time, 0, len(parts))
	for _, part := range parts {
		d, err := day.Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
