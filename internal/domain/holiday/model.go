package holiday

import (
	"fmt"
	"strings"
	"time"

	"studio/internal/domain/day"
	"studio/internal/domain/errs"
)

// Domain errors
var (
	ErrEmptyName      = fmt.Errorf("%w: closure name cannot be empty", errs.ErrValidation)
	ErrInvalidDates   = fmt.Errorf("%w: start date must be before or equal to end date", errs.ErrValidation)
	ErrEmptyStartDate = fmt.Errorf("%w: start date cannot be zero", errs.ErrValidation)
	ErrEmptyEndDate   = fmt.Errorf("%w: end date cannot be zero", errs.ErrValidation)
	ErrNotFound       = fmt.Errorf("%w: closure not found", errs.ErrNotFound)
)

// Holiday is a studio closure covering the calendar days StartDate..EndDate,
// both inclusive. No class occurrence falls inside a closure.
type Holiday struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// New builds a closure with a trimmed name and day-truncated bounds.
// A nil end makes a single-day closure.
// POST: returned closure passes Validate, or the error says why not
func New(id, name string, start time.Time, end *time.Time) (Holiday, error) {
	h := Holiday{ID: id, Name: strings.TrimSpace(name), StartDate: day.Of(start), EndDate: day.Of(start)}
	if end != nil {
		h.EndDate = day.Of(*end)
	}
	return h, h.Validate()
}

// Validate checks if the Holiday has valid data.
// PRE: Holiday struct is populated
// POST: Returns nil if valid, error otherwise
func (h *Holiday) Validate() error {
	switch {
	case strings.TrimSpace(h.Name) == "":
		return ErrEmptyName
	case h.StartDate.IsZero():
		return ErrEmptyStartDate
	case h.EndDate.IsZero():
		return ErrEmptyEndDate
	case day.Of(h.EndDate).Before(day.Of(h.StartDate)):
		return ErrInvalidDates
	}
	return nil
}

// Contains reports whether date (at any time of day) is a closed day.
func (h *Holiday) Contains(date time.Time) bool {
	end := h.EndDate
	return day.Within(date, h.StartDate, &end)
}

// Overlaps reports whether the closure shares at least one day with
// [from, until].
func (h *Holiday) Overlaps(from, until time.Time) bool {
	return !day.Of(h.StartDate).After(day.Of(until)) && !day.Of(h.EndDate).Before(day.Of(from))
}

// Days is the number of calendar days the closure covers.
func (h *Holiday) Days() int {
	return int(day.Of(h.EndDate).Sub(day.Of(h.StartDate)).Hours()/24) + 1
}
