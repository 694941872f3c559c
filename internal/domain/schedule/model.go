package schedule

import (
	"fmt"
	"strings"
	"time"

	"studio/internal/domain/errs"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values, Monday first.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayToWeekday = map[string]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// Domain errors
var (
	ErrEmptyServiceID     = fmt.Errorf("%w: service ID cannot be empty", errs.ErrValidation)
	ErrInvalidDay         = fmt.Errorf("%w: day must be a valid day of the week", errs.ErrValidation)
	ErrEmptyStartTime     = fmt.Errorf("%w: start time cannot be empty", errs.ErrValidation)
	ErrEmptyEndTime       = fmt.Errorf("%w: end time cannot be empty", errs.ErrValidation)
	ErrMissingRule        = fmt.Errorf("%w: schedule needs a recurrence rule", errs.ErrValidation)
	ErrNoWeekdays         = fmt.Errorf("%w: weekly recurrence needs at least one day", errs.ErrValidation)
	ErrInvalidDayOfMonth  = fmt.Errorf("%w: day of month must be between 1 and 31", errs.ErrValidation)
	ErrNoCustomDates      = fmt.Errorf("%w: custom recurrence needs at least one date", errs.ErrValidation)
	ErrEmptyEffectiveFrom = fmt.Errorf("%w: effective from date cannot be zero", errs.ErrValidation)
	ErrInvalidEffective   = fmt.Errorf("%w: effective until must not be before effective from", errs.ErrValidation)
	ErrNegativeCapacity   = fmt.Errorf("%w: max participants cannot be negative", errs.ErrValidation)
	ErrNotFound           = fmt.Errorf("%w: schedule not found", errs.ErrNotFound)
)

// Schedule is a recurring class template. Concrete class dates are resolved
// on demand from the Rule and the effective window; they are never stored here.
type Schedule struct {
	ID                  string
	ServiceID           string
	TrainerID           string
	Rule                Rule
	StartTime           string // HH:MM format
	EndTime             string // HH:MM format
	EffectiveFrom       time.Time
	EffectiveUntil      *time.Time // nil = open-ended
	MaxParticipants     int        // 0 = unlimited
	CurrentParticipants int
	IsActive            bool
}

// RecurrenceType returns the type tag of the schedule's rule.
func (s *Schedule) RecurrenceType() RecurrenceType {
	if s.Rule == nil {
		return ""
	}
	return s.Rule.Type()
}

// Validate checks if the Schedule has valid data.
// PRE: Schedule struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Schedule) Validate() error {
	if strings.TrimSpace(s.ServiceID) == "" {
		return ErrEmptyServiceID
	}
	if s.Rule == nil {
		return ErrMissingRule
	}
	if err := s.Rule.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.StartTime) == "" {
		return ErrEmptyStartTime
	}
	if strings.TrimSpace(s.EndTime) == "" {
		return ErrEmptyEndTime
	}
	if _, err := s.DurationHours(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	if s.EffectiveFrom.IsZero() {
		return ErrEmptyEffectiveFrom
	}
	if s.EffectiveUntil != nil && s.EffectiveUntil.Before(s.EffectiveFrom) {
		return ErrInvalidEffective
	}
	if s.MaxParticipants < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

// DurationHours returns the session duration in hours.
// PRE: StartTime and EndTime are in HH:MM format
// POST: Returns duration as float64 hours, or error if times can't be parsed
func (s *Schedule) DurationHours() (float64, error) {
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q: %w", s.StartTime, err)
	}
	end, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q: %w", s.EndTime, err)
	}
	dur := end.Sub(start)
	if dur <= 0 {
		dur += 24 * time.Hour // overnight sessions
	}
	return dur.Hours(), nil
}

// HasCapacity reports whether another enrollment fits given the number of
// active bookings already on the schedule.
func (s *Schedule) HasCapacity(activeBookings int) bool {
	return s.MaxParticipants == 0 || activeBookings < s.MaxParticipants
}

// ParseWeekday maps a lowercase day name to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	wd, ok := dayToWeekday[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, ErrInvalidDay
	}
	return wd, nil
}
