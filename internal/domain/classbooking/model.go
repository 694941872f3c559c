package classbooking

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"studio/internal/domain/day"
	"studio/internal/domain/errs"
	"studio/internal/domain/holiday"
	"studio/internal/domain/schedule"
)

// Status constants
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Domain errors
var (
	ErrEmptyCustomerID  = fmt.Errorf("%w: customer ID cannot be empty", errs.ErrValidation)
	ErrEmptyScheduleID  = fmt.Errorf("%w: schedule ID cannot be empty", errs.ErrValidation)
	ErrEmptyStartsOn    = fmt.Errorf("%w: starts on date cannot be zero", errs.ErrValidation)
	ErrInvalidPeriod    = fmt.Errorf("%w: ends on must not be before starts on", errs.ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: status must be 'active' or 'cancelled'", errs.ErrValidation)
	ErrServiceMismatch  = fmt.Errorf("%w: service does not match the schedule's service", errs.ErrValidation)
	ErrScheduleInactive = fmt.Errorf("%w: schedule is not active", errs.ErrValidation)
	ErrAlreadyCancelled = fmt.Errorf("%w: class booking is already cancelled", errs.ErrValidation)
	ErrNotActive        = fmt.Errorf("%w: class booking is cancelled", errs.ErrValidation)
	ErrDuplicateBooking = fmt.Errorf("%w: customer is already booked on this schedule", errs.ErrConflict)
	ErrScheduleFull     = fmt.Errorf("%w: schedule has reached max participants", errs.ErrConflict)
	ErrNotFound         = fmt.Errorf("%w: class booking not found", errs.ErrNotFound)
)

// DefaultHorizonDays bounds date expansion for open-ended bookings.
const DefaultHorizonDays = 365

// ResolveInputs carries the studio-wide inputs to booking date recomputation.
type ResolveInputs struct {
	Closures           []holiday.Holiday
	DefaultHorizonDays int // <= 0 uses DefaultHorizonDays
}

// ClassBooking is one customer's enrollment in one schedule.
// bookingDates is derived from the schedule and the period; it only changes
// through RecomputeDates.
type ClassBooking struct {
	ID         string
	CustomerID string
	ScheduleID string
	ServiceID  string
	StartsOn   time.Time
	EndsOn     *time.Time // nil = open-ended
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	bookingDates []time.Time
}

// Restore rebuilds a booking read from storage together with its cached dates.
// Only persistence adapters should call this.
func Restore(b ClassBooking, cachedDates []time.Time) ClassBooking {
	b.bookingDates = cachedDates
	return b
}

// BookingDates returns a copy of the cached booking dates.
func (b *ClassBooking) BookingDates() []time.Time {
	return append([]time.Time(nil), b.bookingDates...)
}

// ValidatePeriod checks the starts_on/ends_on pair.
// PRE: none
// POST: Returns ErrInvalidPeriod when endsOn precedes startsOn
func ValidatePeriod(startsOn time.Time, endsOn *time.Time) error {
	if startsOn.IsZero() {
		return ErrEmptyStartsOn
	}
	if endsOn != nil && day.Of(*endsOn).Before(day.Of(startsOn)) {
		return ErrInvalidPeriod
	}
	return nil
}

// Validate checks if the ClassBooking has valid data.
// PRE: ClassBooking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *ClassBooking) Validate() error {
	if strings.TrimSpace(b.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	if strings.TrimSpace(b.ScheduleID) == "" {
		return ErrEmptyScheduleID
	}
	if err := ValidatePeriod(b.StartsOn, b.EndsOn); err != nil {
		return err
	}
	if b.Status != StatusActive && b.Status != StatusCancelled {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive reports whether the booking is active.
func (b *ClassBooking) IsActive() bool {
	return b.Status == StatusActive
}

// Covers reports whether d falls inside the enrollment period.
func (b *ClassBooking) Covers(d time.Time) bool {
	return day.Within(d, b.StartsOn, b.EndsOn)
}

// Horizon is the last date the booking needs expanded: EndsOn, or StartsOn
// plus defaultDays for open-ended bookings.
func (b *ClassBooking) Horizon(defaultDays int) time.Time {
	if b.EndsOn != nil {
		return day.Of(*b.EndsOn)
	}
	return day.Of(b.StartsOn).AddDate(0, 0, defaultDays)
}

// RecomputeDates derives bookingDates from the schedule as it is now.
// PRE: b passes Validate; s is the booked schedule
// POST: bookingDates ⊆ s.AvailableDates and every date lies in the booking period
func (b *ClassBooking) RecomputeDates(s schedule.Schedule, in ResolveInputs) error {
	horizonDays := in.DefaultHorizonDays
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	horizon := b.Horizon(horizonDays)
	start := b.StartsOn
	available, err := s.AvailableDates(schedule.ResolveOptions{From: &start, Horizon: &horizon, Closures: in.Closures})
	if err != nil {
		return err
	}
	b.bookingDates = IntersectDates(b.StartsOn, b.EndsOn, available)
	return nil
}

// Cancel marks the booking cancelled; the row is kept for history.
// PRE: booking is active
// POST: Status is cancelled
func (b *ClassBooking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	return nil
}

// IntersectDates keeps the available dates inside [startsOn, endsOn].
// A nil endsOn is open-ended. The caller validates the period first; this
// function never fails.
func IntersectDates(startsOn time.Time, endsOn *time.Time, available []time.Time) []time.Time {
	return lo.Filter(available, func(d time.Time, _ int) bool {
		return day.Within(d, startsOn, endsOn)
	})
}
