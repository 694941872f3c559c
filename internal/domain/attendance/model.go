package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"studio/internal/domain/errs"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

// NotMarked annotates a customer with no record for the date. It is never stored.
const NotMarked = "not_marked"

// Max length constants.
const (
	MaxNotesLength = 1000
)

// ValidStatuses lists accepted attendance statuses.
var ValidStatuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Domain errors
var (
	ErrEmptyCustomerID     = fmt.Errorf("%w: attendance must be associated with a customer", errs.ErrValidation)
	ErrEmptyScheduleID     = fmt.Errorf("%w: attendance must be associated with a schedule", errs.ErrValidation)
	ErrEmptySubscriptionID = fmt.Errorf("%w: attendance must be associated with a subscription", errs.ErrValidation)
	ErrEmptyClassDate      = fmt.Errorf("%w: class date cannot be zero", errs.ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: status must be one of present, absent, late, excused", errs.ErrValidation)
	ErrNotesTooLong        = fmt.Errorf("%w: notes cannot exceed %d characters", errs.ErrValidation, MaxNotesLength)
	ErrOutsideBooking      = fmt.Errorf("%w: class date is outside the customer's booking", errs.ErrValidation)
	ErrScheduleMismatch    = fmt.Errorf("%w: subscription is not booked on this schedule", errs.ErrValidation)
	ErrNotFound            = fmt.Errorf("%w: attendance record not found", errs.ErrNotFound)
)

// Attendance is the mark for one customer on one schedule on one date.
// Re-marking the same key updates the record in place.
type Attendance struct {
	ID             string
	CustomerID     string
	ScheduleID     string
	SubscriptionID string
	ClassDate      time.Time
	Status         string
	MarkedBy       string
	Notes          string
	MarkedAt       time.Time
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: CustomerID, ScheduleID and ClassDate form the record key
func (a *Attendance) Validate() error {
	if strings.TrimSpace(a.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	if strings.TrimSpace(a.ScheduleID) == "" {
		return ErrEmptyScheduleID
	}
	if strings.TrimSpace(a.SubscriptionID) == "" {
		return ErrEmptySubscriptionID
	}
	if a.ClassDate.IsZero() {
		return ErrEmptyClassDate
	}
	if !lo.Contains(ValidStatuses, a.Status) {
		return ErrInvalidStatus
	}
	if len(a.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// IsPresent reports whether the mark counts as a completed session.
func (a *Attendance) IsPresent() bool {
	return a.Status == StatusPresent
}

// SessionDelta returns the change to sessions completed when a mark moves
// from oldStatus to newStatus. An empty oldStatus means no prior record.
// POST: +1 only on a move into present, -1 only on a move out of present, 0 otherwise
func SessionDelta(oldStatus, newStatus string) int {
	wasPresent := oldStatus == StatusPresent
	isPresent := newStatus == StatusPresent
	switch {
	case !wasPresent && isPresent:
		return 1
	case wasPresent && !isPresent:
		return -1
	default:
		return 0
	}
}
