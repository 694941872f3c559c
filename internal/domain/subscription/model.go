package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"studio/internal/domain/day"
	"studio/internal/domain/errs"
	"studio/internal/domain/payment"
)

// Payment types
const (
	PaymentTypeFull         = "full"
	PaymentTypeInstallments = "installments"
)

// Subscription statuses
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses, derived from the payment history.
const (
	PaymentPending  = "pending"
	PaymentPartial  = "partial"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// ValidStatuses lists accepted subscription statuses.
var ValidStatuses = []string{StatusActive, StatusPaused, StatusCompleted, StatusCancelled}

// Domain errors
var (
	ErrEmptyClassBookingID   = fmt.Errorf("%w: subscription must reference a class booking", errs.ErrValidation)
	ErrEmptyCustomerID       = fmt.Errorf("%w: subscription must reference a customer", errs.ErrValidation)
	ErrNegativeFees          = fmt.Errorf("%w: total fees cannot be negative", errs.ErrValidation)
	ErrInvalidPaymentType    = fmt.Errorf("%w: payment type must be 'full' or 'installments'", errs.ErrValidation)
	ErrInvalidInstallments   = fmt.Errorf("%w: full payment has exactly one installment, installments need at least one", errs.ErrValidation)
	ErrNegativeSessions      = fmt.Errorf("%w: total sessions cannot be negative", errs.ErrValidation)
	ErrInvalidStatus         = fmt.Errorf("%w: status must be one of active, paused, completed, cancelled", errs.ErrValidation)
	ErrInvalidPauseWindow    = fmt.Errorf("%w: paused until must not be before paused from", errs.ErrValidation)
	ErrNotActive             = fmt.Errorf("%w: subscription is not active", errs.ErrValidation)
	ErrNotPaused             = fmt.Errorf("%w: subscription is not paused", errs.ErrValidation)
	ErrAlreadyCancelled      = fmt.Errorf("%w: subscription is already cancelled", errs.ErrValidation)
	ErrCancelled             = fmt.Errorf("%w: subscription is cancelled", errs.ErrValidation)
	ErrWrongCustomer         = fmt.Errorf("%w: subscription belongs to another customer", errs.ErrValidation)
	ErrDuplicateSubscription = fmt.Errorf("%w: class booking already has a subscription", errs.ErrConflict)
	ErrNotFound              = fmt.Errorf("%w: subscription not found", errs.ErrNotFound)
)

// Ledger is the derived part of a subscription. It is produced by Reconcile
// and ApplySessionDelta and is only read back from storage through Restore.
type Ledger struct {
	AmountPaid        decimal.Decimal
	PaymentStatus     string
	SessionsCompleted int
}

// Subscription is the financial and session contract for one class booking.
type Subscription struct {
	ID                   string
	ClassBookingID       string
	CustomerID           string
	TotalFees            decimal.Decimal
	PaymentType          string
	NumberOfInstallments int
	TotalSessions        *int // nil = open-ended
	Status               string
	PausedFrom           *time.Time
	PausedUntil          *time.Time
	CancellationReason   string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	ledger Ledger
}

// Restore rebuilds a subscription read from storage together with its ledger.
// Only persistence adapters should call this.
func Restore(s Subscription, l Ledger) Subscription {
	s.ledger = l
	return s
}

// Ledger returns the derived ledger for persistence.
func (s *Subscription) Ledger() Ledger {
	l := s.ledger
	if l.PaymentStatus == "" {
		l.PaymentStatus = PaymentPending
	}
	return l
}

// AmountPaid is the sum of completed payments at the last reconcile.
func (s *Subscription) AmountPaid() decimal.Decimal { return s.ledger.AmountPaid }

// PaymentStatus is the status derived at the last reconcile.
func (s *Subscription) PaymentStatus() string { return s.Ledger().PaymentStatus }

// SessionsCompleted counts present marks.
func (s *Subscription) SessionsCompleted() int { return s.ledger.SessionsCompleted }

// SessionsRemaining returns TotalSessions minus completed sessions, floored at
// zero, or nil when the subscription has no session cap.
func (s *Subscription) SessionsRemaining() *int {
	if s.TotalSessions == nil {
		return nil
	}
	return lo.ToPtr(max(*s.TotalSessions-s.ledger.SessionsCompleted, 0))
}

// RemainingAmount is TotalFees minus AmountPaid, never negative.
func (s *Subscription) RemainingAmount() decimal.Decimal {
	return decimal.Max(s.TotalFees.Sub(s.ledger.AmountPaid), decimal.Zero)
}

// Validate checks if the Subscription has valid data.
// PRE: Subscription struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.ClassBookingID) == "" {
		return ErrEmptyClassBookingID
	}
	if strings.TrimSpace(s.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	if s.TotalFees.IsNegative() {
		return ErrNegativeFees
	}
	switch s.PaymentType {
	case PaymentTypeFull:
		if s.NumberOfInstallments != 1 {
			return ErrInvalidInstallments
		}
	case PaymentTypeInstallments:
		if s.NumberOfInstallments < 1 {
			return ErrInvalidInstallments
		}
	default:
		return ErrInvalidPaymentType
	}
	if s.TotalSessions != nil && *s.TotalSessions < 0 {
		return ErrNegativeSessions
	}
	if !lo.Contains(ValidStatuses, s.Status) {
		return ErrInvalidStatus
	}
	if s.PausedFrom != nil && s.PausedUntil != nil && day.Of(*s.PausedUntil).Before(day.Of(*s.PausedFrom)) {
		return ErrInvalidPauseWindow
	}
	return nil
}

// IsActive reports whether the subscription counts towards active membership.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// IsCancelled reports whether the subscription is cancelled.
func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// DerivePaymentStatus maps payment totals to a payment status.
// POST: paid when completed >= totalFees > 0; partial when 0 < completed < totalFees;
// refunded when nothing is completed but something was refunded; pending otherwise
func DerivePaymentStatus(totalFees, completed, refunded decimal.Decimal) string {
	switch {
	case totalFees.IsPositive() && completed.GreaterThanOrEqual(totalFees):
		return PaymentPaid
	case completed.IsPositive() && completed.LessThan(totalFees):
		return PaymentPartial
	case completed.IsZero() && refunded.IsPositive():
		return PaymentRefunded
	default:
		return PaymentPending
	}
}

// Reconcile recomputes AmountPaid and PaymentStatus from the full payment
// history of this subscription. Session counters are untouched.
// PRE: payments is the complete history for s.ID
// POST: ledger reflects the history regardless of its order
func (s *Subscription) Reconcile(payments []payment.Payment) {
	completed, refunded := payment.Totals(payments)
	s.ledger.AmountPaid = completed
	s.ledger.PaymentStatus = DerivePaymentStatus(s.TotalFees, completed, refunded)
}

// ApplySessionDelta adjusts SessionsCompleted by delta.
// POST: SessionsCompleted >= 0
func (s *Subscription) ApplySessionDelta(delta int) {
	s.ledger.SessionsCompleted = max(s.ledger.SessionsCompleted+delta, 0)
}

// RecountSessions replaces SessionsCompleted with a count of present marks
// read back from the attendance history.
// POST: SessionsCompleted >= 0
func (s *Subscription) RecountSessions(presentMarks int) {
	s.ledger.SessionsCompleted = max(presentMarks, 0)
}

// Pause moves an active subscription to paused for [from, until].
// PRE: Status is active
// POST: Status is paused with the window recorded
func (s *Subscription) Pause(from time.Time, until *time.Time) error {
	if s.Status != StatusActive {
		return ErrNotActive
	}
	if until != nil && day.Of(*until).Before(day.Of(from)) {
		return ErrInvalidPauseWindow
	}
	from = day.Of(from)
	s.PausedFrom = &from
	s.PausedUntil = until
	s.Status = StatusPaused
	return nil
}

// Resume moves a paused subscription back to active and clears the window.
// PRE: Status is paused
func (s *Subscription) Resume() error {
	if s.Status != StatusPaused {
		return ErrNotPaused
	}
	s.PausedFrom = nil
	s.PausedUntil = nil
	s.Status = StatusActive
	return nil
}

// Cancel marks the subscription cancelled with a reason.
// PRE: Status is not cancelled
// POST: Status is cancelled
func (s *Subscription) Cancel(reason string) error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	s.Status = StatusCancelled
	s.CancellationReason = strings.TrimSpace(reason)
	return nil
}
