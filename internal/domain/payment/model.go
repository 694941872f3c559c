package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"studio/internal/domain/errs"
)

// Payment methods
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodUPI          = "upi"
	MethodBankTransfer = "bank_transfer"
	MethodOnline       = "online"
)

// Payment statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// ValidMethods lists accepted payment methods.
var ValidMethods = []string{MethodCash, MethodCard, MethodUPI, MethodBankTransfer, MethodOnline}

// ValidStatuses lists accepted payment statuses.
var ValidStatuses = []string{StatusPending, StatusCompleted, StatusFailed, StatusRefunded}

// Domain errors
var (
	ErrEmptyCustomerID      = fmt.Errorf("%w: payment must reference a customer", errs.ErrValidation)
	ErrNonPositiveAmount    = fmt.Errorf("%w: payment amount must be greater than zero", errs.ErrValidation)
	ErrInvalidMethod        = fmt.Errorf("%w: payment method must be one of cash, card, upi, bank_transfer, online", errs.ErrValidation)
	ErrInvalidStatus        = fmt.Errorf("%w: payment status must be one of pending, completed, failed, refunded", errs.ErrValidation)
	ErrNotRefundable        = fmt.Errorf("%w: only completed payments can be refunded", errs.ErrValidation)
	ErrDuplicateTransaction = fmt.Errorf("%w: transaction ID already recorded", errs.ErrConflict)
	ErrNotFound             = fmt.Errorf("%w: payment not found", errs.ErrNotFound)
)

// Payment is one financial event. Amount never changes after recording; the
// only permitted status move is completed -> refunded.
type Payment struct {
	ID             string
	SubscriptionID string // empty for ad hoc payments
	CustomerID     string
	Amount         decimal.Decimal
	Method         string
	Status         string
	TransactionID  string // unique when set
	PaidAt         time.Time
	Notes          string
	RefundedAt     time.Time
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	if !p.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !lo.Contains(ValidMethods, p.Method) {
		return ErrInvalidMethod
	}
	if !lo.Contains(ValidStatuses, p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsCompleted reports whether the payment counts towards amount paid.
func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// Refund moves a completed payment to refunded.
// PRE: Status is completed
// POST: Status is refunded and RefundedAt is set
func (p *Payment) Refund(at time.Time) error {
	if p.Status != StatusCompleted {
		return ErrNotRefundable
	}
	p.Status = StatusRefunded
	p.RefundedAt = at
	return nil
}

// Totals sums completed and refunded amounts over a payment history.
// The result does not depend on the order of payments.
func Totals(payments []Payment) (completed, refunded decimal.Decimal) {
	completed, refunded = decimal.Zero, decimal.Zero
	for _, p := range payments {
		switch p.Status {
		case StatusCompleted:
			completed = completed.Add(p.Amount)
		case StatusRefunded:
			refunded = refunded.Add(p.Amount)
		}
	}
	return completed, refunded
}
