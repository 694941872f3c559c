package customer

import (
	"fmt"
	"strings"

	"studio/internal/domain/errs"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Membership statuses
const (
	MembershipActive   = "active"
	MembershipInactive = "inactive"
)

// Domain errors
var (
	ErrEmptyName         = fmt.Errorf("%w: customer name cannot be empty", errs.ErrValidation)
	ErrNameTooLong       = fmt.Errorf("%w: customer name cannot exceed %d characters", errs.ErrValidation, MaxNameLength)
	ErrInvalidEmail      = fmt.Errorf("%w: customer email must be valid", errs.ErrValidation)
	ErrInvalidMembership = fmt.Errorf("%w: membership status must be 'active' or 'inactive'", errs.ErrValidation)
	ErrNotFound          = fmt.Errorf("%w: customer not found", errs.ErrNotFound)
)

// Customer is a converted lead who can hold bookings and subscriptions.
// MembershipStatus follows subscriptions; it is set by the subscription
// workflows, not edited directly.
type Customer struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	MembershipStatus string
}

// Validate checks if the Customer has valid data.
// PRE: Customer struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email, when set, must contain '@'; Name must not be empty
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if c.MembershipStatus != MembershipActive && c.MembershipStatus != MembershipInactive {
		return ErrInvalidMembership
	}
	return nil
}

// IsActive returns true if the customer currently holds an active membership.
// INVARIANT: MembershipStatus field is not mutated
func (c *Customer) IsActive() bool {
	return c.MembershipStatus == MembershipActive
}

// SyncMembership sets the membership status from the number of the
// customer's active subscriptions and reports whether it changed.
// POST: active iff activeSubscriptions > 0
func (c *Customer) SyncMembership(activeSubscriptions int) bool {
	want := MembershipInactive
	if activeSubscriptions > 0 {
		want = MembershipActive
	}
	changed := c.MembershipStatus != want
	c.MembershipStatus = want
	return changed
}
