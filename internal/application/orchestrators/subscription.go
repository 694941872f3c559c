package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"

	"studio/internal/domain/attendance"
	"studio/internal/domain/classbooking"
	"studio/internal/domain/day"
	"studio/internal/domain/subscription"
)

// SubscriptionDeps holds dependencies for the subscription workflows.
type SubscriptionDeps struct {
	Tx    TxRunner
	Clock Clock
}

// --- Create Subscription ---

// CreateSubscriptionInput carries input for the create subscription orchestrator.
type CreateSubscriptionInput struct {
	ClassBookingID       string `validate:"required"`
	TotalFees            string `validate:"required,numeric"`
	PaymentType          string `validate:"required,oneof=full installments"`
	NumberOfInstallments int    `validate:"gte=0"` // 0 defaults to 1
	TotalSessions        *int   `validate:"omitempty,gte=0"`
}

// ExecuteCreateSubscription attaches the financial and session contract to a booking.
// PRE: booking exists, is active and has no subscription
// POST: An active subscription with a pending ledger exists; customer membership is active
func ExecuteCreateSubscription(ctx context.Context, input CreateSubscriptionInput, deps SubscriptionDeps) (subscription.Subscription, error) {
	if err := validateInput(input); err != nil {
		return subscription.Subscription{}, err
	}
	fees, err := parseAmount("total fees", input.TotalFees)
	if err != nil {
		return subscription.Subscription{}, err
	}
	installments := input.NumberOfInstallments
	if installments == 0 {
		installments = 1
	}

	var sub subscription.Subscription
	err = deps.Tx.InTx(ctx, func(st Stores) error {
		b, err := st.Bookings.GetByID(ctx, input.ClassBookingID)
		if err != nil {
			return err
		}
		if !b.IsActive() {
			return classbooking.ErrNotActive
		}
		_, err = st.Subscriptions.GetByClassBookingID(ctx, b.ID)
		switch {
		case err == nil:
			return subscription.ErrDuplicateSubscription
		case !errors.Is(err, subscription.ErrNotFound):
			return err
		}

		totalSessions := input.TotalSessions
		if totalSessions == nil && b.EndsOn != nil {
			n := len(b.BookingDates())
			totalSessions = &n
		}
		now := deps.Clock.now()
		sub = subscription.Subscription{
			ID:                   deps.Clock.newID(),
			ClassBookingID:       b.ID,
			CustomerID:           b.CustomerID,
			TotalFees:            fees,
			PaymentType:          input.PaymentType,
			NumberOfInstallments: installments,
			TotalSessions:        totalSessions,
			Status:               subscription.StatusActive,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := sub.Validate(); err != nil {
			return err
		}
		sub.Reconcile(nil)
		if err := st.Subscriptions.Save(ctx, sub); err != nil {
			return err
		}
		return syncMembership(ctx, st, sub.CustomerID)
	})
	if err != nil {
		return subscription.Subscription{}, err
	}

	slog.Info("subscription_event", "event", "subscription_created", "subscription_id", sub.ID, "class_booking_id", sub.ClassBookingID, "customer_id", sub.CustomerID, "total_fees", sub.TotalFees.String())
	return sub, nil
}

// --- Status changes ---

// CancelSubscriptionInput carries input for the cancel subscription orchestrator.
type CancelSubscriptionInput struct {
	ID     string `validate:"required"`
	Reason string `validate:"max=500"`
}

// ExecuteCancelSubscription cancels a subscription; the booking is kept.
// PRE: subscription exists and is not cancelled
// POST: status cancelled; membership inactive only when no other subscription is active
func ExecuteCancelSubscription(ctx context.Context, input CancelSubscriptionInput, deps SubscriptionDeps) (subscription.Subscription, error) {
	if err := validateInput(input); err != nil {
		return subscription.Subscription{}, err
	}
	return changeSubscription(ctx, input.ID, deps, "subscription_cancelled", func(s *subscription.Subscription) error {
		return s.Cancel(input.Reason)
	})
}

// PauseSubscriptionInput carries input for the pause subscription orchestrator.
type PauseSubscriptionInput struct {
	ID          string `validate:"required"`
	PausedFrom  string `validate:"required,datetime=2006-01-02"`
	PausedUntil string `validate:"omitempty,datetime=2006-01-02"`
}

// ExecutePauseSubscription pauses an active subscription for a window.
// PRE: subscription is active
// POST: status paused with the window recorded; membership re-evaluated
func ExecutePauseSubscription(ctx context.Context, input PauseSubscriptionInput, deps SubscriptionDeps) (subscription.Subscription, error) {
	if err := validateInput(input); err != nil {
		return subscription.Subscription{}, err
	}
	from, err := day.Parse(input.PausedFrom)
	if err != nil {
		return subscription.Subscription{}, err
	}
	until, err := parseOptionalDay(input.PausedUntil)
	if err != nil {
		return subscription.Subscription{}, err
	}
	return changeSubscription(ctx, input.ID, deps, "subscription_paused", func(s *subscription.Subscription) error {
		return s.Pause(from, until)
	})
}

// ResumeSubscriptionInput carries input for the resume subscription orchestrator.
type ResumeSubscriptionInput struct {
	ID string `validate:"required"`
}

// ExecuteResumeSubscription moves a paused subscription back to active.
// PRE: subscription is paused
// POST: status active, pause window cleared; membership re-evaluated
func ExecuteResumeSubscription(ctx context.Context, input ResumeSubscriptionInput, deps SubscriptionDeps) (subscription.Subscription, error) {
	if err := validateInput(input); err != nil {
		return subscription.Subscription{}, err
	}
	return changeSubscription(ctx, input.ID, deps, "subscription_resumed", (*subscription.Subscription).Resume)
}

// changeSubscription applies a status transition and re-evaluates membership
// in one transaction.
func changeSubscription(ctx context.Context, id string, deps SubscriptionDeps, event string, apply func(*subscription.Subscription) error) (subscription.Subscription, error) {
	var sub subscription.Subscription
	err := deps.Tx.InTx(ctx, func(st Stores) error {
		s, err := st.Subscriptions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(&s); err != nil {
			return err
		}
		s.UpdatedAt = deps.Clock.now()
		if err := st.Subscriptions.Save(ctx, s); err != nil {
			return err
		}
		sub = s
		return syncMembership(ctx, st, s.CustomerID)
	})
	if err != nil {
		return subscription.Subscription{}, err
	}

	slog.Info("subscription_event", "event", event, "subscription_id", sub.ID, "status", sub.Status)
	return sub, nil
}

// --- Reconcile Subscription ---

// ReconcileSubscriptionInput carries input for the reconcile orchestrator.
type ReconcileSubscriptionInput struct {
	ID string `validate:"required"`
}

// ExecuteReconcileSubscription rebuilds the ledger of a subscription from its
// payment and attendance history.
// PRE: subscription exists
// POST: AmountPaid and PaymentStatus match the payments; SessionsCompleted counts present marks
// INVARIANT: running it twice gives the same ledger
func ExecuteReconcileSubscription(ctx context.Context, input ReconcileSubscriptionInput, deps SubscriptionDeps) (subscription.Subscription, error) {
	if err := validateInput(input); err != nil {
		return subscription.Subscription{}, err
	}

	var sub subscription.Subscription
	var before subscription.Ledger
	err := deps.Tx.InTx(ctx, func(st Stores) error {
		s, err := st.Subscriptions.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		before = s.Ledger()
		payments, err := st.Payments.ListBySubscription(ctx, s.ID)
		if err != nil {
			return err
		}
		marks, err := st.Attendance.ListBySubscription(ctx, s.ID)
		if err != nil {
			return err
		}
		s.Reconcile(payments)
		s.RecountSessions(lo.CountBy(marks, func(m attendance.Attendance) bool { return m.IsPresent() }))
		s.UpdatedAt = deps.Clock.now()
		if err := st.Subscriptions.Save(ctx, s); err != nil {
			return err
		}
		sub = s
		return nil
	})
	if err != nil {
		return subscription.Subscription{}, err
	}

	after := sub.Ledger()
	if !after.AmountPaid.Equal(before.AmountPaid) || after.PaymentStatus != before.PaymentStatus || after.SessionsCompleted != before.SessionsCompleted {
		slog.Warn("subscription_event", "event", "ledger_repaired", "subscription_id", sub.ID,
			"amount_paid_before", before.AmountPaid.String(), "amount_paid", after.AmountPaid.String(),
			"sessions_before", before.SessionsCompleted, "sessions", after.SessionsCompleted)
	}
	return sub, nil
}
