package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"studio/internal/domain/payment"
	"studio/internal/domain/subscription"
)

// PaymentDeps holds dependencies for the payment workflows.
type PaymentDeps struct {
	Tx    TxRunner
	Clock Clock
}

// RecordPaymentInput carries input for the record payment orchestrator.
type RecordPaymentInput struct {
	SubscriptionID string // empty for an ad hoc payment
	CustomerID     string `validate:"required"`
	Amount         string `validate:"required,numeric"`
	Method         string `validate:"required,oneof=cash card upi bank_transfer online"`
	Status         string `validate:"omitempty,oneof=pending completed failed refunded"` // defaults to completed
	TransactionID  string `validate:"max=200"`
	PaidAt         string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Notes          string `validate:"max=1000"`
}

// RecordPaymentResult carries the stored payment and, for subscription
// payments, the reconciled subscription.
type RecordPaymentResult struct {
	Payment      payment.Payment
	Subscription *subscription.Subscription
}

// ExecuteRecordPayment appends a payment and, when it references a
// subscription, rebuilds the subscription's ledger from its full payment
// history in the same transaction.
// PRE: customer exists; a referenced subscription belongs to the customer and is not cancelled
// POST: payment stored; subscription AmountPaid = sum of its completed payments
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps PaymentDeps) (RecordPaymentResult, error) {
	if err := validateInput(input); err != nil {
		return RecordPaymentResult{}, err
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return RecordPaymentResult{}, err
	}
	paidAt := deps.Clock.now()
	if input.PaidAt != "" {
		if paidAt, err = time.Parse(time.RFC3339, input.PaidAt); err != nil {
			return RecordPaymentResult{}, err
		}
	}
	status := input.Status
	if status == "" {
		status = payment.StatusCompleted
	}

	p := payment.Payment{
		ID:             deps.Clock.newID(),
		SubscriptionID: input.SubscriptionID,
		CustomerID:     input.CustomerID,
		Amount:         amount,
		Method:         input.Method,
		Status:         status,
		TransactionID:  strings.TrimSpace(input.TransactionID),
		PaidAt:         paidAt.UTC(),
		Notes:          input.Notes,
	}
	if err := p.Validate(); err != nil {
		return RecordPaymentResult{}, err
	}

	var result RecordPaymentResult
	err = deps.Tx.InTx(ctx, func(st Stores) error {
		if _, err := st.Customers.GetByID(ctx, p.CustomerID); err != nil {
			return err
		}
		var sub subscription.Subscription
		if p.SubscriptionID != "" {
			if sub, err = st.Subscriptions.GetByID(ctx, p.SubscriptionID); err != nil {
				return err
			}
			if sub.CustomerID != p.CustomerID {
				return subscription.ErrWrongCustomer
			}
			if sub.IsCancelled() {
				return subscription.ErrCancelled
			}
		}
		if err := st.Payments.Save(ctx, p); err != nil {
			return err
		}
		result.Payment = p
		if p.SubscriptionID == "" {
			return nil
		}
		if err := reconcilePayments(ctx, st, &sub, deps.Clock); err != nil {
			return err
		}
		result.Subscription = &sub
		return nil
	})
	if err != nil {
		return RecordPaymentResult{}, err
	}

	slog.Info("payment_event", "event", "payment_recorded", "payment_id", p.ID, "subscription_id", p.SubscriptionID,
		"customer_id", p.CustomerID, "amount", p.Amount.String(), "status", p.Status)
	return result, nil
}

// RefundPaymentInput carries input for the refund payment orchestrator.
type RefundPaymentInput struct {
	PaymentID string `validate:"required"`
	Reason    string `validate:"max=500"`
}

// ExecuteRefundPayment moves a completed payment to refunded and reconciles
// its subscription in the same transaction.
// PRE: payment exists and is completed
// POST: payment refunded; subscription ledger rebuilt from its payments
func ExecuteRefundPayment(ctx context.Context, input RefundPaymentInput, deps PaymentDeps) (RecordPaymentResult, error) {
	if err := validateInput(input); err != nil {
		return RecordPaymentResult{}, err
	}

	var result RecordPaymentResult
	err := deps.Tx.InTx(ctx, func(st Stores) error {
		p, err := st.Payments.GetByID(ctx, input.PaymentID)
		if err != nil {
			return err
		}
		if err := p.Refund(deps.Clock.now()); err != nil {
			return err
		}
		if reason := strings.TrimSpace(input.Reason); reason != "" {
			p.Notes = strings.TrimSpace(p.Notes + "\nrefund: " + reason)
		}
		if err := st.Payments.Save(ctx, p); err != nil {
			return err
		}
		result.Payment = p
		if p.SubscriptionID == "" {
			return nil
		}
		sub, err := st.Subscriptions.GetByID(ctx, p.SubscriptionID)
		if err != nil {
			return err
		}
		if err := reconcilePayments(ctx, st, &sub, deps.Clock); err != nil {
			return err
		}
		result.Subscription = &sub
		return nil
	})
	if err != nil {
		return RecordPaymentResult{}, err
	}

	slog.Info("payment_event", "event", "payment_refunded", "payment_id", result.Payment.ID, "subscription_id", result.Payment.SubscriptionID, "amount", result.Payment.Amount.String())
	return result, nil
}

// reconcilePayments rebuilds sub's ledger from its stored payments and saves it.
func reconcilePayments(ctx context.Context, st Stores, sub *subscription.Subscription, clock Clock) error {
	payments, err := st.Payments.ListBySubscription(ctx, sub.ID)
	if err != nil {
		return err
	}
	sub.Reconcile(payments)
	sub.UpdatedAt = clock.now()
	return st.Subscriptions.Save(ctx, *sub)
}
