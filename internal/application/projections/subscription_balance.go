package projections

import (
	"context"

	"github.com/shopspring/decimal"
)

// SubscriptionBalanceQuery carries query parameters.
type SubscriptionBalanceQuery struct {
	SubscriptionID string
}

// SubscriptionBalance is the fee and session position of one subscription.
type SubscriptionBalance struct {
	SubscriptionID    string
	CustomerID        string
	Status            string
	TotalFees         decimal.Decimal
	AmountPaid        decimal.Decimal
	RemainingAmount   decimal.Decimal
	PaymentStatus     string
	TotalSessions     *int
	SessionsCompleted int
	SessionsRemaining *int
}

// SubscriptionBalanceDeps holds dependencies for QuerySubscriptionBalance.
type SubscriptionBalanceDeps struct {
	Subscriptions SubscriptionStore
}

// QuerySubscriptionBalance reads the stored ledger of one subscription.
// PRE: subscription exists
// POST: RemainingAmount = TotalFees - AmountPaid, never negative
func QuerySubscriptionBalance(ctx context.Context, query SubscriptionBalanceQuery, deps SubscriptionBalanceDeps) (SubscriptionBalance, error) {
	s, err := deps.Subscriptions.GetByID(ctx, query.SubscriptionID)
	if err != nil {
		return SubscriptionBalance{}, err
	}
	return SubscriptionBalance{
		SubscriptionID:    s.ID,
		CustomerID:        s.CustomerID,
		Status:            s.Status,
		TotalFees:         s.TotalFees,
		AmountPaid:        s.AmountPaid(),
		RemainingAmount:   s.RemainingAmount(),
		PaymentStatus:     s.PaymentStatus(),
		TotalSessions:     s.TotalSessions,
		SessionsCompleted: s.SessionsCompleted(),
		SessionsRemaining: s.SessionsRemaining(),
	}, nil
}
