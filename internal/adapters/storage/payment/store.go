package payment

import (
	"context"

	domain "studio/internal/domain/payment"
)

// Store persists Payment events. Amounts are never updated; only status and
// refunded_at change.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	Save(ctx context.Context, value domain.Payment) error
	ListBySubscription(ctx context.Context, subscriptionID string) ([]domain.Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error)
}
