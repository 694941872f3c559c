package subscription

import (
	"context"

	domain "studio/internal/domain/subscription"
)

// Store persists CustomerSubscription state, including its derived ledger.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Subscription, error)
	GetByClassBookingID(ctx context.Context, classBookingID string) (domain.Subscription, error)
	Save(ctx context.Context, value domain.Subscription) error
	CountActiveByCustomer(ctx context.Context, customerID string) (int, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Subscription, error)
}
