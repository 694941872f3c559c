package classbooking

import (
	"context"

	domain "studio/internal/domain/classbooking"
)

// Store persists ClassBooking state, including the cached booking dates.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.ClassBooking, error)
	GetByCustomerAndSchedule(ctx context.Context, customerID, scheduleID string) (domain.ClassBooking, error)
	Save(ctx context.Context, value domain.ClassBooking) error
	CountActiveBySchedule(ctx context.Context, scheduleID string) (int, error)
	ListActiveBySchedule(ctx context.Context, scheduleID string) ([]domain.ClassBooking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.ClassBooking, error)
}
