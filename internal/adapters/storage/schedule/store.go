package schedule

import (
	"context"

	domain "studio/internal/domain/schedule"
)

// Store persists Schedule state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Schedule, error)
	Save(ctx context.Context, value domain.Schedule) error
	List(ctx context.Context) ([]domain.Schedule, error)
	ListByServiceID(ctx context.Context, serviceID string) ([]domain.Schedule, error)
}
