package holiday

import (
	"context"
	"time"

	domain "studio/internal/domain/holiday"
)

// Store persists studio closures.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Holiday, error)
	Save(ctx context.Context, value domain.Holiday) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Holiday, error)
	ListOverlapping(ctx context.Context, from, until time.Time) ([]domain.Holiday, error)
}
