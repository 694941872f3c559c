package attendance

import (
	"context"
	"time"

	domain "studio/internal/domain/attendance"
)

// Store persists Attendance marks keyed on (customer, schedule, class date).
type Store interface {
	GetByKey(ctx context.Context, customerID, scheduleID string, classDate time.Time) (domain.Attendance, error)
	Save(ctx context.Context, value domain.Attendance) error
	ListByScheduleAndDate(ctx context.Context, scheduleID string, classDate time.Time) ([]domain.Attendance, error)
	ListBySubscription(ctx context.Context, subscriptionID string) ([]domain.Attendance, error)
}
