package attendance

import (
	"context"
	"fmt"
	"time"

	"studio/internal/adapters/storage"
	"studio/internal/domain/day"
	domain "studio/internal/domain/attendance"
)

const attendanceColumns = "id, customer_id, schedule_id, subscription_id, class_date, status, marked_by, notes, marked_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new AttendanceStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByKey retrieves the mark for one customer on one schedule date.
// PRE: all key parts are set
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByKey(ctx context.Context, customerID, scheduleID string, classDate time.Time) (domain.Attendance, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE customer_id = ? AND schedule_id = ? AND class_date = ?",
		customerID, scheduleID, day.Format(classDate))
	entity, err := scanAttendance(row)
	if err != nil {
		return domain.Attendance{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save upserts a mark on its (customer, schedule, class date) key. The row ID
// of an existing mark is kept.
// PRE: entity has been validated
// POST: Exactly one row exists for the key
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Attendance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (`+attendanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(customer_id, schedule_id, class_date) DO UPDATE SET subscription_id=excluded.subscription_id,
			status=excluded.status, marked_by=excluded.marked_by, notes=excluded.notes, marked_at=excluded.marked_at`,
		entity.ID, entity.CustomerID, entity.ScheduleID, entity.SubscriptionID, day.Format(entity.ClassDate),
		entity.Status, entity.MarkedBy, entity.Notes, storage.FormatTime(entity.MarkedAt),
	)
	return err
}

// ListByScheduleAndDate retrieves every mark for one class occurrence.
func (s *SQLiteStore) ListByScheduleAndDate(ctx context.Context, scheduleID string, classDate time.Time) ([]domain.Attendance, error) {
	return s.queryAttendance(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE schedule_id = ? AND class_date = ? ORDER BY customer_id",
		scheduleID, day.Format(classDate))
}

// ListBySubscription retrieves the marks charged to a subscription, oldest first.
func (s *SQLiteStore) ListBySubscription(ctx context.Context, subscriptionID string) ([]domain.Attendance, error) {
	return s.queryAttendance(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE subscription_id = ? ORDER BY class_date",
		subscriptionID)
}

func (s *SQLiteStore) queryAttendance(ctx context.Context, query string, args ...any) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Attendance
	for rows.Next() {
		entity, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanAttendance(row interface{ Scan(...any) error }) (domain.Attendance, error) {
	var a domain.Attendance
	var classDate, markedAt string
	err := row.Scan(&a.ID, &a.CustomerID, &a.ScheduleID, &a.SubscriptionID, &classDate, &a.Status, &a.MarkedBy, &a.Notes, &markedAt)
	if err != nil {
		return domain.Attendance{}, err
	}
	if a.ClassDate, err = day.Parse(classDate); err != nil {
		return domain.Attendance{}, fmt.Errorf("attendance %s class_date: %w", a.ID, err)
	}
	if a.MarkedAt, err = storage.ParseTime(markedAt); err != nil {
		return domain.Attendance{}, err
	}
	return a, nil
}
