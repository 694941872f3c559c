package classbooking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studio/internal/adapters/storage"
	"studio/internal/domain/day"
	domain "studio/internal/domain/classbooking"
)

const bookingColumns = "id, customer_id, schedule_id, service_id, starts_on, ends_on, booking_dates, status, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new ClassBookingStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a ClassBooking by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ClassBooking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM class_booking WHERE id = ?", id)
	entity, err := scanBooking(row)
	if err != nil {
		return domain.ClassBooking{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// GetByCustomerAndSchedule retrieves the booking for a (customer, schedule) pair.
// PRE: customerID and scheduleID are non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByCustomerAndSchedule(ctx context.Context, customerID, scheduleID string) (domain.ClassBooking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM class_booking WHERE customer_id = ? AND schedule_id = ?", customerID, scheduleID)
	entity, err := scanBooking(row)
	if err != nil {
		return domain.ClassBooking{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save persists a ClassBooking together with its cached booking dates.
// PRE: entity has been validated and its dates recomputed
// POST: Entity is persisted; a second booking for the same (customer, schedule) yields ErrDuplicateBooking
func (s *SQLiteStore) Save(ctx context.Context, entity domain.ClassBooking) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class_booking (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET starts_on=excluded.starts_on, ends_on=excluded.ends_on,
			booking_dates=excluded.booking_dates, status=excluded.status, updated_at=excluded.updated_at`,
		entity.ID, entity.CustomerID, entity.ScheduleID, entity.ServiceID,
		day.Format(entity.StartsOn), storage.NullString(day.FormatOptional(entity.EndsOn)),
		storage.JoinDates(entity.BookingDates()), entity.Status,
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	return storage.MapUnique(err, domain.ErrDuplicateBooking)
}

// CountActiveBySchedule counts active bookings on a schedule.
func (s *SQLiteStore) CountActiveBySchedule(ctx context.Context, scheduleID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM class_booking WHERE schedule_id = ? AND status = ?", scheduleID, domain.StatusActive).Scan(&n)
	return n, err
}

// ListActiveBySchedule retrieves active bookings on a schedule ordered by start.
func (s *SQLiteStore) ListActiveBySchedule(ctx context.Context, scheduleID string) ([]domain.ClassBooking, error) {
	return s.queryBookings(ctx, "SELECT "+bookingColumns+" FROM class_booking WHERE schedule_id = ? AND status = ? ORDER BY starts_on, id", scheduleID, domain.StatusActive)
}

// ListByCustomer retrieves every booking a customer has held.
func (s *SQLiteStore) ListByCustomer(ctx context.Context, customerID string) ([]domain.ClassBooking, error) {
	return s.queryBookings(ctx, "SELECT "+bookingColumns+" FROM class_booking WHERE customer_id = ? ORDER BY starts_on, id", customerID)
}

func (s *SQLiteStore) queryBookings(ctx context.Context, query string, args ...any) ([]domain.ClassBooking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ClassBooking
	for rows.Next() {
		entity, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanBooking(row interface{ Scan(...any) error }) (domain.ClassBooking, error) {
	var b domain.ClassBooking
	var startsOn, bookingDates, createdAt, updatedAt string
	var endsOn sql.NullString
	if err := row.Scan(&b.ID, &b.CustomerID, &b.ScheduleID, &b.ServiceID, &startsOn, &endsOn, &bookingDates, &b.Status, &createdAt, &updatedAt); err != nil {
		return domain.ClassBooking{}, err
	}

	var err error
	if b.StartsOn, err = day.Parse(startsOn); err != nil {
		return domain.ClassBooking{}, fmt.Errorf("class booking %s starts_on: %w", b.ID, err)
	}
	if endsOn.Valid {
		if b.EndsOn, err = day.ParseOptional(endsOn.String); err != nil {
			return domain.ClassBooking{}, fmt.Errorf("class booking %s ends_on: %w", b.ID, err)
		}
	}
	if b.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.ClassBooking{}, err
	}
	if b.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.ClassBooking{}, err
	}
	var dates []time.Time
	if dates, err = storage.SplitDates(bookingDates); err != nil {
		return domain.ClassBooking{}, fmt.Errorf("class booking %s booking_dates: %w", b.ID, err)
	}
	return domain.Restore(b, dates), nil
}
