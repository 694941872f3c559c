package subscription

import (
	"context"
	"database/sql"

	"studio/internal/adapters/storage"
	"studio/internal/domain/day"
	domain "studio/internal/domain/subscription"
)

const subscriptionColumns = `s.id, s.class_booking_id, s.customer_id, s.total_fees, s.payment_type, s.number_of_installments,
	s.total_sessions, s.amount_paid, s.payment_status, s.sessions_completed, s.status, s.paused_from, s.paused_until,
	s.cancellation_reason, s.created_at, s.updated_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new SubscriptionStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Subscription by its ID.
// PRE: id is non-empty
// POST: Returns the entity with its ledger, or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM customer_subscription s WHERE s.id = ?", id)
	entity, err := scanSubscription(row)
	if err != nil {
		return domain.Subscription{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// GetByClassBookingID retrieves the subscription attached to a class booking.
// PRE: classBookingID is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByClassBookingID(ctx context.Context, classBookingID string) (domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM customer_subscription s WHERE s.class_booking_id = ?", classBookingID)
	entity, err := scanSubscription(row)
	if err != nil {
		return domain.Subscription{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save persists a Subscription and its current ledger.
// PRE: entity has been validated
// POST: Entity is persisted; a second subscription for one booking yields ErrDuplicateSubscription
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Subscription) error {
	ledger := entity.Ledger()
	var totalSessions any
	if entity.TotalSessions != nil {
		totalSessions = *entity.TotalSessions
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customer_subscription (id, class_booking_id, customer_id, total_fees, payment_type, number_of_installments,
			total_sessions, amount_paid, payment_status, sessions_completed, status, paused_from, paused_until,
			cancellation_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET total_fees=excluded.total_fees, payment_type=excluded.payment_type,
			number_of_installments=excluded.number_of_installments, total_sessions=excluded.total_sessions,
			amount_paid=excluded.amount_paid, payment_status=excluded.payment_status,
			sessions_completed=excluded.sessions_completed, status=excluded.status,
			paused_from=excluded.paused_from, paused_until=excluded.paused_until,
			cancellation_reason=excluded.cancellation_reason, updated_at=excluded.updated_at`,
		entity.ID, entity.ClassBookingID, entity.CustomerID, entity.TotalFees.String(), entity.PaymentType, entity.NumberOfInstallments,
		totalSessions, ledger.AmountPaid.String(), ledger.PaymentStatus, ledger.SessionsCompleted, entity.Status,
		storage.NullString(day.FormatOptional(entity.PausedFrom)), storage.NullString(day.FormatOptional(entity.PausedUntil)),
		entity.CancellationReason, storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	return storage.MapUnique(err, domain.ErrDuplicateSubscription)
}

// CountActiveByCustomer counts the customer's active subscriptions.
func (s *SQLiteStore) CountActiveByCustomer(ctx context.Context, customerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM customer_subscription WHERE customer_id = ? AND status = ?",
		customerID, domain.StatusActive).Scan(&n)
	return n, err
}

// ListBySchedule retrieves subscriptions whose class booking is on the schedule.
// PRE: scheduleID is non-empty
// POST: Returns subscriptions in any status, ordered by customer
func (s *SQLiteStore) ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM customer_subscription s
		JOIN class_booking b ON b.id = s.class_booking_id
		WHERE b.schedule_id = ? ORDER BY s.customer_id`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Subscription
	for rows.Next() {
		entity, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanSubscription(row interface{ Scan(...any) error }) (domain.Subscription, error) {
	var sub domain.Subscription
	var ledger domain.Ledger
	var totalSessions sql.NullInt64
	var pausedFrom, pausedUntil sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(
		&sub.ID, &sub.ClassBookingID, &sub.CustomerID, &sub.TotalFees, &sub.PaymentType, &sub.NumberOfInstallments,
		&totalSessions, &ledger.AmountPaid, &ledger.PaymentStatus, &ledger.SessionsCompleted, &sub.Status,
		&pausedFrom, &pausedUntil, &sub.CancellationReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Subscription{}, err
	}
	if totalSessions.Valid {
		n := int(totalSessions.Int64)
		sub.TotalSessions = &n
	}
	if sub.PausedFrom, err = day.ParseOptional(pausedFrom.String); err != nil {
		return domain.Subscription{}, err
	}
	if sub.PausedUntil, err = day.ParseOptional(pausedUntil.String); err != nil {
		return domain.Subscription{}, err
	}
	if sub.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Subscription{}, err
	}
	if sub.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Subscription{}, err
	}
	return domain.Restore(sub, ledger), nil
}
