package report

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SQLXStore implements Store with sqlx struct mapping.
type SQLXStore struct {
	db *sqlx.DB
}

// NewSQLXStore wraps an open SQLite handle.
func NewSQLXStore(db *sql.DB) *SQLXStore {
	return &SQLXStore{db: sqlx.NewDb(db, "sqlite")}
}

// Counts returns headline counts in a single round trip.
func (s *SQLXStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM customer) AS customers_total,
			(SELECT COUNT(*) FROM customer WHERE membership_status = 'active') AS customers_active,
			(SELECT COUNT(*) FROM class_booking WHERE status = 'active') AS active_bookings,
			(SELECT COUNT(*) FROM customer_subscription WHERE status = 'active') AS active_subscriptions,
			(SELECT COUNT(*) FROM attendance WHERE status = 'present') AS present_marks`)
	return c, err
}

// PaymentTotals lists completed and refunded payment amounts. Amounts are
// summed by the caller in decimal, never in SQL floating point.
func (s *SQLXStore) PaymentTotals(ctx context.Context) ([]PaymentRow, error) {
	var rows []PaymentRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT status, amount FROM payment WHERE status IN ('completed', 'refunded')`)
	return rows, err
}

// OpenBalances lists the fee position of every subscription that is not cancelled.
func (s *SQLXStore) OpenBalances(ctx context.Context) ([]BalanceRow, error) {
	var rows []BalanceRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, payment_status, total_fees, amount_paid FROM customer_subscription WHERE status != 'cancelled' ORDER BY id`)
	return rows, err
}

// ScheduleLoad lists active schedules with their active booking counts.
func (s *SQLXStore) ScheduleLoad(ctx context.Context) ([]ScheduleLoad, error) {
	var rows []ScheduleLoad
	err := s.db.SelectContext(ctx, &rows, `
		SELECT sc.id AS schedule_id, sv.name AS service_name, sc.max_participants,
			COUNT(b.id) AS active_bookings
		FROM schedule sc
		JOIN service sv ON sv.id = sc.service_id
		LEFT JOIN class_booking b ON b.schedule_id = sc.id AND b.status = 'active'
		WHERE sc.is_active = 1
		GROUP BY sc.id, sv.name, sc.max_participants
		ORDER BY active_bookings DESC, sc.id`)
	return rows, err
}
