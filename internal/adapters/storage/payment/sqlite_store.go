package payment

import (
	"context"
	"database/sql"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/payment"
)

const paymentColumns = "id, subscription_id, customer_id, amount, method, status, transaction_id, paid_at, notes, refunded_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new PaymentStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE id = ?", id)
	entity, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save appends a Payment, or records a status change on an existing one.
// PRE: entity has been validated
// POST: Entity is persisted; a reused transaction ID yields ErrDuplicateTransaction
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status=excluded.status, refunded_at=excluded.refunded_at, notes=excluded.notes`,
		entity.ID, storage.NullString(entity.SubscriptionID), entity.CustomerID, entity.Amount.String(), entity.Method,
		entity.Status, storage.NullString(entity.TransactionID), storage.FormatTime(entity.PaidAt), entity.Notes,
		storage.FormatTime(entity.RefundedAt),
	)
	return storage.MapUnique(err, domain.ErrDuplicateTransaction)
}

// ListBySubscription retrieves the full payment history of a subscription.
// PRE: subscriptionID is non-empty
// POST: Returns every payment in any status, oldest first
func (s *SQLiteStore) ListBySubscription(ctx context.Context, subscriptionID string) ([]domain.Payment, error) {
	return s.queryPayments(ctx, "SELECT "+paymentColumns+" FROM payment WHERE subscription_id = ? ORDER BY paid_at, id", subscriptionID)
}

// ListByCustomer retrieves every payment made by a customer, including ad hoc ones.
func (s *SQLiteStore) ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error) {
	return s.queryPayments(ctx, "SELECT "+paymentColumns+" FROM payment WHERE customer_id = ? ORDER BY paid_at, id", customerID)
}

func (s *SQLiteStore) queryPayments(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Payment
	for rows.Next() {
		entity, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanPayment(row interface{ Scan(...any) error }) (domain.Payment, error) {
	var p domain.Payment
	var subscriptionID, transactionID, refundedAt sql.NullString
	var paidAt string
	err := row.Scan(&p.ID, &subscriptionID, &p.CustomerID, &p.Amount, &p.Method, &p.Status, &transactionID, &paidAt, &p.Notes, &refundedAt)
	if err != nil {
		return domain.Payment{}, err
	}
	p.SubscriptionID = subscriptionID.String
	p.TransactionID = transactionID.String
	if p.PaidAt, err = storage.ParseTime(paidAt); err != nil {
		return domain.Payment{}, err
	}
	if p.RefundedAt, err = storage.ParseTime(refundedAt.String); err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}
