package customer

import (
	"context"
	"strings"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/customer"
)

const customerColumns = "id, name, email, phone, membership_status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new CustomerStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Customer by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customer WHERE id = ?", id)
	var entity domain.Customer
	err := row.Scan(&entity.ID, &entity.Name, &entity.Email, &entity.Phone, &entity.MembershipStatus)
	if err != nil {
		return domain.Customer{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save persists a Customer to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Customer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customer (id, name, email, phone, membership_status) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, phone=excluded.phone, membership_status=excluded.membership_status`,
		entity.ID, entity.Name, entity.Email, entity.Phone, entity.MembershipStatus,
	)
	return err
}

// List retrieves customers matching the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Customer, error) {
	var where []string
	var args []any
	if filter.MembershipStatus != "" {
		where = append(where, "membership_status = ?")
		args = append(args, filter.MembershipStatus)
	}
	query := "SELECT " + customerColumns + " FROM customer"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Customer
	for rows.Next() {
		var entity domain.Customer
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Email, &entity.Phone, &entity.MembershipStatus); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
