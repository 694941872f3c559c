package service

import (
	"context"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/service"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new ServiceStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Service by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Service, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, description, level, is_active FROM service WHERE id = ?", id)
	var entity domain.Service
	if err := row.Scan(&entity.ID, &entity.Name, &entity.Description, &entity.Level, &entity.IsActive); err != nil {
		return domain.Service{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save persists a Service to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Service) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO service (id, name, description, level, is_active) VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description, level=excluded.level, is_active=excluded.is_active",
		entity.ID, entity.Name, entity.Description, entity.Level, entity.IsActive,
	)
	return err
}

// List retrieves all Services ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description, level, is_active FROM service ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Service
	for rows.Next() {
		var entity domain.Service
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Description, &entity.Level, &entity.IsActive); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
