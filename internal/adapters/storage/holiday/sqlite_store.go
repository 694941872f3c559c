package holiday

import (
	"context"
	"time"

	"studio/internal/adapters/storage"
	"studio/internal/domain/day"
	domain "studio/internal/domain/holiday"
)

const holidayColumns = "id, name, start_date, end_date"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new HolidayStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Holiday by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Holiday, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+holidayColumns+" FROM holiday WHERE id = ?", id)
	entity, err := scanHoliday(row)
	if err != nil {
		return domain.Holiday{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save persists a Holiday to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Holiday) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO holiday (id, name, start_date, end_date) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, start_date=excluded.start_date, end_date=excluded.end_date",
		entity.ID, entity.Name, day.Format(entity.StartDate), day.Format(entity.EndDate),
	)
	return err
}

// Delete removes a Holiday from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM holiday WHERE id = ?", id)
	return err
}

// List retrieves all Holidays ordered by start date.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Holiday, error) {
	return s.queryHolidays(ctx, "SELECT "+holidayColumns+" FROM holiday ORDER BY start_date")
}

// ListOverlapping retrieves closures that touch [from, until].
// PRE: from <= until
// POST: Returns closures ordered by start date
func (s *SQLiteStore) ListOverlapping(ctx context.Context, from, until time.Time) ([]domain.Holiday, error) {
	return s.queryHolidays(ctx,
		"SELECT "+holidayColumns+" FROM holiday WHERE start_date <= ? AND end_date >= ? ORDER BY start_date",
		day.Format(until), day.Format(from))
}

func (s *SQLiteStore) queryHolidays(ctx context.Context, query string, args ...any) ([]domain.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Holiday
	for rows.Next() {
		entity, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanHoliday(row interface{ Scan(...any) error }) (domain.Holiday, error) {
	var entity domain.Holiday
	var startStr, endStr string
	if err := row.Scan(&entity.ID, &entity.Name, &startStr, &endStr); err != nil {
		return domain.Holiday{}, err
	}
	var err error
	if entity.StartDate, err = day.Parse(startStr); err != nil {
		return domain.Holiday{}, err
	}
	if entity.EndDate, err = day.Parse(endStr); err != nil {
		return domain.Holiday{}, err
	}
	return entity, nil
}
