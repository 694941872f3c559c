package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"studio/internal/adapters/storage"
	"studio/internal/domain/day"
	domain "studio/internal/domain/schedule"
)

const scheduleColumns = `id, service_id, trainer_id, recurrence_type, weekdays, day_of_month, custom_dates,
	start_time, end_time, effective_from, effective_until, max_participants, current_participants, is_active`

// SQLiteStore implements Store using SQLite.
// The recurrence rule is flattened into recurrence_type plus the one column
// its variant uses; the others are stored empty.
type SQLiteStore struct {
	db storage.Querier
}

// NewSQLiteStore creates a new ScheduleStore.
func NewSQLiteStore(db storage.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Schedule by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Schedule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scheduleColumns+" FROM schedule WHERE id = ?", id)
	entity, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, storage.MapNoRows(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Save persists a Schedule to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Schedule) error {
	var weekdays, customDates string
	var dayOfMonth int
	switch rule := entity.Rule.(type) {
	case domain.Weekly:
		weekdays = strings.Join(rule.DayNames(), ",")
	case domain.Monthly:
		dayOfMonth = rule.DayOfMonth
	case domain.Custom:
		customDates = storage.JoinDates(rule.Dates)
	default:
		return domain.ErrMissingRule
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule (`+scheduleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET service_id=excluded.service_id, trainer_id=excluded.trainer_id,
			recurrence_type=excluded.recurrence_type, weekdays=excluded.weekdays, day_of_month=excluded.day_of_month,
			custom_dates=excluded.custom_dates, start_time=excluded.start_time, end_time=excluded.end_time,
			effective_from=excluded.effective_from, effective_until=excluded.effective_until,
			max_participants=excluded.max_participants, current_participants=excluded.current_participants,
			is_active=excluded.is_active`,
		entity.ID, entity.ServiceID, entity.TrainerID, string(entity.RecurrenceType()), weekdays, dayOfMonth, customDates,
		entity.StartTime, entity.EndTime, day.Format(entity.EffectiveFrom), storage.NullString(day.FormatOptional(entity.EffectiveUntil)),
		entity.MaxParticipants, entity.CurrentParticipants, entity.IsActive,
	)
	return err
}

// List retrieves all Schedules.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT "+scheduleColumns+" FROM schedule ORDER BY effective_from, start_time")
}

// ListByServiceID retrieves Schedules for a specific service.
// PRE: serviceID is non-empty
// POST: Returns schedules for the given service
func (s *SQLiteStore) ListByServiceID(ctx context.Context, serviceID string) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT "+scheduleColumns+" FROM schedule WHERE service_id = ? ORDER BY effective_from, start_time", serviceID)
}

func (s *SQLiteStore) querySchedules(ctx context.Context, query string, args ...any) ([]domain.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Schedule
	for rows.Next() {
		entity, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanSchedule(row interface{ Scan(...any) error }) (domain.Schedule, error) {
	var entity domain.Schedule
	var recurrenceType, weekdays, customDates, effectiveFrom string
	var effectiveUntil sql.NullString
	var dayOfMonth int
	err := row.Scan(
		&entity.ID, &entity.ServiceID, &entity.TrainerID, &recurrenceType, &weekdays, &dayOfMonth, &customDates,
		&entity.StartTime, &entity.EndTime, &effectiveFrom, &effectiveUntil,
		&entity.MaxParticipants, &entity.CurrentParticipants, &entity.IsActive,
	)
	if err != nil {
		return domain.Schedule{}, err
	}

	if entity.EffectiveFrom, err = day.Parse(effectiveFrom); err != nil {
		return domain.Schedule{}, fmt.Errorf("schedule %s effective_from: %w", entity.ID, err)
	}
	if effectiveUntil.Valid {
		if entity.EffectiveUntil, err = day.ParseOptional(effectiveUntil.String); err != nil {
			return domain.Schedule{}, fmt.Errorf("schedule %s effective_until: %w", entity.ID, err)
		}
	}

	dates, err := storage.SplitDates(customDates)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("schedule %s custom_dates: %w", entity.ID, err)
	}
	entity.Rule, err = domain.BuildRule(domain.RecurrenceType(recurrenceType), storage.SplitList(weekdays), dayOfMonth, dates)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("schedule %s rule: %w", entity.ID, err)
	}
	return entity, nil
}
