package schedule_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"studio/internal/adapters/storage/schedule"
	"studio/internal/adapters/storage/storagetest"
	"studio/internal/domain/day"
	domain "studio/internal/domain/schedule"
)

func TestSQLiteStore_RuleRoundTrip(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedService(t, db, "svc")
	store := schedule.NewSQLiteStore(db)
	ctx := context.Background()
	until := day.Date(2025, 6, 30)

	rules := map[string]domain.Rule{
		"weekly":  domain.WeeklyOn(time.Monday, time.Wednesday, time.Friday),
		"monthly": domain.Monthly{DayOfMonth: 31},
		"custom":  domain.Custom{Dates: []time.Time{day.Date(2025, 2, 14), day.Date(2025, 3, 8)}},
	}
	for id, rule := range rules {
		t.Run(id, func(t *testing.T) {
			want := domain.Schedule{
				ID:              id,
				ServiceID:       "svc",
				Rule:            rule,
				StartTime:       "18:00",
				EndTime:         "19:15",
				EffectiveFrom:   day.Date(2025, 1, 1),
				EffectiveUntil:  &until,
				MaxParticipants: 12,
				IsActive:        true,
			}
			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := store.GetByID(ctx, id)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if got.RecurrenceType() != want.RecurrenceType() {
				t.Errorf("RecurrenceType() = %s, want %s", got.RecurrenceType(), want.RecurrenceType())
			}
			wantDates, _ := want.AvailableDates(domain.ResolveOptions{})
			gotDates, _ := got.AvailableDates(domain.ResolveOptions{})
			if !reflect.DeepEqual(day.FormatAll(gotDates), day.FormatAll(wantDates)) {
				t.Errorf("stored rule expands differently: %v vs %v", day.FormatAll(gotDates), day.FormatAll(wantDates))
			}
		})
	}

	list, err := store.ListByServiceID(ctx, "svc")
	if err != nil || len(list) != len(rules) {
		t.Errorf("ListByServiceID = %d, %v", len(list), err)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := schedule.NewSQLiteStore(storagetest.Open(t))
	if _, err := store.GetByID(context.Background(), "none"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID(none) = %v, want ErrNotFound", err)
	}
}
