package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studio/internal/adapters/storage/attendance"
	"studio/internal/adapters/storage/storagetest"
	domain "studio/internal/domain/attendance"
	"studio/internal/domain/day"
)

func mark(id, status string) domain.Attendance {
	return domain.Attendance{
		ID:             id,
		CustomerID:     "c1",
		ScheduleID:     "s1",
		SubscriptionID: "sub1",
		ClassDate:      day.Date(2025, 1, 8),
		Status:         status,
		MarkedBy:       "trainer",
		MarkedAt:       time.Date(2025, 1, 8, 8, 5, 0, 0, time.UTC),
	}
}

func TestSQLiteStore_UpsertOnKey(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedGraph(t, db)
	store := attendance.NewSQLiteStore(db)
	ctx := context.Background()

	if _, err := store.GetByKey(ctx, "c1", "s1", day.Date(2025, 1, 8)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByKey before marking = %v, want ErrNotFound", err)
	}
	if err := store.Save(ctx, mark("a1", domain.StatusPresent)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	remark := mark("a2", domain.StatusAbsent)
	remark.Notes = "called in sick"
	if err := store.Save(ctx, remark); err != nil {
		t.Fatalf("Save re-mark: %v", err)
	}

	got, err := store.GetByKey(ctx, "c1", "s1", day.Date(2025, 1, 8))
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if got.ID != "a1" {
		t.Errorf("re-mark replaced row id: got %s, want a1", got.ID)
	}
	if got.Status != domain.StatusAbsent || got.Notes != "called in sick" {
		t.Errorf("re-mark not applied: %+v", got)
	}

	all, err := store.ListByScheduleAndDate(ctx, "s1", day.Date(2025, 1, 8))
	if err != nil || len(all) != 1 {
		t.Errorf("ListByScheduleAndDate = %d rows, %v; want 1", len(all), err)
	}
}

func TestSQLiteStore_ListBySubscription(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedGraph(t, db)
	store := attendance.NewSQLiteStore(db)
	ctx := context.Background()

	second := mark("a2", domain.StatusPresent)
	second.ClassDate = day.Date(2025, 1, 13)
	for _, a := range []domain.Attendance{second, mark("a1", domain.StatusPresent)} {
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	got, err := store.ListBySubscription(ctx, "sub1")
	if err != nil || len(got) != 2 {
		t.Fatalf("ListBySubscription = %d, %v", len(got), err)
	}
	if day.Format(got[0].ClassDate) != "2025-01-08" {
		t.Errorf("not ordered by date: first is %s", day.Format(got[0].ClassDate))
	}
}
