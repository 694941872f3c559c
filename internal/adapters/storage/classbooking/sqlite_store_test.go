package classbooking_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"studio/internal/adapters/storage/classbooking"
	"studio/internal/adapters/storage/storagetest"
	"studio/internal/domain/day"
	domain "studio/internal/domain/classbooking"
)

func newBooking(id, customerID string, dates ...time.Time) domain.ClassBooking {
	end := day.Date(2025, 1, 20)
	now := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	return domain.Restore(domain.ClassBooking{
		ID:         id,
		CustomerID: customerID,
		ScheduleID: "s1",
		ServiceID:  "svc",
		StartsOn:   day.Date(2025, 1, 8),
		EndsOn:     &end,
		Status:     domain.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, dates)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedCustomer(t, db, "c1")
	storagetest.SeedService(t, db, "svc")
	storagetest.SeedSchedule(t, db, "s1", "svc")
	store := classbooking.NewSQLiteStore(db)
	ctx := context.Background()

	want := newBooking("b1", "c1", day.Date(2025, 1, 8), day.Date(2025, 1, 13))
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(day.FormatAll(got.BookingDates()), []string{"2025-01-08", "2025-01-13"}) {
		t.Errorf("BookingDates() = %v", day.FormatAll(got.BookingDates()))
	}
	if got.EndsOn == nil || !got.EndsOn.Equal(*want.EndsOn) || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	byPair, err := store.GetByCustomerAndSchedule(ctx, "c1", "s1")
	if err != nil || byPair.ID != "b1" {
		t.Errorf("GetByCustomerAndSchedule = %v, %v", byPair.ID, err)
	}

	// Open-ended with no dates.
	got.EndsOn = nil
	got = domain.Restore(got, nil)
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	reread, _ := store.GetByID(ctx, "b1")
	if reread.EndsOn != nil || len(reread.BookingDates()) != 0 {
		t.Errorf("update not persisted: ends_on=%v dates=%v", reread.EndsOn, reread.BookingDates())
	}
}

func TestSQLiteStore_DuplicatePairAndNotFound(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedCustomer(t, db, "c1")
	storagetest.SeedService(t, db, "svc")
	storagetest.SeedSchedule(t, db, "s1", "svc")
	store := classbooking.NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Save(ctx, newBooking("b1", "c1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, newBooking("b2", "c1")); !errors.Is(err, domain.ErrDuplicateBooking) {
		t.Errorf("second booking on the same pair = %v, want ErrDuplicateBooking", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID(missing) = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ActiveCounts(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedService(t, db, "svc")
	storagetest.SeedSchedule(t, db, "s1", "svc")
	for _, id := range []string{"c1", "c2", "c3"} {
		storagetest.SeedCustomer(t, db, id)
	}
	store := classbooking.NewSQLiteStore(db)
	ctx := context.Background()

	for i, c := range []string{"c1", "c2", "c3"} {
		b := newBooking("b"+c, c)
		if i == 2 {
			b.Status = domain.StatusCancelled
		}
		if err := store.Save(ctx, b); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	n, err := store.CountActiveBySchedule(ctx, "s1")
	if err != nil || n != 2 {
		t.Errorf("CountActiveBySchedule = %d, %v; want 2", n, err)
	}
	active, err := store.ListActiveBySchedule(ctx, "s1")
	if err != nil || len(active) != 2 {
		t.Errorf("ListActiveBySchedule returned %d, %v", len(active), err)
	}
	mine, err := store.ListByCustomer(ctx, "c3")
	if err != nil || len(mine) != 1 || mine[0].IsActive() {
		t.Errorf("ListByCustomer(c3) = %+v, %v", mine, err)
	}
}
