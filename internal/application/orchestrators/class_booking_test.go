package orchestrators

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"studio/internal/domain/classbooking"
	"studio/internal/domain/customer"
	"studio/internal/domain/day"
	"studio/internal/domain/errs"
	"studio/internal/domain/holiday"
	"studio/internal/domain/schedule"
)

func bookingDeps(w *mockWorld) BookingDeps {
	return BookingDeps{Tx: w, Clock: Clock{GenerateID: seqIDs(), Now: fixedNow}}
}

func mustBook(t *testing.T, w *mockWorld, customerID, startsOn, endsOn string) classbooking.ClassBooking {
	t.Helper()
	b, err := ExecuteCreateClassBooking(context.Background(), CreateClassBookingInput{
		CustomerID: customerID, ScheduleID: "s1", StartsOn: startsOn, EndsOn: endsOn,
	}, BookingDeps{Tx: w, Clock: Clock{GenerateID: func() string { return "cb-" + customerID }, Now: fixedNow}})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

// TestExecuteCreateClassBooking_Valid books 2025-01-08..2025-01-20 on a Mon/Wed schedule.
func TestExecuteCreateClassBooking_Valid(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)

	b, err := ExecuteCreateClassBooking(context.Background(), CreateClassBookingInput{
		CustomerID: "c1",
		ScheduleID: "s1",
		ServiceID:  "svc",
		StartsOn:   "2025-01-08",
		EndsOn:     "2025-01-20",
	}, bookingDeps(w))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2025-01-08", "2025-01-13", "2025-01-15", "2025-01-20"}
	if got := day.FormatAll(b.BookingDates()); !reflect.DeepEqual(got, want) {
		t.Errorf("BookingDates() = %v, want %v", got, want)
	}
	if b.ID != "id-1" || b.ServiceID != "svc" || !b.IsActive() || !b.CreatedAt.Equal(fixedTime) {
		t.Errorf("unexpected booking: %+v", b)
	}
	if _, ok := w.bookings["id-1"]; !ok {
		t.Error("expected booking to be persisted")
	}
}

func TestExecuteCreateClassBooking_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(w *mockWorld)
		input   CreateClassBookingInput
		wantErr error
		kind    func(error) bool
	}{
		{"unknown customer", nil,
			CreateClassBookingInput{CustomerID: "nobody", ScheduleID: "s1", StartsOn: "2025-01-08"},
			customer.ErrNotFound, errs.IsNotFound},
		{"unknown schedule", nil,
			CreateClassBookingInput{CustomerID: "c1", ScheduleID: "nope", StartsOn: "2025-01-08"},
			schedule.ErrNotFound, errs.IsNotFound},
		{"service mismatch", nil,
			CreateClassBookingInput{CustomerID: "c1", ScheduleID: "s1", ServiceID: "other", StartsOn: "2025-01-08"},
			classbooking.ErrServiceMismatch, errs.IsValidation},
		{"ends before starts", nil,
			CreateClassBookingInput{CustomerID: "c1", ScheduleID: "s1", StartsOn: "2025-01-20", EndsOn: "2025-01-08"},
			classbooking.ErrInvalidPeriod, errs.IsValidation},
		{"inactive schedule", func(w *mockWorld) {
			s := w.schedules["s1"]
			s.IsActive = false
			w.schedules["s1"] = s
		}, CreateClassBookingInput{CustomerID: "c1", ScheduleID: "s1", StartsOn: "2025-01-08"},
			classbooking.ErrScheduleInactive, errs.IsValidation},
		{"already booked", func(w *mockWorld) {
			w.bookings["old"] = classbooking.ClassBooking{ID: "old", CustomerID: "c1", ScheduleID: "s1", Status: classbooking.StatusCancelled}
		}, CreateClassBookingInput{CustomerID: "c1", ScheduleID: "s1", StartsOn: "2025-01-08"},
			classbooking.ErrDuplicateBooking, errs.IsConflict},
		{"schedule full", func(w *mockWorld) {
			s := w.schedules["s1"]
			s.MaxParticipants = 1
			w.schedules["s1"] = s
			w.bookings["other"] = classbooking.ClassBooking{ID: "other", CustomerID: "c2", ScheduleID: "s1", Status: classbooking.StatusActive}
		}, CreateClassBookingInput{CustomerID: "c1", ScheduleID: "s1", StartsOn: "2025-01-08"},
			classbooking.ErrScheduleFull, errs.IsConflict},
		{"malformed date", nil,
			CreateClassBookingInput{CustomerID: "c1", ScheduleID: "s1", StartsOn: "08/01/2025"},
			nil, errs.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newMockWorld()
			seedStudio(w)
			if tt.setup != nil {
				tt.setup(w)
			}
			before := len(w.bookings)
			_, err := ExecuteCreateClassBooking(context.Background(), tt.input, bookingDeps(w))
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if !tt.kind(err) {
				t.Errorf("error %v has the wrong kind", err)
			}
			if len(w.bookings) != before {
				t.Error("rejected booking was persisted")
			}
		})
	}
}

// TestExecuteCreateClassBooking_Capacity counts only active bookings.
func TestExecuteCreateClassBooking_Capacity(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)
	s := w.schedules["s1"]
	s.MaxParticipants = 1
	w.schedules["s1"] = s
	w.bookings["gone"] = classbooking.ClassBooking{ID: "gone", CustomerID: "c2", ScheduleID: "s1", Status: classbooking.StatusCancelled}

	if _, err := ExecuteCreateClassBooking(context.Background(), CreateClassBookingInput{
		CustomerID: "c1", ScheduleID: "s1", StartsOn: "2025-01-08",
	}, bookingDeps(w)); err != nil {
		t.Fatalf("cancelled booking should not use capacity: %v", err)
	}
}

func TestExecuteCreateClassBooking_OpenEndedHorizonAndClosures(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)
	w.closures["h1"] = holiday.Holiday{ID: "h1", Name: "Pongal", StartDate: day.Date(2025, 1, 13), EndDate: day.Date(2025, 1, 14)}

	deps := bookingDeps(w)
	deps.HorizonDays = 14
	b, err := ExecuteCreateClassBooking(context.Background(), CreateClassBookingInput{
		CustomerID: "c1", ScheduleID: "s1", StartsOn: "2025-01-08",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2025-01-08", "2025-01-15", "2025-01-20", "2025-01-22"}
	if got := day.FormatAll(b.BookingDates()); !reflect.DeepEqual(got, want) {
		t.Errorf("BookingDates() = %v, want %v", got, want)
	}
	if b.EndsOn != nil {
		t.Error("open-ended booking gained an end date")
	}
}

// TestExecuteUpdateClassBooking_PicksUpScheduleChange re-derives dates from the schedule as it is now.
func TestExecuteUpdateClassBooking_PicksUpScheduleChange(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)
	b := mustBook(t, w, "c1", "2025-01-08", "2025-01-20")

	s := w.schedules["s1"]
	s.Rule = schedule.WeeklyOn(time.Friday)
	w.schedules["s1"] = s

	if got := day.FormatAll(addr(w.bookings[b.ID]).BookingDates()); len(got) != 4 {
		t.Fatalf("schedule edit should not touch stored dates, got %v", got)
	}
	updated, err := ExecuteUpdateClassBooking(context.Background(), UpdateClassBookingInput{ID: b.ID, EndsOn: "2025-01-24"}, bookingDeps(w))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2025-01-10", "2025-01-17", "2025-01-24"}
	if got := day.FormatAll(updated.BookingDates()); !reflect.DeepEqual(got, want) {
		t.Errorf("BookingDates() = %v, want %v", got, want)
	}
}

func TestExecuteUpdateClassBooking_Period(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)
	b := mustBook(t, w, "c1", "2025-01-08", "2025-01-20")
	deps := bookingDeps(w)
	ctx := context.Background()

	if _, err := ExecuteUpdateClassBooking(ctx, UpdateClassBookingInput{ID: b.ID, StartsOn: "2025-01-25"}, deps); !errors.Is(err, classbooking.ErrInvalidPeriod) {
		t.Errorf("start after end: got %v, want ErrInvalidPeriod", err)
	}
	if _, err := ExecuteUpdateClassBooking(ctx, UpdateClassBookingInput{ID: b.ID, EndsOn: "2025-01-22", ClearEndsOn: true}, deps); !errs.IsValidation(err) {
		t.Errorf("EndsOn with ClearEndsOn: got %v, want validation", err)
	}
	if _, err := ExecuteUpdateClassBooking(ctx, UpdateClassBookingInput{ID: "missing"}, deps); !errors.Is(err, classbooking.ErrNotFound) {
		t.Errorf("missing booking: got %v", err)
	}

	open, err := ExecuteUpdateClassBooking(ctx, UpdateClassBookingInput{ID: b.ID, ClearEndsOn: true}, deps)
	if err != nil {
		t.Fatalf("clear ends on: %v", err)
	}
	want := []string{"2025-01-08", "2025-01-13", "2025-01-15", "2025-01-20", "2025-01-22", "2025-01-27", "2025-01-29"}
	if open.EndsOn != nil || !reflect.DeepEqual(day.FormatAll(open.BookingDates()), want) {
		t.Errorf("open-ended update: ends_on=%v dates=%v", open.EndsOn, day.FormatAll(open.BookingDates()))
	}
}

func TestExecuteCancelClassBooking_CascadesToSubscription(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)
	b := mustBook(t, w, "c1", "2025-01-08", "2025-01-20")
	mustSubscribe(t, w, b.ID, "6000")
	if !addr(w.customers["c1"]).IsActive() {
		t.Fatal("membership should be active after subscribing")
	}

	cancelled, err := ExecuteCancelClassBooking(context.Background(), CancelClassBookingInput{ID: b.ID}, bookingDeps(w))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.IsActive() || addr(w.bookings[b.ID]).IsActive() {
		t.Error("booking still active")
	}
	sub := w.subscriptions["sub-"+b.ID]
	if !sub.IsCancelled() || sub.CancellationReason != CancelledBookingReason {
		t.Errorf("subscription = %s (%q), want cancelled with booking reason", sub.Status, sub.CancellationReason)
	}
	if addr(w.customers["c1"]).IsActive() {
		t.Error("membership should be inactive with no active subscriptions")
	}

	if _, err := ExecuteCancelClassBooking(context.Background(), CancelClassBookingInput{ID: b.ID}, bookingDeps(w)); !errors.Is(err, classbooking.ErrAlreadyCancelled) {
		t.Errorf("second cancel: got %v", err)
	}
}

func TestExecuteUpdateClassBooking_StatusCancelAndReactivate(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)
	b := mustBook(t, w, "c1", "2025-01-08", "2025-01-20")
	mustSubscribe(t, w, b.ID, "6000")
	deps := bookingDeps(w)
	ctx := context.Background()

	if _, err := ExecuteUpdateClassBooking(ctx, UpdateClassBookingInput{ID: b.ID, Status: classbooking.StatusCancelled}, deps); err != nil {
		t.Fatalf("cancel via update: %v", err)
	}
	if !addr(w.subscriptions["sub-"+b.ID]).IsCancelled() {
		t.Error("cancel via update should cascade to the subscription")
	}

	s := w.schedules["s1"]
	s.MaxParticipants = 1
	w.schedules["s1"] = s
	mustBook(t, w, "c2", "2025-01-08", "")
	if _, err := ExecuteUpdateClassBooking(ctx, UpdateClassBookingInput{ID: b.ID, Status: classbooking.StatusActive}, deps); !errors.Is(err, classbooking.ErrScheduleFull) {
		t.Errorf("reactivate into full schedule: got %v", err)
	}
}

func TestExecuteRefreshBookingDates(t *testing.T) {
	w := newMockWorld()
	seedStudio(w)
	b1 := mustBook(t, w, "c1", "2025-01-08", "2025-01-20")
	b2 := mustBook(t, w, "c2", "2025-01-01", "2025-01-10")

	w.closures["h1"] = holiday.Holiday{ID: "h1", Name: "Pongal", StartDate: day.Date(2025, 1, 8), EndDate: day.Date(2025, 1, 8)}
	res, err := ExecuteRefreshBookingDates(context.Background(), RefreshBookingDatesInput{ScheduleID: "s1"}, bookingDeps(w))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Refreshed != 2 {
		t.Errorf("Refreshed = %d, want 2", res.Refreshed)
	}
	if got := day.FormatAll(addr(w.bookings[b1.ID]).BookingDates()); !reflect.DeepEqual(got, []string{"2025-01-13", "2025-01-15", "2025-01-20"}) {
		t.Errorf("b1 dates = %v", got)
	}
	if got := day.FormatAll(addr(w.bookings[b2.ID]).BookingDates()); !reflect.DeepEqual(got, []string{"2025-01-01", "2025-01-06"}) {
		t.Errorf("b2 dates = %v", got)
	}

	if _, err := ExecuteRefreshBookingDates(context.Background(), RefreshBookingDatesInput{ScheduleID: "none"}, bookingDeps(w)); !errs.IsNotFound(err) {
		t.Errorf("unknown schedule: got %v", err)
	}
}

