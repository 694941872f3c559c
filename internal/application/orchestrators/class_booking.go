package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"studio/internal/domain/classbooking"
	"studio/internal/domain/day"
	"studio/internal/domain/schedule"
	"studio/internal/domain/subscription"
)

// CancelledBookingReason is recorded on a subscription cancelled with its booking.
const CancelledBookingReason = "class booking cancelled"

// BookingDeps holds dependencies for the class booking workflows.
type BookingDeps struct {
	Tx          TxRunner
	Clock       Clock
	HorizonDays int // open-ended booking horizon; <= 0 uses classbooking.DefaultHorizonDays
}

// --- Create Class Booking ---

// CreateClassBookingInput carries input for the create class booking orchestrator.
type CreateClassBookingInput struct {
	CustomerID string `validate:"required"`
	ScheduleID string `validate:"required"`
	ServiceID  string // optional; must match the schedule's service when set
	StartsOn   string `validate:"required,datetime=2006-01-02"`
	EndsOn     string `validate:"omitempty,datetime=2006-01-02"`
}

// ExecuteCreateClassBooking enrolls a customer in a schedule and caches the
// dates they will attend.
// PRE: customer and schedule exist; schedule is active and has capacity
// POST: An active booking exists with BookingDates = available dates ∩ [StartsOn, EndsOn]
// INVARIANT: at most one booking per (customer, schedule)
func ExecuteCreateClassBooking(ctx context.Context, input CreateClassBookingInput, deps BookingDeps) (classbooking.ClassBooking, error) {
	if err := validateInput(input); err != nil {
		return classbooking.ClassBooking{}, err
	}
	startsOn, err := day.Parse(input.StartsOn)
	if err != nil {
		return classbooking.ClassBooking{}, err
	}
	endsOn, err := parseOptionalDay(input.EndsOn)
	if err != nil {
		return classbooking.ClassBooking{}, err
	}

	var booking classbooking.ClassBooking
	err = deps.Tx.InTx(ctx, func(st Stores) error {
		if _, err := st.Customers.GetByID(ctx, input.CustomerID); err != nil {
			return err
		}
		s, err := st.Schedules.GetByID(ctx, input.ScheduleID)
		if err != nil {
			return err
		}
		if input.ServiceID != "" && input.ServiceID != s.ServiceID {
			return classbooking.ErrServiceMismatch
		}
		if err := classbooking.ValidatePeriod(startsOn, endsOn); err != nil {
			return err
		}
		if !s.IsActive {
			return classbooking.ErrScheduleInactive
		}

		_, err = st.Bookings.GetByCustomerAndSchedule(ctx, input.CustomerID, input.ScheduleID)
		switch {
		case err == nil:
			return classbooking.ErrDuplicateBooking
		case !errors.Is(err, classbooking.ErrNotFound):
			return err
		}
		active, err := st.Bookings.CountActiveBySchedule(ctx, s.ID)
		if err != nil {
			return err
		}
		if !s.HasCapacity(active) {
			return classbooking.ErrScheduleFull
		}

		now := deps.Clock.now()
		booking = classbooking.ClassBooking{
			ID:         deps.Clock.newID(),
			CustomerID: input.CustomerID,
			ScheduleID: s.ID,
			ServiceID:  s.ServiceID,
			StartsOn:   startsOn,
			EndsOn:     endsOn,
			Status:     classbooking.StatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := booking.Validate(); err != nil {
			return err
		}
		if err := recomputeBookingDates(ctx, st, &booking, s, deps.HorizonDays); err != nil {
			return err
		}
		return st.Bookings.Save(ctx, booking)
	})
	if err != nil {
		return classbooking.ClassBooking{}, err
	}

	slog.Info("booking_event", "event", "booking_created", "booking_id", booking.ID, "customer_id", booking.CustomerID, "schedule_id", booking.ScheduleID, "dates", len(booking.BookingDates()))
	return booking, nil
}

// --- Update Class Booking ---

// UpdateClassBookingInput carries input for the update class booking orchestrator.
// Empty fields are left unchanged.
type UpdateClassBookingInput struct {
	ID          string `validate:"required"`
	StartsOn    string `validate:"omitempty,datetime=2006-01-02"`
	EndsOn      string `validate:"omitempty,excluded_with=ClearEndsOn,datetime=2006-01-02"`
	ClearEndsOn bool   // makes the booking open-ended
	Status      string `validate:"omitempty,oneof=active cancelled"`
}

// ExecuteUpdateClassBooking edits a booking's period or status and re-derives
// its dates from the schedule as it is at update time.
// PRE: booking exists
// POST: BookingDates reflect the current schedule; cancelling cascades like ExecuteCancelClassBooking
func ExecuteUpdateClassBooking(ctx context.Context, input UpdateClassBookingInput, deps BookingDeps) (classbooking.ClassBooking, error) {
	if err := validateInput(input); err != nil {
		return classbooking.ClassBooking{}, err
	}

	var booking classbooking.ClassBooking
	err := deps.Tx.InTx(ctx, func(st Stores) error {
		b, err := st.Bookings.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if input.StartsOn != "" {
			if b.StartsOn, err = day.Parse(input.StartsOn); err != nil {
				return err
			}
		}
		if input.ClearEndsOn {
			b.EndsOn = nil
		} else if input.EndsOn != "" {
			if b.EndsOn, err = parseOptionalDay(input.EndsOn); err != nil {
				return err
			}
		}
		if err := classbooking.ValidatePeriod(b.StartsOn, b.EndsOn); err != nil {
			return err
		}

		s, err := st.Schedules.GetByID(ctx, b.ScheduleID)
		if err != nil {
			return err
		}
		if input.Status == classbooking.StatusActive && !b.IsActive() {
			if err := reactivateBooking(ctx, st, &b, s); err != nil {
				return err
			}
		}
		if err := recomputeBookingDates(ctx, st, &b, s, deps.HorizonDays); err != nil {
			return err
		}
		b.UpdatedAt = deps.Clock.now()

		if input.Status == classbooking.StatusCancelled && b.IsActive() {
			if err := cancelBooking(ctx, st, &b, deps.Clock); err != nil {
				return err
			}
		} else if err := st.Bookings.Save(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return classbooking.ClassBooking{}, err
	}

	slog.Info("booking_event", "event", "booking_updated", "booking_id", booking.ID, "status", booking.Status, "dates", len(booking.BookingDates()))
	return booking, nil
}

// reactivateBooking moves a cancelled booking back to active when the
// schedule is still open and has room.
func reactivateBooking(ctx context.Context, st Stores, b *classbooking.ClassBooking, s schedule.Schedule) error {
	if !s.IsActive {
		return classbooking.ErrScheduleInactive
	}
	active, err := st.Bookings.CountActiveBySchedule(ctx, s.ID)
	if err != nil {
		return err
	}
	if !s.HasCapacity(active) {
		return classbooking.ErrScheduleFull
	}
	b.Status = classbooking.StatusActive
	return nil
}

// --- Cancel Class Booking ---

// CancelClassBookingInput carries input for the cancel class booking orchestrator.
type CancelClassBookingInput struct {
	ID string `validate:"required"`
}

// ExecuteCancelClassBooking cancels a booking and its subscription together.
// PRE: booking exists and is active
// POST: booking cancelled; its subscription cancelled with CancelledBookingReason; membership re-evaluated
func ExecuteCancelClassBooking(ctx context.Context, input CancelClassBookingInput, deps BookingDeps) (classbooking.ClassBooking, error) {
	if err := validateInput(input); err != nil {
		return classbooking.ClassBooking{}, err
	}

	var booking classbooking.ClassBooking
	err := deps.Tx.InTx(ctx, func(st Stores) error {
		b, err := st.Bookings.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		b.UpdatedAt = deps.Clock.now()
		if err := cancelBooking(ctx, st, &b, deps.Clock); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return classbooking.ClassBooking{}, err
	}
	return booking, nil
}

// cancelBooking cancels b, persists it and cascades to its subscription.
func cancelBooking(ctx context.Context, st Stores, b *classbooking.ClassBooking, clock Clock) error {
	if err := b.Cancel(); err != nil {
		return err
	}
	if err := st.Bookings.Save(ctx, *b); err != nil {
		return err
	}
	slog.Info("booking_event", "event", "booking_cancelled", "booking_id", b.ID, "customer_id", b.CustomerID)

	sub, err := st.Subscriptions.GetByClassBookingID(ctx, b.ID)
	if errors.Is(err, subscription.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if sub.IsCancelled() {
		return nil
	}
	if err := sub.Cancel(CancelledBookingReason); err != nil {
		return err
	}
	sub.UpdatedAt = clock.now()
	if err := st.Subscriptions.Save(ctx, sub); err != nil {
		return err
	}
	slog.Info("subscription_event", "event", "subscription_cancelled", "subscription_id", sub.ID, "reason", sub.CancellationReason)
	return syncMembership(ctx, st, b.CustomerID)
}

// --- Refresh Booking Dates ---

// RefreshBookingDatesInput carries input for the refresh orchestrator.
type RefreshBookingDatesInput struct {
	ScheduleID string `validate:"required"`
}

// RefreshBookingDatesResult reports how many bookings were re-derived.
type RefreshBookingDatesResult struct {
	ScheduleID string
	Refreshed  int
}

// ExecuteRefreshBookingDates re-derives the dates of every active booking on a
// schedule, typically after the schedule or the closures were edited.
// PRE: schedule exists
// POST: every active booking's dates match the schedule as it is now
func ExecuteRefreshBookingDates(ctx context.Context, input RefreshBookingDatesInput, deps BookingDeps) (RefreshBookingDatesResult, error) {
	if err := validateInput(input); err != nil {
		return RefreshBookingDatesResult{}, err
	}

	result := RefreshBookingDatesResult{ScheduleID: input.ScheduleID}
	err := deps.Tx.InTx(ctx, func(st Stores) error {
		s, err := st.Schedules.GetByID(ctx, input.ScheduleID)
		if err != nil {
			return err
		}
		bookings, err := st.Bookings.ListActiveBySchedule(ctx, s.ID)
		if err != nil {
			return err
		}
		now := deps.Clock.now()
		for _, b := range bookings {
			if err := recomputeBookingDates(ctx, st, &b, s, deps.HorizonDays); err != nil {
				return err
			}
			b.UpdatedAt = now
			if err := st.Bookings.Save(ctx, b); err != nil {
				return err
			}
		}
		result.Refreshed = len(bookings)
		return nil
	})
	if err != nil {
		return RefreshBookingDatesResult{}, err
	}

	slog.Info("booking_event", "event", "booking_dates_refreshed", "schedule_id", result.ScheduleID, "bookings", result.Refreshed)
	return result, nil
}
