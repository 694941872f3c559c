package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"studio/internal/domain/attendance"
	"studio/internal/domain/day"
	"studio/internal/domain/subscription"
)

// AttendanceDeps holds dependencies for the attendance workflows.
type AttendanceDeps struct {
	Tx    TxRunner
	Clock Clock
}

// MarkAttendanceInput carries input for the mark attendance orchestrator.
type MarkAttendanceInput struct {
	CustomerID     string `validate:"required"`
	ScheduleID     string `validate:"required"`
	SubscriptionID string `validate:"required"`
	ClassDate      string `validate:"required,datetime=2006-01-02"`
	Status         string `validate:"required,oneof=present absent late excused"`
	MarkedBy       string `validate:"max=200"`
	Notes          string `validate:"max=1000"`
}

// MarkAttendanceResult carries the stored mark and the counter movement it caused.
type MarkAttendanceResult struct {
	Attendance        attendance.Attendance
	PreviousStatus    string // "" when the date was not marked before
	SessionDelta      int
	SessionsCompleted int
}

// ExecuteMarkAttendance records or corrects one customer's mark for one class
// date and moves the subscription's session counter by the status change.
// PRE: subscription belongs to the customer and is booked on the schedule;
// the booking covers the date; the subscription is active unless the date
// already carries a mark charged to it
// POST: exactly one mark exists for (customer, schedule, date); counters moved by attendance.SessionDelta
// INVARIANT: re-marking with the same status leaves the counters unchanged
func ExecuteMarkAttendance(ctx context.Context, input MarkAttendanceInput, deps AttendanceDeps) (MarkAttendanceResult, error) {
	if err := validateInput(input); err != nil {
		return MarkAttendanceResult{}, err
	}
	classDate, err := day.Parse(input.ClassDate)
	if err != nil {
		return MarkAttendanceResult{}, err
	}

	var result MarkAttendanceResult
	err = deps.Tx.InTx(ctx, func(st Stores) error {
		sub, err := st.Subscriptions.GetByID(ctx, input.SubscriptionID)
		if err != nil {
			return err
		}
		if sub.CustomerID != input.CustomerID {
			return subscription.ErrWrongCustomer
		}
		b, err := st.Bookings.GetByID(ctx, sub.ClassBookingID)
		if err != nil {
			return err
		}
		if b.ScheduleID != input.ScheduleID {
			return attendance.ErrScheduleMismatch
		}
		if !b.Covers(classDate) {
			return attendance.ErrOutsideBooking
		}

		existing, err := st.Attendance.GetByKey(ctx, input.CustomerID, input.ScheduleID, classDate)
		found := err == nil
		if err != nil && !errors.Is(err, attendance.ErrNotFound) {
			return err
		}
		// A paused or cancelled subscription only accepts corrections of
		// marks already charged to it.
		if !sub.IsActive() && !(found && existing.SubscriptionID == sub.ID) {
			return subscription.ErrNotActive
		}

		record := attendance.Attendance{
			ID:             deps.Clock.newID(),
			CustomerID:     input.CustomerID,
			ScheduleID:     input.ScheduleID,
			SubscriptionID: sub.ID,
			ClassDate:      classDate,
			Status:         input.Status,
			MarkedBy:       input.MarkedBy,
			Notes:          input.Notes,
			MarkedAt:       deps.Clock.now(),
		}
		if found {
			record.ID = existing.ID
			result.PreviousStatus = existing.Status
		}
		if err := record.Validate(); err != nil {
			return err
		}
		if err := st.Attendance.Save(ctx, record); err != nil {
			return err
		}

		delta := attendance.SessionDelta(result.PreviousStatus, record.Status)
		if found && existing.SubscriptionID != sub.ID {
			// The mark moved between subscriptions: take the old status off the
			// old one and charge the new status to the new one.
			if err := applySessionDelta(ctx, st, existing.SubscriptionID, attendance.SessionDelta(existing.Status, ""), deps.Clock); err != nil {
				return err
			}
			delta = attendance.SessionDelta("", record.Status)
		}
		if delta != 0 {
			sub.ApplySessionDelta(delta)
			sub.UpdatedAt = deps.Clock.now()
			if err := st.Subscriptions.Save(ctx, sub); err != nil {
				return err
			}
		}

		result.Attendance = record
		result.SessionDelta = delta
		result.SessionsCompleted = sub.SessionsCompleted()
		return nil
	})
	if err != nil {
		return MarkAttendanceResult{}, err
	}

	slog.Info("attendance_event", "event", "attendance_marked", "customer_id", input.CustomerID, "schedule_id", input.ScheduleID,
		"class_date", input.ClassDate, "status", input.Status, "previous_status", result.PreviousStatus, "session_delta", result.SessionDelta)
	return result, nil
}

func applySessionDelta(ctx context.Context, st Stores, subscriptionID string, delta int, clock Clock) error {
	if delta == 0 {
		return nil
	}
	s, err := st.Subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	s.ApplySessionDelta(delta)
	s.UpdatedAt = clock.now()
	return st.Subscriptions.Save(ctx, s)
}

// BulkMarkItemResult is the outcome of one item in a bulk mark.
type BulkMarkItemResult struct {
	Index  int
	Result MarkAttendanceResult
	Err    error
}

// BulkMarkAttendanceResult carries per-item outcomes in input order.
type BulkMarkAttendanceResult struct {
	Items     []BulkMarkItemResult
	Succeeded int
	Failed    int
}

// ExecuteBulkMarkAttendance marks each item in its own transaction, in order.
// PRE: none; each item is validated on its own
// POST: a failed item leaves no partial state and does not stop later items
func ExecuteBulkMarkAttendance(ctx context.Context, items []MarkAttendanceInput, deps AttendanceDeps) BulkMarkAttendanceResult {
	out := BulkMarkAttendanceResult{Items: make([]BulkMarkItemResult, 0, len(items))}
	for i, item := range items {
		res, err := ExecuteMarkAttendance(ctx, item, deps)
		out.Items = append(out.Items, BulkMarkItemResult{Index: i, Result: res, Err: err})
		if err != nil {
			out.Failed++
			slog.Warn("attendance_event", "event", "bulk_item_failed", "index", i, "customer_id", item.CustomerID, "error", err)
			continue
		}
		out.Succeeded++
	}
	return out
}
