package projections

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"studio/internal/domain/attendance"
	"studio/internal/domain/classbooking"
	"studio/internal/domain/day"
)

// CustomersForAttendanceQuery carries query parameters.
type CustomersForAttendanceQuery struct {
	ScheduleID string
	Date       string // YYYY-MM-DD
}

// CustomerForAttendance is one row of the attendance sheet.
type CustomerForAttendance struct {
	CustomerID       string
	CustomerName     string
	SubscriptionID   string
	ClassBookingID   string
	AttendanceStatus string // attendance.NotMarked when no record exists
	SessionsDone     int
	SessionsLeft     *int
}

// CustomersForAttendanceResult carries the query result.
type CustomersForAttendanceResult struct {
	ScheduleID string
	Date       string
	Customers  []CustomerForAttendance
}

// CustomersForAttendanceDeps holds dependencies for QueryCustomersForAttendance.
type CustomersForAttendanceDeps struct {
	Schedules     ScheduleStore
	Bookings      BookingStore
	Subscriptions SubscriptionStore
	Attendance    AttendanceStore
	Customers     CustomerStore
}

// QueryCustomersForAttendance lists every customer expected in a class: an
// active subscription whose active booking window covers the date. Each row
// carries the mark already recorded for the date, or not_marked.
// PRE: schedule exists; Date is an ISO date
// POST: Returns rows ordered by customer name
func QueryCustomersForAttendance(ctx context.Context, query CustomersForAttendanceQuery, deps CustomersForAttendanceDeps) (CustomersForAttendanceResult, error) {
	date, err := day.Parse(query.Date)
	if err != nil {
		return CustomersForAttendanceResult{}, err
	}
	if _, err := deps.Schedules.GetByID(ctx, query.ScheduleID); err != nil {
		return CustomersForAttendanceResult{}, err
	}

	bookings, err := deps.Bookings.ListActiveBySchedule(ctx, query.ScheduleID)
	if err != nil {
		return CustomersForAttendanceResult{}, err
	}
	bookingByID := lo.KeyBy(bookings, func(b classbooking.ClassBooking) string { return b.ID })

	subs, err := deps.Subscriptions.ListBySchedule(ctx, query.ScheduleID)
	if err != nil {
		return CustomersForAttendanceResult{}, err
	}
	marks, err := deps.Attendance.ListByScheduleAndDate(ctx, query.ScheduleID, date)
	if err != nil {
		return CustomersForAttendanceResult{}, err
	}
	markByCustomer := lo.KeyBy(marks, func(a attendance.Attendance) string { return a.CustomerID })

	result := CustomersForAttendanceResult{ScheduleID: query.ScheduleID, Date: day.Format(date)}
	for _, sub := range subs {
		if !sub.IsActive() {
			continue
		}
		b, ok := bookingByID[sub.ClassBookingID]
		if !ok || !b.Covers(date) {
			continue
		}
		c, err := deps.Customers.GetByID(ctx, sub.CustomerID)
		if err != nil {
			return CustomersForAttendanceResult{}, err
		}
		status := attendance.NotMarked
		if mark, ok := markByCustomer[sub.CustomerID]; ok {
			status = mark.Status
		}
		result.Customers = append(result.Customers, CustomerForAttendance{
			CustomerID:       c.ID,
			CustomerName:     c.Name,
			SubscriptionID:   sub.ID,
			ClassBookingID:   b.ID,
			AttendanceStatus: status,
			SessionsDone:     sub.SessionsCompleted(),
			SessionsLeft:     sub.SessionsRemaining(),
		})
	}
	sort.SliceStable(result.Customers, func(i, j int) bool {
		return result.Customers[i].CustomerName < result.Customers[j].CustomerName
	})
	return result, nil
}
