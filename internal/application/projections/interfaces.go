package projections

import (
	"context"
	"time"

	"studio/internal/domain/attendance"
	"studio/internal/domain/classbooking"
	"studio/internal/domain/customer"
	"studio/internal/domain/holiday"
	"studio/internal/domain/payment"
	"studio/internal/domain/schedule"
	"studio/internal/domain/subscription"
)

// CustomerStore interface for customer queries.
type CustomerStore interface {
	GetByID(ctx context.Context, id string) (customer.Customer, error)
}

// ScheduleStore interface for schedule queries.
type ScheduleStore interface {
	GetByID(ctx context.Context, id string) (schedule.Schedule, error)
}

// ClosureStore interface for studio closure queries.
type ClosureStore interface {
	ListOverlapping(ctx context.Context, from, until time.Time) ([]holiday.Holiday, error)
}

// BookingStore interface for class booking queries.
type BookingStore interface {
	ListActiveBySchedule(ctx context.Context, scheduleID string) ([]classbooking.ClassBooking, error)
}

// SubscriptionStore interface for subscription queries.
type SubscriptionStore interface {
	GetByID(ctx context.Context, id string) (subscription.Subscription, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]subscription.Subscription, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByScheduleAndDate(ctx context.Context, scheduleID string, classDate time.Time) ([]attendance.Attendance, error)
}

// CustomerBookingStore lists a customer's bookings for the statement.
type CustomerBookingStore interface {
	ListByCustomer(ctx context.Context, customerID string) ([]classbooking.ClassBooking, error)
}

// BookingSubscriptionStore finds the subscription attached to a booking.
type BookingSubscriptionStore interface {
	GetByClassBookingID(ctx context.Context, classBookingID string) (subscription.Subscription, error)
}

// PaymentHistoryStore lists a customer's payments.
type PaymentHistoryStore interface {
	ListByCustomer(ctx context.Context, customerID string) ([]payment.Payment, error)
}

// AttendanceHistoryStore lists the marks recorded against a subscription.
type AttendanceHistoryStore interface {
	ListBySubscription(ctx context.Context, subscriptionID string) ([]attendance.Attendance, error)
}
