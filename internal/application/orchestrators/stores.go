package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studio/internal/domain/attendance"
	"studio/internal/domain/classbooking"
	"studio/internal/domain/customer"
	"studio/internal/domain/holiday"
	"studio/internal/domain/payment"
	"studio/internal/domain/schedule"
	"studio/internal/domain/service"
	"studio/internal/domain/subscription"
)

// CustomerStore defines the customer persistence the workflows need.
type CustomerStore interface {
	GetByID(ctx context.Context, id string) (customer.Customer, error)
	Save(ctx context.Context, c customer.Customer) error
}

// ServiceStore defines the service persistence the workflows need.
type ServiceStore interface {
	GetByID(ctx context.Context, id string) (service.Service, error)
	Save(ctx context.Context, s service.Service) error
}

// ScheduleStore defines the schedule persistence the workflows need.
type ScheduleStore interface {
	GetByID(ctx context.Context, id string) (schedule.Schedule, error)
	Save(ctx context.Context, s schedule.Schedule) error
}

// ClosureStore defines the studio closure persistence the workflows need.
type ClosureStore interface {
	GetByID(ctx context.Context, id string) (holiday.Holiday, error)
	Save(ctx context.Context, h holiday.Holiday) error
	Delete(ctx context.Context, id string) error
	ListOverlapping(ctx context.Context, from, until time.Time) ([]holiday.Holiday, error)
}

// BookingStore defines the class booking persistence the workflows need.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (classbooking.ClassBooking, error)
	GetByCustomerAndSchedule(ctx context.Context, customerID, scheduleID string) (classbooking.ClassBooking, error)
	Save(ctx context.Context, b classbooking.ClassBooking) error
	CountActiveBySchedule(ctx context.Context, scheduleID string) (int, error)
	ListActiveBySchedule(ctx context.Context, scheduleID string) ([]classbooking.ClassBooking, error)
}

// SubscriptionStore defines the subscription persistence the workflows need.
type SubscriptionStore interface {
	GetByID(ctx context.Context, id string) (subscription.Subscription, error)
	GetByClassBookingID(ctx context.Context, classBookingID string) (subscription.Subscription, error)
	Save(ctx context.Context, s subscription.Subscription) error
	CountActiveByCustomer(ctx context.Context, customerID string) (int, error)
}

// PaymentStore defines the payment persistence the workflows need.
type PaymentStore interface {
	GetByID(ctx context.Context, id string) (payment.Payment, error)
	Save(ctx context.Context, p payment.Payment) error
	ListBySubscription(ctx context.Context, subscriptionID string) ([]payment.Payment, error)
}

// AttendanceStore defines the attendance persistence the workflows need.
type AttendanceStore interface {
	GetByKey(ctx context.Context, customerID, scheduleID string, classDate time.Time) (attendance.Attendance, error)
	Save(ctx context.Context, a attendance.Attendance) error
	ListBySubscription(ctx context.Context, subscriptionID string) ([]attendance.Attendance, error)
}

// Stores groups the stores bound to one transaction.
type Stores struct {
	Customers     CustomerStore
	Services      ServiceStore
	Schedules     ScheduleStore
	Closures      ClosureStore
	Bookings      BookingStore
	Subscriptions SubscriptionStore
	Payments      PaymentStore
	Attendance    AttendanceStore
}

// TxRunner runs fn against stores that share one transaction.
// POST: fn's writes are committed together when fn returns nil, otherwise none are
type TxRunner interface {
	InTx(ctx context.Context, fn func(Stores) error) error
}

// Clock supplies IDs and time to the workflows; zero values fall back to
// uuid and time.Now.
type Clock struct {
	GenerateID func() string
	Now        func() time.Time
}

func (c Clock) newID() string {
	if c.GenerateID != nil {
		return c.GenerateID()
	}
	return uuid.New().String()
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// syncMembership sets the customer's membership from their active
// subscriptions, re-counted across every subscription they hold.
// POST: membership is active iff at least one subscription is active
func syncMembership(ctx context.Context, st Stores, customerID string) error {
	c, err := st.Customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	n, err := st.Subscriptions.CountActiveByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if !c.SyncMembership(n) {
		return nil
	}
	if err := st.Customers.Save(ctx, c); err != nil {
		return err
	}
	slog.Info("membership_event", "event", "membership_changed", "customer_id", c.ID, "status", c.MembershipStatus, "active_subscriptions", n)
	return nil
}

// recomputeBookingDates refreshes a booking's dates from the schedule as it
// is now, honouring studio closures inside the booking horizon.
func recomputeBookingDates(ctx context.Context, st Stores, b *classbooking.ClassBooking, s schedule.Schedule, horizonDays int) error {
	if horizonDays <= 0 {
		horizonDays = classbooking.DefaultHorizonDays
	}
	closures, err := st.Closures.ListOverlapping(ctx, b.StartsOn, b.Horizon(horizonDays))
	if err != nil {
		return err
	}
	return b.RecomputeDates(s, classbooking.ResolveInputs{Closures: closures, DefaultHorizonDays: horizonDays})
}
