package orchestrators

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"studio/internal/domain/attendance"
	"studio/internal/domain/classbooking"
	"studio/internal/domain/customer"
	"studio/internal/domain/day"
	"studio/internal/domain/holiday"
	"studio/internal/domain/payment"
	"studio/internal/domain/schedule"
	"studio/internal/domain/service"
	"studio/internal/domain/subscription"
)

var fixedTime = time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// addr returns a pointer to a copy of v, so pointer-receiver getters can be
// called on non-addressable values such as map elements.
func addr[T any](v T) *T { return &v }

// seqIDs returns a generator yielding id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mockWorld holds every in-memory table; mockTx snapshots it per transaction.
type mockWorld struct {
	customers     map[string]customer.Customer
	services      map[string]service.Service
	schedules     map[string]schedule.Schedule
	closures      map[string]holiday.Holiday
	bookings      map[string]classbooking.ClassBooking
	subscriptions map[string]subscription.Subscription
	payments      map[string]payment.Payment
	attendance    map[string]attendance.Attendance

	txCount int
}

func newMockWorld() *mockWorld {
	return &mockWorld{
		customers:     map[string]customer.Customer{},
		services:      map[string]service.Service{},
		schedules:     map[string]schedule.Schedule{},
		closures:      map[string]holiday.Holiday{},
		bookings:      map[string]classbooking.ClassBooking{},
		subscriptions: map[string]subscription.Subscription{},
		payments:      map[string]payment.Payment{},
		attendance:    map[string]attendance.Attendance{},
	}
}

// InTx implements TxRunner; the world is restored when fn fails.
func (w *mockWorld) InTx(_ context.Context, fn func(Stores) error) error {
	w.txCount++
	saved := *w
	saved.customers = maps.Clone(w.customers)
	saved.services = maps.Clone(w.services)
	saved.schedules = maps.Clone(w.schedules)
	saved.closures = maps.Clone(w.closures)
	saved.bookings = maps.Clone(w.bookings)
	saved.subscriptions = maps.Clone(w.subscriptions)
	saved.payments = maps.Clone(w.payments)
	saved.attendance = maps.Clone(w.attendance)

	if err := fn(w.stores()); err != nil {
		saved.txCount = w.txCount
		*w = saved
		return err
	}
	return nil
}

func (w *mockWorld) stores() Stores {
	return Stores{
		Customers:     mockCustomers{w},
		Services:      mockServices{w},
		Schedules:     mockSchedules{w},
		Closures:      mockClosures{w},
		Bookings:      mockBookings{w},
		Subscriptions: mockSubscriptions{w},
		Payments:      mockPayments{w},
		Attendance:    mockAttendance{w},
	}
}

type mockCustomers struct{ w *mockWorld }

func (m mockCustomers) GetByID(_ context.Context, id string) (customer.Customer, error) {
	c, ok := m.w.customers[id]
	if !ok {
		return customer.Customer{}, customer.ErrNotFound
	}
	return c, nil
}

func (m mockCustomers) Save(_ context.Context, c customer.Customer) error {
	m.w.customers[c.ID] = c
	return nil
}

type mockServices struct{ w *mockWorld }

func (m mockServices) GetByID(_ context.Context, id string) (service.Service, error) {
	s, ok := m.w.services[id]
	if !ok {
		return service.Service{}, service.ErrNotFound
	}
	return s, nil
}

func (m mockServices) Save(_ context.Context, s service.Service) error {
	m.w.services[s.ID] = s
	return nil
}

type mockSchedules struct{ w *mockWorld }

func (m mockSchedules) GetByID(_ context.Context, id string) (schedule.Schedule, error) {
	s, ok := m.w.schedules[id]
	if !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return s, nil
}

func (m mockSchedules) Save(_ context.Context, s schedule.Schedule) error {
	m.w.schedules[s.ID] = s
	return nil
}

type mockClosures struct{ w *mockWorld }

func (m mockClosures) GetByID(_ context.Context, id string) (holiday.Holiday, error) {
	h, ok := m.w.closures[id]
	if !ok {
		return holiday.Holiday{}, holiday.ErrNotFound
	}
	return h, nil
}

func (m mockClosures) Save(_ context.Context, h holiday.Holiday) error {
	m.w.closures[h.ID] = h
	return nil
}

func (m mockClosures) Delete(_ context.Context, id string) error {
	delete(m.w.closures, id)
	return nil
}

func (m mockClosures) ListOverlapping(_ context.Context, from, until time.Time) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range m.w.closures {
		if !h.StartDate.After(until) && !h.EndDate.Before(from) {
			out = append(out, h)
		}
	}
	return out, nil
}

type mockBookings struct{ w *mockWorld }

func (m mockBookings) GetByID(_ context.Context, id string) (classbooking.ClassBooking, error) {
	b, ok := m.w.bookings[id]
	if !ok {
		return classbooking.ClassBooking{}, classbooking.ErrNotFound
	}
	return b, nil
}

func (m mockBookings) GetByCustomerAndSchedule(_ context.Context, customerID, scheduleID string) (classbooking.ClassBooking, error) {
	for _, b := range m.w.bookings {
		if b.CustomerID == customerID && b.ScheduleID == scheduleID {
			return b, nil
		}
	}
	return classbooking.ClassBooking{}, classbooking.ErrNotFound
}

func (m mockBookings) Save(_ context.Context, b classbooking.ClassBooking) error {
	m.w.bookings[b.ID] = b
	return nil
}

func (m mockBookings) CountActiveBySchedule(ctx context.Context, scheduleID string) (int, error) {
	active, _ := m.ListActiveBySchedule(ctx, scheduleID)
	return len(active), nil
}

func (m mockBookings) ListActiveBySchedule(_ context.Context, scheduleID string) ([]classbooking.ClassBooking, error) {
	var out []classbooking.ClassBooking
	for _, id := range slices.Sorted(maps.Keys(m.w.bookings)) {
		b := m.w.bookings[id]
		if b.ScheduleID == scheduleID && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockSubscriptions struct{ w *mockWorld }

func (m mockSubscriptions) GetByID(_ context.Context, id string) (subscription.Subscription, error) {
	s, ok := m.w.subscriptions[id]
	if !ok {
		return subscription.Subscription{}, subscription.ErrNotFound
	}
	return s, nil
}

func (m mockSubscriptions) GetByClassBookingID(_ context.Context, classBookingID string) (subscription.Subscription, error) {
	for _, s := range m.w.subscriptions {
		if s.ClassBookingID == classBookingID {
			return s, nil
		}
	}
	return subscription.Subscription{}, subscription.ErrNotFound
}

func (m mockSubscriptions) Save(_ context.Context, s subscription.Subscription) error {
	m.w.subscriptions[s.ID] = s
	return nil
}

func (m mockSubscriptions) CountActiveByCustomer(_ context.Context, customerID string) (int, error) {
	n := 0
	for _, s := range m.w.subscriptions {
		if s.CustomerID == customerID && s.IsActive() {
			n++
		}
	}
	return n, nil
}

type mockPayments struct{ w *mockWorld }

func (m mockPayments) GetByID(_ context.Context, id string) (payment.Payment, error) {
	p, ok := m.w.payments[id]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

func (m mockPayments) Save(_ context.Context, p payment.Payment) error {
	if p.TransactionID != "" {
		for _, other := range m.w.payments {
			if other.ID != p.ID && other.TransactionID == p.TransactionID {
				return payment.ErrDuplicateTransaction
			}
		}
	}
	m.w.payments[p.ID] = p
	return nil
}

func (m mockPayments) ListBySubscription(_ context.Context, subscriptionID string) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range m.w.payments {
		if p.SubscriptionID == subscriptionID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAttendance struct{ w *mockWorld }

func attendanceKey(customerID, scheduleID string, d time.Time) string {
	return customerID + "|" + scheduleID + "|" + day.Format(d)
}

func (m mockAttendance) GetByKey(_ context.Context, customerID, scheduleID string, classDate time.Time) (attendance.Attendance, error) {
	a, ok := m.w.attendance[attendanceKey(customerID, scheduleID, classDate)]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return a, nil
}

func (m mockAttendance) Save(_ context.Context, a attendance.Attendance) error {
	m.w.attendance[attendanceKey(a.CustomerID, a.ScheduleID, a.ClassDate)] = a
	return nil
}

func (m mockAttendance) ListBySubscription(_ context.Context, subscriptionID string) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range m.w.attendance {
		if a.SubscriptionID == subscriptionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// seedStudio adds customer c1 and c2, service svc and schedule s1 running
// Mondays and Wednesdays through January 2025.
func seedStudio(w *mockWorld) {
	w.customers["c1"] = customer.Customer{ID: "c1", Name: "Asha", MembershipStatus: customer.MembershipInactive}
	w.customers["c2"] = customer.Customer{ID: "c2", Name: "Ravi", MembershipStatus: customer.MembershipInactive}
	w.services["svc"] = service.Service{ID: "svc", Name: "Hatha", IsActive: true}
	until := day.Date(2025, 1, 31)
	w.schedules["s1"] = schedule.Schedule{
		ID:             "s1",
		ServiceID:      "svc",
		Rule:           schedule.WeeklyOn(time.Monday, time.Wednesday),
		StartTime:      "07:00",
		EndTime:        "08:00",
		EffectiveFrom:  day.Date(2025, 1, 1),
		EffectiveUntil: &until,
		IsActive:       true,
	}
}
