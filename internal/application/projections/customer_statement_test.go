package projections

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"studio/internal/domain/attendance"
	"studio/internal/domain/classbooking"
	"studio/internal/domain/customer"
	"studio/internal/domain/day"
	"studio/internal/domain/errs"
	"studio/internal/domain/payment"
	"studio/internal/domain/subscription"
)

func (m mockBookings) ListByCustomer(_ context.Context, customerID string) ([]classbooking.ClassBooking, error) {
	var out []classbooking.ClassBooking
	for _, b := range m {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m mockSubscriptions) GetByClassBookingID(_ context.Context, bookingID string) (subscription.Subscription, error) {
	for _, s := range m {
		if s.ClassBookingID == bookingID {
			return s, nil
		}
	}
	return subscription.Subscription{}, subscription.ErrNotFound
}

func (m mockAttendance) ListBySubscription(_ context.Context, subscriptionID string) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range m {
		if a.SubscriptionID == subscriptionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockPayments []payment.Payment

func (m mockPayments) ListByCustomer(_ context.Context, customerID string) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range m {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestQueryCustomerStatement(t *testing.T) {
	jan1, jan31 := day.Date(2025, 1, 1), day.Date(2025, 1, 31)
	paidAt := time.Date(2025, 1, 6, 4, 0, 0, 0, time.UTC)
	deps := CustomerStatementDeps{
		Customers: mockCustomers{"c1": {ID: "c1", Name: "Asha", MembershipStatus: customer.MembershipActive}},
		Bookings: mockBookings{
			booking("b1", "c1", jan1, jan31, classbooking.StatusActive),
			booking("b2", "c1", jan1, jan31, classbooking.StatusCancelled),
			booking("b3", "c2", jan1, jan31, classbooking.StatusActive),
		},
		Subscriptions: mockSubscriptions{sub("sub1", "b1", "c1", subscription.StatusActive, 2)},
		Attendance: mockAttendance{
			{SubscriptionID: "sub1", ScheduleID: "s1", ClassDate: day.Date(2025, 1, 13), Status: attendance.StatusPresent},
			{SubscriptionID: "sub1", ScheduleID: "s1", ClassDate: day.Date(2025, 1, 6), Status: attendance.StatusPresent},
		},
		Payments: mockPayments{
			{ID: "p1", SubscriptionID: "sub1", CustomerID: "c1", Amount: decimal.NewFromInt(2000), Method: payment.MethodUPI, Status: payment.StatusCompleted, TransactionID: "T-1", PaidAt: paidAt},
			{ID: "p2", CustomerID: "c2", Amount: decimal.NewFromInt(10), Method: payment.MethodCash, Status: payment.StatusCompleted},
		},
		Now: func() time.Time { return paidAt },
	}

	st, err := QueryCustomerStatement(context.Background(), CustomerStatementQuery{CustomerID: "c1"}, deps)
	if err != nil {
		t.Fatalf("QueryCustomerStatement() error: %v", err)
	}
	if st.Customer.Name != "Asha" || len(st.Bookings) != 2 || len(st.Subscriptions) != 1 || len(st.Payments) != 1 {
		t.Fatalf("statement = %+v", st)
	}
	if st.Attendance[0].ClassDate != "2025-01-06" || st.Attendance[1].ClassDate != "2025-01-13" {
		t.Errorf("attendance not ordered by date: %+v", st.Attendance)
	}
	if st.Metadata.RecordCount != 6 || !st.Metadata.GeneratedAt.Equal(paidAt) {
		t.Errorf("metadata = %+v", st.Metadata)
	}

	var buf bytes.Buffer
	if err := st.WritePaymentsCSV(&buf); err != nil {
		t.Fatalf("WritePaymentsCSV() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[1] != "p1,sub1,2025-01-06T04:00:00Z,2000.00,upi,completed,T-1" {
		t.Errorf("csv = %q", lines)
	}

	_, err = QueryCustomerStatement(context.Background(), CustomerStatementQuery{CustomerID: "nobody"}, deps)
	if !errs.IsNotFound(err) {
		t.Errorf("unknown customer: got %v, want not found", err)
	}
	if !errors.Is(err, customer.ErrNotFound) {
		t.Errorf("unknown customer: got %v, want customer.ErrNotFound", err)
	}
}
