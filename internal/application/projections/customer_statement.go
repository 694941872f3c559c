package projections

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/samber/lo"

	"studio/internal/domain/classbooking"
	"studio/internal/domain/day"
	"studio/internal/domain/export"
	"studio/internal/domain/payment"
	"studio/internal/domain/subscription"
)

// CustomerStatementQuery carries input for the customer statement projection.
type CustomerStatementQuery struct {
	CustomerID string
}

// CustomerStatementDeps holds dependencies for QueryCustomerStatement.
type CustomerStatementDeps struct {
	Customers     CustomerStore
	Bookings      CustomerBookingStore
	Subscriptions BookingSubscriptionStore
	Payments      PaymentHistoryStore
	Attendance    AttendanceHistoryStore
	Now           func() time.Time // optional; defaults to time.Now
}

// QueryCustomerStatement gathers everything recorded for one customer.
// PRE: customer exists
// POST: one subscription record per booking that has one; attendance lists every
// mark of those subscriptions, oldest class first
func QueryCustomerStatement(ctx context.Context, query CustomerStatementQuery, deps CustomerStatementDeps) (export.Statement, error) {
	c, err := deps.Customers.GetByID(ctx, query.CustomerID)
	if err != nil {
		return export.Statement{}, err
	}
	bookings, err := deps.Bookings.ListByCustomer(ctx, c.ID)
	if err != nil {
		return export.Statement{}, err
	}

	st := export.Statement{
		Customer: export.CustomerData{
			ID:               c.ID,
			Name:             c.Name,
			Email:            c.Email,
			Phone:            c.Phone,
			MembershipStatus: c.MembershipStatus,
		},
		Bookings:      lo.Map(bookings, func(b classbooking.ClassBooking, _ int) export.BookingRecord { return bookingRecord(b) }),
		Subscriptions: []export.SubscriptionRecord{},
		Attendance:    []export.AttendanceRecord{},
	}

	for _, b := range bookings {
		s, err := deps.Subscriptions.GetByClassBookingID(ctx, b.ID)
		if errors.Is(err, subscription.ErrNotFound) {
			continue
		}
		if err != nil {
			return export.Statement{}, err
		}
		st.Subscriptions = append(st.Subscriptions, subscriptionRecord(s))

		marks, err := deps.Attendance.ListBySubscription(ctx, s.ID)
		if err != nil {
			return export.Statement{}, err
		}
		for _, a := range marks {
			st.Attendance = append(st.Attendance, export.AttendanceRecord{
				ScheduleID:     a.ScheduleID,
				SubscriptionID: a.SubscriptionID,
				ClassDate:      day.Format(a.ClassDate),
				Status:         a.Status,
			})
		}
	}
	// ISO dates sort lexically.
	slices.SortStableFunc(st.Attendance, func(a, b export.AttendanceRecord) int {
		return cmp.Compare(a.ClassDate, b.ClassDate)
	})

	payments, err := deps.Payments.ListByCustomer(ctx, c.ID)
	if err != nil {
		return export.Statement{}, err
	}
	st.Payments = lo.Map(payments, func(p payment.Payment, _ int) export.PaymentRecord {
		return export.PaymentRecord{
			ID:             p.ID,
			SubscriptionID: p.SubscriptionID,
			Amount:         p.Amount.StringFixed(2),
			Method:         p.Method,
			Status:         p.Status,
			TransactionID:  p.TransactionID,
			PaidAt:         p.PaidAt,
		}
	})

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	st.Seal(now())
	return st, nil
}

func bookingRecord(b classbooking.ClassBooking) export.BookingRecord {
	return export.BookingRecord{
		ID:           b.ID,
		ScheduleID:   b.ScheduleID,
		ServiceID:    b.ServiceID,
		StartsOn:     day.Format(b.StartsOn),
		EndsOn:       day.FormatOptional(b.EndsOn),
		Status:       b.Status,
		BookingDates: day.FormatAll(b.BookingDates()),
	}
}

func subscriptionRecord(s subscription.Subscription) export.SubscriptionRecord {
	return export.SubscriptionRecord{
		ID:                s.ID,
		ClassBookingID:    s.ClassBookingID,
		Status:            s.Status,
		TotalFees:         s.TotalFees.StringFixed(2),
		AmountPaid:        s.AmountPaid().StringFixed(2),
		RemainingAmount:   s.RemainingAmount().StringFixed(2),
		PaymentStatus:     s.PaymentStatus(),
		TotalSessions:     s.TotalSessions,
		SessionsCompleted: s.SessionsCompleted(),
	}
}
