package web

import (
	"time"

	"github.com/samber/lo"

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

// Response shapes use snake_case keys, ISO dates and decimal strings for money.

type customerResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	MembershipStatus string `json:"membership_status"`
}

func toCustomerResponse(c customer.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, MembershipStatus: c.MembershipStatus}
}

type serviceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func toServiceResponse(s service.Service) serviceResponse {
	return serviceResponse{ID: s.ID, Name: s.Name, Description: s.Description, Level: s.Level, IsActive: s.IsActive}
}

type scheduleResponse struct {
	ID                  string   `json:"id"`
	ServiceID           string   `json:"service_id"`
	TrainerID           string   `json:"trainer_id,omitempty"`
	RecurrenceType      string   `json:"recurrence_type"`
	Weekdays            []string `json:"weekdays,omitempty"`
	DayOfMonth          int      `json:"day_of_month,omitempty"`
	CustomDates         []string `json:"custom_dates,omitempty"`
	StartTime           string   `json:"start_time"`
	EndTime             string   `json:"end_time"`
	EffectiveFrom       string   `json:"effective_from"`
	EffectiveUntil      string   `json:"effective_until,omitempty"`
	MaxParticipants     int      `json:"max_participants"`
	CurrentParticipants int      `json:"current_participants"`
	IsActive            bool     `json:"is_active"`
}

func toScheduleResponse(s schedule.Schedule) scheduleResponse {
	out := scheduleResponse{
		ID:                  s.ID,
		ServiceID:           s.ServiceID,
		TrainerID:           s.TrainerID,
		RecurrenceType:      string(s.RecurrenceType()),
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		EffectiveFrom:       day.Format(s.EffectiveFrom),
		EffectiveUntil:      day.FormatOptional(s.EffectiveUntil),
		MaxParticipants:     s.MaxParticipants,
		CurrentParticipants: s.CurrentParticipants,
		IsActive:            s.IsActive,
	}
	switch rule := s.Rule.(type) {
	case schedule.Weekly:
		out.Weekdays = rule.DayNames()
	case schedule.Monthly:
		out.DayOfMonth = rule.DayOfMonth
	case schedule.Custom:
		out.CustomDates = day.FormatAll(rule.Dates)
	}
	return out
}

type holidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

func toHolidayResponse(h holiday.Holiday) holidayResponse {
	return holidayResponse{ID: h.ID, Name: h.Name, StartDate: day.Format(h.StartDate), EndDate: day.Format(h.EndDate), Days: h.Days()}
}

type classBookingResponse struct {
	ID           string   `json:"id"`
	CustomerID   string   `json:"customer_id"`
	ScheduleID   string   `json:"schedule_id"`
	ServiceID    string   `json:"service_id"`
	StartsOn     string   `json:"starts_on"`
	EndsOn       string   `json:"ends_on,omitempty"`
	Status       string   `json:"status"`
	BookingDates []string `json:"booking_dates"`
}

func toClassBookingResponse(b classbooking.ClassBooking) classBookingResponse {
	return classBookingResponse{
		ID:           b.ID,
		CustomerID:   b.CustomerID,
		ScheduleID:   b.ScheduleID,
		ServiceID:    b.ServiceID,
		StartsOn:     day.Format(b.StartsOn),
		EndsOn:       day.FormatOptional(b.EndsOn),
		Status:       b.Status,
		BookingDates: day.FormatAll(b.BookingDates()),
	}
}

type subscriptionResponse struct {
	ID                   string `json:"id"`
	ClassBookingID       string `json:"class_booking_id"`
	CustomerID           string `json:"customer_id"`
	Status               string `json:"status"`
	TotalFees            string `json:"total_fees"`
	AmountPaid           string `json:"amount_paid"`
	RemainingAmount      string `json:"remaining_amount"`
	PaymentType          string `json:"payment_type"`
	NumberOfInstallments int    `json:"number_of_installments"`
	PaymentStatus        string `json:"payment_status"`
	TotalSessions        *int   `json:"total_sessions"`
	SessionsCompleted    int    `json:"sessions_completed"`
	SessionsRemaining    *int   `json:"sessions_remaining"`
	PausedFrom           string `json:"paused_from,omitempty"`
	PausedUntil          string `json:"paused_until,omitempty"`
	CancellationReason   string `json:"cancellation_reason,omitempty"`
}

func toSubscriptionResponse(s subscription.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:                   s.ID,
		ClassBookingID:       s.ClassBookingID,
		CustomerID:           s.CustomerID,
		Status:               s.Status,
		TotalFees:            s.TotalFees.StringFixed(2),
		AmountPaid:           s.AmountPaid().StringFixed(2),
		RemainingAmount:      s.RemainingAmount().StringFixed(2),
		PaymentType:          s.PaymentType,
		NumberOfInstallments: s.NumberOfInstallments,
		PaymentStatus:        s.PaymentStatus(),
		TotalSessions:        s.TotalSessions,
		SessionsCompleted:    s.SessionsCompleted(),
		SessionsRemaining:    s.SessionsRemaining(),
		PausedFrom:           day.FormatOptional(s.PausedFrom),
		PausedUntil:          day.FormatOptional(s.PausedUntil),
		CancellationReason:   s.CancellationReason,
	}
}

type paymentResponse struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	CustomerID     string `json:"customer_id"`
	Amount         string `json:"amount"`
	Method         string `json:"method"`
	Status         string `json:"status"`
	TransactionID  string `json:"transaction_id,omitempty"`
	PaidAt         string `json:"paid_at"`
	RefundedAt     string `json:"refunded_at,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func toPaymentResponse(p payment.Payment) paymentResponse {
	out := paymentResponse{
		ID:             p.ID,
		SubscriptionID: p.SubscriptionID,
		CustomerID:     p.CustomerID,
		Amount:         p.Amount.StringFixed(2),
		Method:         p.Method,
		Status:         p.Status,
		TransactionID:  p.TransactionID,
		PaidAt:         p.PaidAt.UTC().Format(time.RFC3339),
		Notes:          p.Notes,
	}
	if !p.RefundedAt.IsZero() {
		out.RefundedAt = p.RefundedAt.UTC().Format(time.RFC3339)
	}
	return out
}

type attendanceResponse struct {
	ID             string `json:"id"`
	CustomerID     string `json:"customer_id"`
	ScheduleID     string `json:"schedule_id"`
	SubscriptionID string `json:"subscription_id"`
	ClassDate      string `json:"class_date"`
	Status         string `json:"status"`
	MarkedBy       string `json:"marked_by,omitempty"`
	Notes          string `json:"notes,omitempty"`
	MarkedAt       string `json:"marked_at"`
}

func toAttendanceResponse(a attendance.Attendance) attendanceResponse {
	return attendanceResponse{
		ID:             a.ID,
		CustomerID:     a.CustomerID,
		ScheduleID:     a.ScheduleID,
		SubscriptionID: a.SubscriptionID,
		ClassDate:      day.Format(a.ClassDate),
		Status:         a.Status,
		MarkedBy:       a.MarkedBy,
		Notes:          a.Notes,
		MarkedAt:       a.MarkedAt.UTC().Format(time.RFC3339),
	}
}

// mapAll converts a store listing, returning an empty array rather than null.
func mapAll[T, R any](items []T, fn func(T) R) []R {
	if len(items) == 0 {
		return []R{}
	}
	return lo.Map(items, func(item T, _ int) R { return fn(item) })
}
