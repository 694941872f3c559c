// Package export shapes a customer's account statement: their bookings,
// subscription ledgers, payments and attendance in one document.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"studio/internal/domain/errs"
)

// Format constants for statement output.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Version is bumped when the statement layout changes.
const Version = "1"

// ErrInvalidFormat rejects unknown output formats.
var ErrInvalidFormat = fmt.Errorf("%w: format must be 'json' or 'csv'", errs.ErrValidation)

// ParseFormat defaults an empty format to JSON.
func ParseFormat(s string) (string, error) {
	switch s {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", ErrInvalidFormat
	}
}

// Statement is the complete account view of one customer.
type Statement struct {
	Customer      CustomerData         `json:"customer"`
	Bookings      []BookingRecord      `json:"bookings"`
	Subscriptions []SubscriptionRecord `json:"subscriptions"`
	Payments      []PaymentRecord      `json:"payments"`
	Attendance    []AttendanceRecord   `json:"attendance"`
	Metadata      Metadata             `json:"metadata"`
}

type CustomerData struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	MembershipStatus string `json:"membership_status"`
}

type BookingRecord struct {
	ID           string   `json:"id"`
	ScheduleID   string   `json:"schedule_id"`
	ServiceID    string   `json:"service_id"`
	StartsOn     string   `json:"starts_on"`
	EndsOn       string   `json:"ends_on,omitempty"`
	Status       string   `json:"status"`
	BookingDates []string `json:"booking_dates"`
}

type SubscriptionRecord struct {
	ID                string `json:"id"`
	ClassBookingID    string `json:"class_booking_id"`
	Status            string `json:"status"`
	TotalFees         string `json:"total_fees"`
	AmountPaid        string `json:"amount_paid"`
	RemainingAmount   string `json:"remaining_amount"`
	PaymentStatus     string `json:"payment_status"`
	TotalSessions     *int   `json:"total_sessions"`
	SessionsCompleted int    `json:"sessions_completed"`
}

type PaymentRecord struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Amount         string    `json:"amount"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	TransactionID  string    `json:"transaction_id,omitempty"`
	PaidAt         time.Time `json:"paid_at"`
}

type AttendanceRecord struct {
	ScheduleID     string `json:"schedule_id"`
	SubscriptionID string `json:"subscription_id"`
	ClassDate      string `json:"class_date"`
	Status         string `json:"status"`
}

type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"version"`
	RecordCount int       `json:"record_count"`
}

// Seal stamps the metadata once the statement is filled in.
// POST: RecordCount counts every booking, subscription, payment and attendance row
func (s *Statement) Seal(at time.Time) {
	s.Metadata = Metadata{
		GeneratedAt: at.UTC(),
		Version:     Version,
		RecordCount: len(s.Bookings) + len(s.Subscriptions) + len(s.Payments) + len(s.Attendance),
	}
}

// WritePaymentsCSV writes the payment history as CSV, one row per payment,
// preceded by a header row.
func (s *Statement) WritePaymentsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"payment_id", "subscription_id", "paid_at", "amount", "method", "status", "transaction_id"}); err != nil {
		return err
	}
	for _, p := range s.Payments {
		row := []string{p.ID, p.SubscriptionID, p.PaidAt.UTC().Format(time.RFC3339), p.Amount, p.Method, p.Status, p.TransactionID}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
