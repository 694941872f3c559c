// Package report serves read-only aggregates over the studio tables.
package report

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store answers reporting queries.
type Store interface {
	Counts(ctx context.Context) (Counts, error)
	PaymentTotals(ctx context.Context) ([]PaymentRow, error)
	OpenBalances(ctx context.Context) ([]BalanceRow, error)
	ScheduleLoad(ctx context.Context) ([]ScheduleLoad, error)
}

// Counts holds headline row counts.
type Counts struct {
	CustomersTotal      int `db:"customers_total"`
	CustomersActive     int `db:"customers_active"`
	ActiveBookings      int `db:"active_bookings"`
	ActiveSubscriptions int `db:"active_subscriptions"`
	PresentMarks        int `db:"present_marks"`
}

// PaymentRow is one payment amount with its status.
type PaymentRow struct {
	Status string          `db:"status"`
	Amount decimal.Decimal `db:"amount"`
}

// BalanceRow is the fee position of one non-cancelled subscription.
type BalanceRow struct {
	SubscriptionID string          `db:"id"`
	PaymentStatus  string          `db:"payment_status"`
	TotalFees      decimal.Decimal `db:"total_fees"`
	AmountPaid     decimal.Decimal `db:"amount_paid"`
}

// ScheduleLoad is the active booking count against capacity for one schedule.
type ScheduleLoad struct {
	ScheduleID      string `db:"schedule_id"`
	ServiceName     string `db:"service_name"`
	MaxParticipants int    `db:"max_participants"`
	ActiveBookings  int    `db:"active_bookings"`
}
