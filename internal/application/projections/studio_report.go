package projections

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"studio/internal/adapters/storage/report"
	"studio/internal/domain/payment"
)

// StudioReport is the headline summary of the studio.
type StudioReport struct {
	Counts           report.Counts
	Collected        decimal.Decimal
	Refunded         decimal.Decimal
	Outstanding      decimal.Decimal
	ByPaymentStatus  map[string]int
	BusiestSchedules []report.ScheduleLoad
}

// StudioReportDeps holds dependencies for QueryStudioReport.
type StudioReportDeps struct {
	Reports report.Store
}

// QueryStudioReport builds the studio summary.
// PRE: none
// POST: Outstanding sums each open subscription's remaining amount, never negative per subscription
func QueryStudioReport(ctx context.Context, deps StudioReportDeps) (StudioReport, error) {
	counts, err := deps.Reports.Counts(ctx)
	if err != nil {
		return StudioReport{}, err
	}
	payments, err := deps.Reports.PaymentTotals(ctx)
	if err != nil {
		return StudioReport{}, err
	}
	balances, err := deps.Reports.OpenBalances(ctx)
	if err != nil {
		return StudioReport{}, err
	}
	load, err := deps.Reports.ScheduleLoad(ctx)
	if err != nil {
		return StudioReport{}, err
	}

	out := StudioReport{
		Counts:           counts,
		Collected:        decimal.Zero,
		Refunded:         decimal.Zero,
		Outstanding:      decimal.Zero,
		ByPaymentStatus:  lo.CountValuesBy(balances, func(b report.BalanceRow) string { return b.PaymentStatus }),
		BusiestSchedules: load,
	}
	for _, p := range payments {
		switch p.Status {
		case payment.StatusCompleted:
			out.Collected = out.Collected.Add(p.Amount)
		case payment.StatusRefunded:
			out.Refunded = out.Refunded.Add(p.Amount)
		}
	}
	for _, b := range balances {
		out.Outstanding = out.Outstanding.Add(decimal.Max(b.TotalFees.Sub(b.AmountPaid), decimal.Zero))
	}
	return out, nil
}
