package report_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"studio/internal/adapters/storage/report"
	"studio/internal/adapters/storage/storagetest"
)

func TestSQLXStore_Aggregates(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedGraph(t, db)
	storagetest.SeedCustomer(t, db, "c2")
	storagetest.Exec(t, db, "UPDATE customer SET membership_status = 'active' WHERE id = 'c1'")
	storagetest.Exec(t, db, "UPDATE customer_subscription SET amount_paid = '2000', payment_status = 'partial' WHERE id = 'sub1'")
	storagetest.Exec(t, db, `INSERT INTO payment (id, subscription_id, customer_id, amount, method, status, paid_at)
		VALUES ('p1', 'sub1', 'c1', '2000.25', 'cash', 'completed', '2025-01-05T10:00:00Z'),
		       ('p2', 'sub1', 'c1', '500', 'cash', 'refunded', '2025-01-06T10:00:00Z'),
		       ('p3', NULL, 'c2', '99', 'card', 'failed', '2025-01-07T10:00:00Z')`)
	storagetest.Exec(t, db, `INSERT INTO attendance (id, customer_id, schedule_id, subscription_id, class_date, status, marked_at)
		VALUES ('a1', 'c1', 's1', 'sub1', '2025-01-06', 'present', '2025-01-06T08:00:00Z')`)

	store := report.NewSQLXStore(db)
	ctx := context.Background()

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	want := report.Counts{CustomersTotal: 2, CustomersActive: 1, ActiveBookings: 1, ActiveSubscriptions: 1, PresentMarks: 1}
	if counts != want {
		t.Errorf("Counts() = %+v, want %+v", counts, want)
	}

	payments, err := store.PaymentTotals(ctx)
	if err != nil || len(payments) != 2 {
		t.Fatalf("PaymentTotals = %d rows, %v", len(payments), err)
	}
	var completed decimal.Decimal
	for _, p := range payments {
		if p.Status == "completed" {
			completed = completed.Add(p.Amount)
		}
	}
	if !completed.Equal(decimal.RequireFromString("2000.25")) {
		t.Errorf("completed = %s, want 2000.25", completed)
	}

	balances, err := store.OpenBalances(ctx)
	if err != nil || len(balances) != 1 || !balances[0].TotalFees.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("OpenBalances = %+v, %v", balances, err)
	}

	load, err := store.ScheduleLoad(ctx)
	if err != nil || len(load) != 1 || load[0].ActiveBookings != 1 || load[0].ServiceName != "Service svc" {
		t.Errorf("ScheduleLoad = %+v, %v", load, err)
	}
}
