package unitofwork_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"studio/internal/adapters/storage"
	"studio/internal/adapters/storage/storagetest"
	subscriptionstore "studio/internal/adapters/storage/subscription"
	"studio/internal/adapters/storage/unitofwork"
	"studio/internal/application/orchestrators"
	"studio/internal/domain/errs"
	"studio/internal/domain/payment"
	"studio/internal/domain/subscription"
)

func clock() orchestrators.Clock {
	n := 0
	return orchestrators.Clock{
		GenerateID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() time.Time { return time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC) },
	}
}

func countRows(t *testing.T, db storage.Querier, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedGraph(t, db)
	uow := unitofwork.New(db)
	boom := errors.New("boom")

	err := uow.InTx(context.Background(), func(st orchestrators.Stores) error {
		p := payment.Payment{ID: "p1", SubscriptionID: "sub1", CustomerID: "c1", Amount: decimal.NewFromInt(100),
			Method: payment.MethodCash, Status: payment.StatusCompleted, PaidAt: time.Now().UTC()}
		if err := st.Payments.Save(context.Background(), p); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() = %v, want boom", err)
	}
	if n := countRows(t, db, "payment"); n != 0 {
		t.Errorf("payments after rollback = %d, want 0", n)
	}
}

// TestWorkflowsOnSQLite books, subscribes, marks and pays through the real stores.
func TestWorkflowsOnSQLite(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedCustomer(t, db, "c1")
	storagetest.SeedService(t, db, "svc")
	storagetest.SeedSchedule(t, db, "s1", "svc")
	timed := storage.NewTimedDB(db, nil, 0)
	uow := unitofwork.New(timed)
	c := clock()
	ctx := context.Background()

	b, err := orchestrators.ExecuteCreateClassBooking(ctx, orchestrators.CreateClassBookingInput{
		CustomerID: "c1", ScheduleID: "s1", StartsOn: "2025-01-08", EndsOn: "2025-01-20",
	}, orchestrators.BookingDeps{Tx: uow, Clock: c})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if got := len(b.BookingDates()); got != 4 {
		t.Fatalf("booking dates = %d, want 4", got)
	}

	sub, err := orchestrators.ExecuteCreateSubscription(ctx, orchestrators.CreateSubscriptionInput{
		ClassBookingID: b.ID, TotalFees: "6000", PaymentType: subscription.PaymentTypeInstallments, NumberOfInstallments: 3,
	}, orchestrators.SubscriptionDeps{Tx: uow, Clock: c})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{
		CustomerID: "c1", ScheduleID: "s1", SubscriptionID: sub.ID, ClassDate: "2025-01-13", Status: "present",
	}, orchestrators.AttendanceDeps{Tx: uow, Clock: c}); err != nil {
		t.Fatalf("mark: %v", err)
	}

	payDeps := orchestrators.PaymentDeps{Tx: uow, Clock: c}
	in := orchestrators.RecordPaymentInput{SubscriptionID: sub.ID, CustomerID: "c1", Amount: "2000", Method: payment.MethodUPI, TransactionID: "T-1"}
	if _, err := orchestrators.ExecuteRecordPayment(ctx, in, payDeps); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := orchestrators.ExecuteRecordPayment(ctx, in, payDeps); !errs.IsConflict(err) {
		t.Errorf("duplicate transaction = %v, want conflict", err)
	}

	stored, err := subscriptionstore.NewSQLiteStore(db).GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.AmountPaid().Equal(decimal.NewFromInt(2000)) || stored.PaymentStatus() != subscription.PaymentPartial {
		t.Errorf("ledger = %s/%s, want 2000/partial", stored.AmountPaid(), stored.PaymentStatus())
	}
	if stored.SessionsCompleted() != 1 || *stored.SessionsRemaining() != 3 {
		t.Errorf("sessions = %d completed, %d remaining", stored.SessionsCompleted(), *stored.SessionsRemaining())
	}
	if n := countRows(t, db, "payment"); n != 1 {
		t.Errorf("payments = %d, want 1", n)
	}

	var membership string
	if err := db.QueryRow("SELECT membership_status FROM customer WHERE id = 'c1'").Scan(&membership); err != nil {
		t.Fatal(err)
	}
	if membership != "active" {
		t.Errorf("membership = %s, want active", membership)
	}
}
