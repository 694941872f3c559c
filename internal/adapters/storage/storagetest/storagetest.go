// Package storagetest opens schema-initialised in-memory databases and seeds
// parent rows for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"studio/internal/adapters/storage"
)

// Open returns an in-memory database with the full schema applied.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return db
}

// Exec runs a seed statement and fails the test on error.
func Exec(t testing.TB, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("seed %q: %v", query, err)
	}
}

// SeedCustomer inserts an inactive customer.
func SeedCustomer(t testing.TB, db *sql.DB, id string) {
	t.Helper()
	Exec(t, db, "INSERT INTO customer (id, name) VALUES (?, ?)", id, "Customer "+id)
}

// SeedService inserts an active service.
func SeedService(t testing.TB, db *sql.DB, id string) {
	t.Helper()
	Exec(t, db, "INSERT INTO service (id, name) VALUES (?, ?)", id, "Service "+id)
}

// SeedSchedule inserts a Monday/Wednesday schedule running through January 2025.
func SeedSchedule(t testing.TB, db *sql.DB, id, serviceID string) {
	t.Helper()
	Exec(t, db, `INSERT INTO schedule (id, service_id, recurrence_type, weekdays, start_time, end_time, effective_from, effective_until)
		VALUES (?, ?, 'weekly', 'monday,wednesday', '07:00', '08:00', '2025-01-01', '2025-01-31')`, id, serviceID)
}

// SeedBooking inserts an active booking starting 2025-01-01.
func SeedBooking(t testing.TB, db *sql.DB, id, customerID, scheduleID, serviceID string) {
	t.Helper()
	Exec(t, db, `INSERT INTO class_booking (id, customer_id, schedule_id, service_id, starts_on, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, '2025-01-01', 'active', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		id, customerID, scheduleID, serviceID)
}

// SeedSubscription inserts an active subscription on a booking.
func SeedSubscription(t testing.TB, db *sql.DB, id, bookingID, customerID string) {
	t.Helper()
	Exec(t, db, `INSERT INTO customer_subscription (id, class_booking_id, customer_id, total_fees, payment_type, status, created_at, updated_at)
		VALUES (?, ?, ?, '6000', 'full', 'active', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		id, bookingID, customerID)
}

// SeedGraph inserts customer c1, service svc, schedule s1, booking cb1 and
// subscription sub1 linking them.
func SeedGraph(t testing.TB, db *sql.DB) {
	t.Helper()
	SeedCustomer(t, db, "c1")
	SeedService(t, db, "svc")
	SeedSchedule(t, db, "s1", "svc")
	SeedBooking(t, db, "cb1", "c1", "s1", "svc")
	SeedSubscription(t, db, "sub1", "cb1", "c1")
}
