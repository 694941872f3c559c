// Package unitofwork runs orchestrator workflows against SQLite stores that
// share a single transaction.
package unitofwork

import (
	"context"

	"studio/internal/adapters/storage"
	"studio/internal/adapters/storage/attendance"
	"studio/internal/adapters/storage/classbooking"
	"studio/internal/adapters/storage/customer"
	"studio/internal/adapters/storage/holiday"
	"studio/internal/adapters/storage/payment"
	"studio/internal/adapters/storage/schedule"
	"studio/internal/adapters/storage/service"
	"studio/internal/adapters/storage/subscription"
	"studio/internal/application/orchestrators"
)

// SQLiteUnitOfWork implements orchestrators.TxRunner.
type SQLiteUnitOfWork struct {
	db storage.SQLDB
}

var _ orchestrators.TxRunner = (*SQLiteUnitOfWork)(nil)

// New creates a unit of work over db; pass a *storage.TimedDB to time statements.
func New(db storage.SQLDB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// InTx builds every store on one transaction and hands them to fn.
// PRE: db holds the studio schema
// POST: fn's writes are committed when it returns nil and rolled back otherwise
func (u *SQLiteUnitOfWork) InTx(ctx context.Context, fn func(orchestrators.Stores) error) error {
	return storage.InTx(ctx, u.db, func(q storage.Querier) error {
		return fn(Stores(q))
	})
}

// Stores builds the store set on q. Outside InTx, q is the plain database
// and each statement commits on its own.
func Stores(q storage.Querier) orchestrators.Stores {
	return orchestrators.Stores{
		Customers:     customer.NewSQLiteStore(q),
		Services:      service.NewSQLiteStore(q),
		Schedules:     schedule.NewSQLiteStore(q),
		Closures:      holiday.NewSQLiteStore(q),
		Bookings:      classbooking.NewSQLiteStore(q),
		Subscriptions: subscription.NewSQLiteStore(q),
		Payments:      payment.NewSQLiteStore(q),
		Attendance:    attendance.NewSQLiteStore(q),
	}
}
