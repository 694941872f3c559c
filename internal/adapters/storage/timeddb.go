package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"studio/internal/adapters/http/perf"
)

// SQLDB is the database handle stores and units of work are built from.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// TimedDB wraps a *sql.DB to log slow queries and optionally record to a collector.
// Statements issued inside InTx transactions are timed the same way.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection; slowQueryMs <= 0 uses DefaultSlowQueryMs
// POST: Returns a TimedDB that logs slow queries and records to collector
func NewTimedDB(db *sql.DB, collector *perf.Collector, slowQueryMs int) *TimedDB {
	if slowQueryMs <= 0 {
		slowQueryMs = DefaultSlowQueryMs
	}
	return &TimedDB{
		db:        db,
		collector: collector,
		threshold: float64(slowQueryMs),
	}
}

// RawDB returns the underlying *sql.DB (needed for schema setup and the sqlx read side).
// PRE: none
// POST: returns the unwrapped *sql.DB
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// logQuery logs and optionally records a query timing.
func (t *TimedDB) logQuery(op string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	if durationMs >= t.threshold {
		slog.Warn("slow_query",
			"op", op,
			"duration_ms", durationMs,
		)
	} else {
		slog.Debug("query",
			"op", op,
			"duration_ms", durationMs,
		)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       op,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return timedExec(ctx, t, t.db, "ExecContext", query, args)
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return timedQuery(ctx, t, t.db, "QueryContext", query, args)
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return timedQueryRow(ctx, t, t.db, "QueryRowContext", query, args)
}

// BeginTx wraps sql.DB.BeginTx with timing.
// PRE: ctx is valid
// POST: transaction started, timing recorded to collector
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.logQuery("BeginTx", start)
	return tx, err
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the database connection.
func (t *TimedDB) Ping() error {
	return t.db.Ping()
}

// timedTx times statements issued on a transaction opened by InTx.
type timedTx struct {
	owner *TimedDB
	tx    *sql.Tx
}

func (t *TimedDB) wrapTx(tx *sql.Tx) Querier {
	return &timedTx{owner: t, tx: tx}
}

func (t *timedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return timedExec(ctx, t.owner, t.tx, "Tx.ExecContext", query, args)
}

func (t *timedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return timedQuery(ctx, t.owner, t.tx, "Tx.QueryContext", query, args)
}

func (t *timedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return timedQueryRow(ctx, t.owner, t.tx, "Tx.QueryRowContext", query, args)
}

func timedExec(ctx context.Context, t *TimedDB, q Querier, op, query string, args []any) (sql.Result, error) {
	start := time.Now()
	result, err := q.ExecContext(ctx, query, args...)
	t.logQuery(op, start)
	return result, err
}

func timedQuery(ctx context.Context, t *TimedDB, q Querier, op, query string, args []any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args...)
	t.logQuery(op, start)
	return rows, err
}

func timedQueryRow(ctx context.Context, t *TimedDB, q Querier, op, query string, args []any) *sql.Row {
	start := time.Now()
	row := q.QueryRowContext(ctx, query, args...)
	t.logQuery(op, start)
	return row
}
