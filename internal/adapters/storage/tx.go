package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Querier is the statement surface shared by *sql.DB, *sql.Tx and *TimedDB.
// Stores are built on a Querier so the same store works inside or outside a
// transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
	_ Querier = (*TimedDB)(nil)
)

// InTx runs fn inside one transaction and commits when fn returns nil.
// PRE: db is a valid connection
// POST: all writes made through q are committed together, or none are
func InTx(ctx context.Context, db SQLDB, fn func(q Querier) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var q Querier = tx
	if timed, ok := db.(*TimedDB); ok {
		q = timed.wrapTx(tx)
	}
	if err := fn(q); err != nil {
		return err
	}
	return tx.Commit()
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// MapNoRows replaces sql.ErrNoRows with notFound and passes other errors through.
func MapNoRows(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

// MapUnique replaces a unique-constraint failure with conflict.
func MapUnique(err, conflict error) error {
	if IsUniqueViolation(err) {
		return conflict
	}
	return err
}
