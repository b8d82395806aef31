package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/tempo/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewUnitOfWork(database, db.SQLite)
}

// CountingUoW counts transactions and the writes made inside them.
// Reads pass through uncounted.
type CountingUoW struct {
	Inner db.UnitOfWork

	txs    atomic.Int32
	writes atomic.Int32
}

func (u *CountingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.txs.Add(1)
	return u.Inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &countingExec{DBTX: tx, writes: &u.writes})
	})
}

// Transactions is the number of WithinTx calls.
func (u *CountingUoW) Transactions() int { return int(u.txs.Load()) }

// Writes is the number of ExecContext calls made inside transactions.
func (u *CountingUoW) Writes() int { return int(u.writes.Load()) }

type countingExec struct {
	db.DBTX
	writes *atomic.Int32
}

func (c *countingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c.writes.Add(1)
	return c.DBTX.ExecContext(ctx, query, args...)
}
