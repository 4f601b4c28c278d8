package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// UnitOfWork scopes conversation storage to one SQLite transaction. The
// callback receives a DBTX backed by the transaction; callers build
// tx-scoped repositories from it.
type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
	// WithinReadTx gives fn a consistent snapshot and always rolls back.
	WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// Busy retry defaults for file databases shared between processes.
const (
	DefaultBusyRetries = 3
	DefaultBusyBackoff = 25 * time.Millisecond
)

// SQLiteUnitOfWork implements UnitOfWork with database/sql transactions. A
// transaction that fails with SQLITE_BUSY is rolled back and run again with
// exponential backoff, so fn must not have effects outside tx.
type SQLiteUnitOfWork struct {
	db          *sql.DB
	BusyRetries int
	BusyBackoff time.Duration
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{
		db:          db,
		BusyRetries: DefaultBusyRetries,
		BusyBackoff: DefaultBusyBackoff,
	}
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return u.retryBusy(ctx, func() error { return u.run(ctx, true, fn) })
}

func (u *SQLiteUnitOfWork) WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return u.retryBusy(ctx, func() error { return u.run(ctx, false, fn) })
}

func (u *SQLiteUnitOfWork) retryBusy(ctx context.Context, attempt func() error) error {
	delay := u.BusyBackoff
	for i := 0; ; i++ {
		err := attempt()
		if !IsBusy(err) || i >= u.BusyRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for locked database: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (u *SQLiteUnitOfWork) run(ctx context.Context, commit bool, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if !commit {
		return tx.Rollback()
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IsBusy reports whether err is SQLite refusing a lock held by another
// connection.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
