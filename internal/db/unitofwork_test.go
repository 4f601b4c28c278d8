package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/ridewait/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func insertSession(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO sessions (id, created_at, updated_at) VALUES (?, 'now', 'now')`, id)
	return err
}

func countSessions(t *testing.T, database *sql.DB, id string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&n))
	return n
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertSession(ctx, tx, "s1")
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countSessions(t, database, "s1"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openUoW(t)
	boom := errors.New("deliberate failure")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertSession(ctx, tx, "s2"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, countSessions(t, database, "s2"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertSession(ctx, tx, "s3")
			panic("boom")
		})
	})

	assert.Equal(t, 0, countSessions(t, database, "s3"))
}

func TestWithinReadTx_DiscardsWrites(t *testing.T) {
	database, uow := openUoW(t)
	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertSession(ctx, tx, "kept")
	}))

	var seen int
	err := uow.WithinReadTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&seen); err != nil {
			return err
		}
		return insertSession(ctx, tx, "scratch")
	})
	require.NoError(t, err)

	assert.Equal(t, 1, seen)
	assert.Equal(t, 1, countSessions(t, database, "kept"))
	assert.Equal(t, 0, countSessions(t, database, "scratch"))
}

func TestWithinTx_RetriesBusy(t *testing.T) {
	database, uow := openUoW(t)
	uow.BusyBackoff = time.Millisecond

	calls := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		calls++
		if err := insertSession(ctx, tx, "busy"); err != nil {
			return err
		}
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, countSessions(t, database, "busy"))
}

func TestWithinTx_BusyRetriesExhausted(t *testing.T) {
	_, uow := openUoW(t)
	uow.BusyRetries = 2
	uow.BusyBackoff = time.Millisecond

	calls := 0
	err := uow.WithinTx(context.Background(), func(context.Context, db.DBTX) error {
		calls++
		return errors.New("SQLITE_BUSY")
	})

	assert.True(t, db.IsBusy(err))
	assert.Equal(t, 3, calls)
}

func TestWithinTx_OtherErrorsNotRetried(t *testing.T) {
	_, uow := openUoW(t)
	boom := errors.New("constraint failed")

	calls := 0
	err := uow.WithinTx(context.Background(), func(context.Context, db.DBTX) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithinTx_BusyStopsOnCancel(t *testing.T) {
	_, uow := openUoW(t)
	uow.BusyBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())

	err := uow.WithinTx(ctx, func(context.Context, db.DBTX) error {
		cancel()
		return errors.New("database is locked")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsBusy(t *testing.T) {
	assert.False(t, db.IsBusy(nil))
	assert.False(t, db.IsBusy(errors.New("no such table")))
	assert.True(t, db.IsBusy(errors.New("database is locked")))
}
