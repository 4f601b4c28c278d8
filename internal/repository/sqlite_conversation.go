package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/ridewait/internal/db"
	"github.com/alexanderramin/ridewait/internal/domain"
)

// SQLiteConversationRepo implements ConversationRepo over the sessions and
// turns tables.
type SQLiteConversationRepo struct {
	db  db.DBTX
	now func() time.Time
}

func NewSQLiteConversationRepo(conn db.DBTX) *SQLiteConversationRepo {
	return &SQLiteConversationRepo{db: conn, now: time.Now}
}

func (r *SQLiteConversationRepo) CreateSession(ctx context.Context, id, ride string) (*domain.ConversationState, error) {
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, ride, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, ride, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("session %s: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return &domain.ConversationState{SessionID: id, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *SQLiteConversationRepo) GetSession(ctx context.Context, id string) (*domain.ConversationState, error) {
	var createdStr, updatedStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	state := &domain.ConversationState{SessionID: id}
	if state.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if state.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	state.Turns, err = r.ListTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *SQLiteConversationRepo) AppendTurn(ctx context.Context, sessionID string, t domain.Turn) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ?`,
		formatTime(t.CreatedAt), sessionID,
	)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, seq, description, code, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, t.Seq, t.Description, t.Code, t.Error, formatTime(t.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("turn %d of session %s: %w", t.Seq, sessionID, ErrConflict)
		}
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

func (r *SQLiteConversationRepo) ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, description, code, error, created_at
		FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		var createdStr string
		if err := rows.Scan(&t.Seq, &t.Description, &t.Code, &t.Error, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning turn row: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, fmt.Errorf("parsing turn created_at: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}

func (r *SQLiteConversationRepo) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteConversationRepo) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}
