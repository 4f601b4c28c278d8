package repository

import (
	"context"

	"github.com/alexanderramin/ridewait/internal/domain"
)

type ConversationRepo interface {
	CreateSession(ctx context.Context, id, ride string) (*domain.ConversationState, error)
	// GetSession loads the session and all of its turns in order.
	GetSession(ctx context.Context, id string) (*domain.ConversationState, error)
	// AppendTurn stores t and bumps the session's updated time. A turn whose
	// Seq is already taken fails with ErrConflict.
	AppendTurn(ctx context.Context, sessionID string, t domain.Turn) error
	ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error)
	DeleteSession(ctx context.Context, id string) error
	// CountSessions is used by health reporting.
	CountSessions(ctx context.Context) (int, error)
}
