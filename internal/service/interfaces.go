package service

import (
	"context"

	"github.com/alexanderramin/ridewait/internal/contract"
	"github.com/alexanderramin/ridewait/internal/domain"
)

// DashboardService drives the chart conversation for each browser or
// terminal session.
type DashboardService interface {
	// StartSession creates an empty conversation and returns its ID.
	StartSession(ctx context.Context) (string, error)
	// EnsureSession returns id when it names a stored session and starts a
	// new one otherwise.
	EnsureSession(ctx context.Context, id string) (string, error)
	// GenerateGraph handles one submission. A nil submission returns the
	// default chart and leaves transcript and input unchanged.
	GenerateGraph(ctx context.Context, sessionID string, sub *contract.Submission) (*contract.GraphUpdate, error)
	// CurrentFigure re-derives the chart for the latest turn.
	CurrentFigure(ctx context.Context, sessionID string) (domain.Figure, error)
	Transcript(ctx context.Context, sessionID string) (string, error)
	// Reset discards the session and returns the ID of a fresh one.
	Reset(ctx context.Context, sessionID string) (string, error)
	Preamble() string
	Table() *domain.MonthlyAggregate
}
