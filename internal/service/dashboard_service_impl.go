package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/ridewait/internal/contract"
	"github.com/alexanderramin/ridewait/internal/db"
	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/alexanderramin/ridewait/internal/intelligence"
	"github.com/alexanderramin/ridewait/internal/repository"
	"github.com/google/uuid"
)

type dashboardService struct {
	charts   intelligence.ChartService
	table    *domain.MonthlyAggregate
	sessions repository.ConversationRepo
	uow      db.UnitOfWork
	ride     string
	locks    *keyedLock
	observer UseCaseObserver
}

func NewDashboardService(
	charts intelligence.ChartService,
	table *domain.MonthlyAggregate,
	sessions repository.ConversationRepo,
	uow db.UnitOfWork,
	ride string,
	observers ...UseCaseObserver,
) DashboardService {
	return &dashboardService{
		charts:   charts,
		table:    table,
		sessions: sessions,
		uow:      uow,
		ride:     ride,
		locks:    newKeyedLock(),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *dashboardService) Preamble() string { return s.charts.Preamble() }

func (s *dashboardService) Table() *domain.MonthlyAggregate { return s.table }

func (s *dashboardService) StartSession(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if _, err := s.sessions.CreateSession(ctx, id, s.ride); err != nil {
		return "", fmt.Errorf("starting session: %w", err)
	}
	return id, nil
}

func (s *dashboardService) EnsureSession(ctx context.Context, id string) (string, error) {
	if id != "" {
		_, err := s.sessions.GetSession(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", err
		}
	}
	return s.StartSession(ctx)
}

func (s *dashboardService) GenerateGraph(ctx context.Context, sessionID string, sub *contract.Submission) (update *contract.GraphUpdate, err error) {
	if sub == nil {
		return &contract.GraphUpdate{Figure: s.charts.DefaultFigure()}, nil
	}

	startedAt := time.Now().UTC()
	fields := map[string]any{"session": sessionID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "generate-graph",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	next, result, err := s.charts.Submit(ctx, *state, sub.Text)
	if err != nil {
		return nil, err
	}
	last, _ := next.Last()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteConversationRepo(tx).AppendTurn(ctx, sessionID, last)
	})
	if err != nil {
		return nil, fmt.Errorf("saving turn: %w", err)
	}

	fields["turns"] = next.Len()
	fields["source"] = result.Source
	transcript := next.Transcript()
	input := ""
	update = &contract.GraphUpdate{
		Figure:     result.Figure,
		Transcript: &transcript,
		InputValue: &input,
		Code:       result.Code,
		Turns:      next.Len(),
	}
	if result.Err != nil {
		update.Failure = result.Err.Error()
		fields["failure"] = update.Failure
	}
	return update, nil
}

func (s *dashboardService) CurrentFigure(ctx context.Context, sessionID string) (domain.Figure, error) {
	turns, err := s.sessions.ListTurns(ctx, sessionID)
	if err != nil {
		return domain.Figure{}, err
	}
	if len(turns) == 0 {
		return s.charts.DefaultFigure(), nil
	}
	return s.charts.FigureFor(turns[len(turns)-1]), nil
}

func (s *dashboardService) Transcript(ctx context.Context, sessionID string) (string, error) {
	state, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return state.Transcript(), nil
}

// loadSession reads the session row and its turns from one snapshot.
func (s *dashboardService) loadSession(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	var state *domain.ConversationState
	err := s.uow.WithinReadTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		state, err = repository.NewSQLiteConversationRepo(tx).GetSession(ctx, sessionID)
		return err
	})
	return state, err
}

func (s *dashboardService) Reset(ctx context.Context, sessionID string) (string, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("resetting session: %w", err)
	}
	return s.StartSession(ctx)
}
