package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ridewait/internal/chartexpr"
	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/alexanderramin/ridewait/internal/llm"
)

// Chart result sources.
const (
	SourceDefault  = "default"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// ChartResult is the outcome of one chart request.
type ChartResult struct {
	Figure domain.Figure
	Code   string
	Prompt string
	Source string
	// Err is the completion or evaluation failure behind a placeholder figure.
	Err error
}

// ChartService turns chart descriptions into figures through the completion
// service, keeping the conversation so later requests can refine earlier ones.
type ChartService interface {
	// DefaultFigure returns the idle-state chart without calling the service.
	DefaultFigure() domain.Figure

	// Submit appends description to state, asks the completion service for
	// chart code and interprets it. The returned state always holds exactly
	// one more turn than the input unless the credential is missing.
	Submit(ctx context.Context, state domain.ConversationState, description string) (domain.ConversationState, *ChartResult, error)

	// FigureFor re-derives the figure a stored turn produced.
	FigureFor(turn domain.Turn) domain.Figure

	// Preamble returns the instructional prompt preamble.
	Preamble() string
}

// ChartServiceOptions configures a ChartService.
type ChartServiceOptions struct {
	Ride           string
	MaxPromptTurns int
	Now            func() time.Time
}

type chartService struct {
	client   llm.CompletionClient
	table    *domain.MonthlyAggregate
	preamble string
	ride     string
	maxTurns int
	now      func() time.Time
}

// NewChartService creates a ChartService over the monthly aggregate table.
func NewChartService(client llm.CompletionClient, table *domain.MonthlyAggregate, opts ChartServiceOptions) ChartService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Ride == "" {
		opts.Ride = "Spaceship Earth"
	}
	return &chartService{
		client:   client,
		table:    table,
		preamble: ChartPreamble(opts.Ride),
		ride:     opts.Ride,
		maxTurns: opts.MaxPromptTurns,
		now:      opts.Now,
	}
}

func (s *chartService) Preamble() string { return s.preamble }

func (s *chartService) DefaultFigure() domain.Figure {
	return chartexpr.Interpret(DefaultChartCode(s.ride), s.table)
}

func (s *chartService) Submit(ctx context.Context, state domain.ConversationState, description string) (domain.ConversationState, *ChartResult, error) {
	description = strings.TrimSpace(description)
	if s.client == nil {
		return state, nil, llm.ErrMissingCredential
	}

	next := state.WithTurn(description, s.now().UTC())
	prompt := BuildPrompt(s.preamble, next, s.maxTurns)

	resp, err := s.client.Complete(ctx, llm.CompletionRequest{
		Prompt:    prompt,
		MaxTokens: llm.DefaultMaxTokens,
		Stop:      llm.StopSequences,
	})
	if err != nil {
		if errors.Is(err, llm.ErrMissingCredential) {
			return state, nil, err
		}
		failure := fmt.Errorf("completion failed: %w", err)
		next.CompleteLast("", failure)
		return next, &ChartResult{
			Figure: chartexpr.Placeholder(failure),
			Prompt: prompt,
			Source: SourceFallback,
			Err:    failure,
		}, nil
	}

	code := strings.TrimSpace(resp.Text)
	result := &ChartResult{Code: code, Prompt: prompt, Source: SourceLLM}
	fig, evalErr := chartexpr.Evaluate(code, s.table)
	switch {
	case evalErr == nil:
		result.Figure = *fig
	case code == "":
		// An empty completion has no code to show, so the turn keeps the error.
		next.CompleteLast("", evalErr)
		result.Figure = chartexpr.Placeholder(evalErr)
		result.Source = SourceFallback
		result.Err = evalErr
		return next, result, nil
	default:
		result.Figure = chartexpr.Placeholder(evalErr)
		result.Source = SourceFallback
		result.Err = evalErr
	}
	next.CompleteLast(code, nil)
	return next, result, nil
}

func (s *chartService) FigureFor(turn domain.Turn) domain.Figure {
	if turn.Error != "" {
		return chartexpr.Placeholder(errors.New(turn.Error))
	}
	return chartexpr.Interpret(turn.Code, s.table)
}
