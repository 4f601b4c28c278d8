package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alexanderramin/ridewait/internal/service"
	"go.uber.org/zap"
)

// Services is everything a command needs once startup has succeeded.
type Services struct {
	Dashboard service.DashboardService
	Logger    *zap.SugaredLogger
	// Close releases the session store. May be nil.
	Close func() error
}

// App holds configuration and the wiring hook used by CLI commands.
type App struct {
	Config Config

	// Wire loads the dataset and builds services. It runs after flags are
	// parsed so flag values take effect.
	Wire func(Config) (*Services, error)

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	// PromptDescription asks for a chart description when ask has no
	// argument. Defaults to a huh input.
	PromptDescription func(ctx context.Context) (string, error)

	// Stderr receives progress output. Defaults to the command's stderr.
	Stderr io.Writer

	svc *Services
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) services() (*Services, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	if a.Wire == nil {
		return nil, fmt.Errorf("no services configured")
	}
	svc, err := a.Wire(a.Config)
	if err != nil {
		return nil, err
	}
	if svc.Logger == nil {
		svc.Logger = zap.NewNop().Sugar()
	}
	a.svc = svc
	return svc, nil
}

func (a *App) close() error {
	if a.svc == nil || a.svc.Close == nil {
		return nil
	}
	err := a.svc.Close()
	a.svc = nil
	return err
}
