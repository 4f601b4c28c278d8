package cli

import (
	"bytes"
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/alexanderramin/ridewait/internal/intelligence"
	"github.com/alexanderramin/ridewait/internal/llm"
	"github.com/alexanderramin/ridewait/internal/repository"
	"github.com/alexanderramin/ridewait/internal/service"
	"github.com/alexanderramin/ridewait/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

const validCode = `px.line(df_average_month, x="Month", y="Posted Wait")`

var ansi = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

type stubClient struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (c *stubClient) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, req.Prompt)
	if c.err != nil {
		return nil, c.err
	}
	return &llm.CompletionResponse{Text: c.response}, nil
}

func (c *stubClient) Available(context.Context) bool { return c.err == nil }

func newTestDashboard(t *testing.T, client llm.CompletionClient) service.DashboardService {
	t.Helper()
	database := testutil.NewTestDB(t)
	table := testutil.NewTestTable()
	charts := intelligence.NewChartService(client, table, intelligence.ChartServiceOptions{})
	repo := repository.NewSQLiteConversationRepo(database)
	return service.NewDashboardService(charts, table, repo, testutil.NewTestUoW(database), "Spaceship Earth")
}

// newTestApp returns an App whose Wire builds services over an in-memory
// store and records the config it was called with.
func newTestApp(t *testing.T, client llm.CompletionClient, interactive bool) (*App, *Config) {
	t.Helper()
	var wired Config
	app := &App{
		Config: DefaultConfig(),
		Wire: func(cfg Config) (*Services, error) {
			wired = cfg
			return &Services{Dashboard: newTestDashboard(t, client)}, nil
		},
		IsInteractive: func() bool { return interactive },
		Stderr:        &bytes.Buffer{},
	}
	return app, &wired
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return plain(out.String()), err
}

func teaEnter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}
