package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/ridewait/internal/intelligence"
	"github.com/alexanderramin/ridewait/internal/llm"
	"github.com/alexanderramin/ridewait/internal/repository"
	"github.com/alexanderramin/ridewait/internal/testutil"
	"github.com/stretchr/testify/require"
)

const validCode = `px.line(df_average_month, x="Month", y="Posted Wait")`

type stubCompletionClient struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (c *stubCompletionClient) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &llm.CompletionResponse{Text: c.response}, nil
}

func (c *stubCompletionClient) Available(context.Context) bool { return c.err == nil }

func (c *stubCompletionClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type testEnv struct {
	db     *sql.DB
	repo   *repository.SQLiteConversationRepo
	client *stubCompletionClient
	svc    DashboardService
}

func newTestEnv(t *testing.T, client *stubCompletionClient, observers ...UseCaseObserver) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	table := testutil.NewTestTable()
	repo := repository.NewSQLiteConversationRepo(database)
	charts := intelligence.NewChartService(client, table, intelligence.ChartServiceOptions{})
	return &testEnv{
		db:     database,
		repo:   repo,
		client: client,
		svc:    NewDashboardService(charts, table, repo, uow, "Spaceship Earth", observers...),
	}
}

func (e *testEnv) startSession(t *testing.T) string {
	t.Helper()
	id, err := e.svc.StartSession(context.Background())
	require.NoError(t, err)
	return id
}
