package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/ridewait/internal/db"
	"github.com/alexanderramin/ridewait/internal/llm"
	"github.com/alexanderramin/ridewait/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataCmd_PrintsAggregate(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{}, false)

	out, err := execute(t, app, "data")
	require.NoError(t, err)
	assert.Contains(t, out, "DF_AVERAGE_MONTH")
	assert.Contains(t, out, "Posted Wait")
	assert.Contains(t, out, "2019")
}

func TestAskCmd_PrintsCodeAndFigure(t *testing.T) {
	client := &stubClient{response: validCode}
	app, _ := newTestApp(t, client, false)

	out, err := execute(t, app, "ask", "posted", "wait", "by", "month")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 posted wait by month")
	assert.Contains(t, out, validCode)
	assert.Contains(t, out, "line: Posted Wait by Month")
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Description: posted wait by month")
}

func TestAskCmd_WritesPNGAndSVG(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		file   string
		format string
		magic  string
	}{
		{file: "chart.png", magic: "\x89PNG"},
		{file: "chart.svg", magic: "<svg"},
		{file: "chart.out", format: "svg", magic: "<svg"},
	} {
		t.Run(tc.file, func(t *testing.T) {
			app, _ := newTestApp(t, &stubClient{response: validCode}, false)
			path := filepath.Join(dir, tc.file)
			args := []string{"ask", "monthly line", "--out", path}
			if tc.format != "" {
				args = append(args, "--format", tc.format)
			}

			out, err := execute(t, app, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "wrote "+path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data[:min(len(data), 256)]), tc.magic)
		})
	}
}

func TestAskCmd_CompletionFailureShowsPlaceholder(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{err: errors.New("upstream 500")}, false)

	out, err := execute(t, app, "ask", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "upstream 500")
	assert.Contains(t, out, "no chart for this request")
}

func TestAskCmd_MissingCredential(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{err: llm.ErrMissingCredential}, false)

	_, err := execute(t, app, "ask", "anything")
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestAskCmd_NoDescriptionNonInteractive(t *testing.T) {
	client := &stubClient{response: validCode}
	app, _ := newTestApp(t, client, false)

	_, err := execute(t, app, "ask")
	assert.ErrorIs(t, err, errNoDescription)
	assert.Empty(t, client.prompts)
}

func TestAskCmd_PromptsWhenInteractive(t *testing.T) {
	client := &stubClient{response: validCode}
	app, _ := newTestApp(t, client, true)
	app.PromptDescription = func(context.Context) (string, error) {
		return "from the prompt", nil
	}

	out, err := execute(t, app, "ask")
	require.NoError(t, err)
	assert.Contains(t, out, "from the prompt")
	require.Len(t, client.prompts, 1)
}

func TestAskCmd_PromptErrorStopsBeforeWiring(t *testing.T) {
	app, wired := newTestApp(t, &stubClient{}, true)
	app.PromptDescription = func(context.Context) (string, error) {
		return "", errors.New("user aborted")
	}

	_, err := execute(t, app, "ask")
	assert.EqualError(t, err, "user aborted")
	assert.Empty(t, wired.DataPath)
}

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	app, wired := newTestApp(t, &stubClient{}, false)

	_, err := execute(t, app, "data", "--data", "other.csv", "--db", "/tmp/s.db", "--ride", "Soarin", "--max-turns", "3", "--debug")
	require.NoError(t, err)
	assert.Equal(t, "other.csv", wired.DataPath)
	assert.Equal(t, "/tmp/s.db", wired.DBPath)
	assert.Equal(t, "Soarin", wired.Ride)
	assert.Equal(t, 3, wired.PromptMaxTurns)
	assert.True(t, wired.Debug)
}

func TestRootCmd_WireErrorReturned(t *testing.T) {
	app := &App{
		Config: DefaultConfig(),
		Wire: func(Config) (*Services, error) {
			return nil, errors.New("loading data: no such file")
		},
	}

	_, err := execute(t, app, "data")
	assert.EqualError(t, err, "loading data: no such file")
}

func TestRootCmd_NonInteractiveShowsHelp(t *testing.T) {
	app, wired := newTestApp(t, &stubClient{}, false)

	out, err := execute(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "shell")
	assert.Empty(t, wired.DataPath)
}

func TestRootCmd_ClosesServices(t *testing.T) {
	closed := 0
	app := &App{
		Config: DefaultConfig(),
		Wire: func(Config) (*Services, error) {
			return &Services{
				Dashboard: newTestDashboard(t, &stubClient{}),
				Close:     func() error { closed++; return nil },
			}, nil
		},
	}

	_, err := execute(t, app, "data")
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
}

func TestChartFormat(t *testing.T) {
	tests := []struct {
		path, format, want string
		wantErr            bool
	}{
		{path: "a.png", want: "png"},
		{path: "a.SVG", want: "svg"},
		{path: "a", want: "png"},
		{path: "a.png", format: "svg", want: "svg"},
		{path: "a.gif", wantErr: true},
	}
	for _, tc := range tests {
		got, err := chartFormat(tc.path, tc.format)
		if tc.wantErr {
			assert.Error(t, err, tc.path)
			continue
		}
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RIDEWAIT_DATA", "x.csv")
	t.Setenv("RIDEWAIT_ADDR", ":9000")
	t.Setenv("RIDEWAIT_DB", "s.db")
	t.Setenv("RIDEWAIT_RIDE", "Soarin")
	t.Setenv("RIDEWAIT_DEBUG", "true")
	t.Setenv("RIDEWAIT_PROMPT_MAX_TURNS", "4")

	cfg := LoadConfig()
	assert.Equal(t, Config{
		DataPath:       "x.csv",
		Addr:           ":9000",
		DBPath:         "s.db",
		Ride:           "Soarin",
		Debug:          true,
		PromptMaxTurns: 4,
	}, cfg)
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"RIDEWAIT_DATA", "RIDEWAIT_ADDR", "RIDEWAIT_DB", "RIDEWAIT_RIDE", "RIDEWAIT_DEBUG", "RIDEWAIT_PROMPT_MAX_TURNS"} {
		t.Setenv(k, "")
	}
	t.Setenv("RIDEWAIT_PROMPT_MAX_TURNS", "-1")

	cfg := LoadConfig()
	assert.Equal(t, DefaultDataPath, cfg.DataPath)
	assert.Equal(t, server.DefaultAddr, cfg.Addr)
	assert.Equal(t, db.MemoryPath, cfg.DBPath)
	assert.Equal(t, "Spaceship Earth", cfg.Ride)
	assert.Equal(t, DefaultPromptMaxTurns, cfg.PromptMaxTurns)
}
