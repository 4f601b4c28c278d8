package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/ridewait/internal/cli"
	"github.com/alexanderramin/ridewait/internal/dataset"
	"github.com/alexanderramin/ridewait/internal/db"
	"github.com/alexanderramin/ridewait/internal/intelligence"
	"github.com/alexanderramin/ridewait/internal/llm"
	"github.com/alexanderramin/ridewait/internal/log"
	"github.com/alexanderramin/ridewait/internal/repository"
	"github.com/alexanderramin/ridewait/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{
		Config: cli.LoadConfig(),
		Wire:   wire,
	}

	// Detect interactive terminal for the shell entrypoint and ask prompt.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	defer log.Sync()
	return cli.NewRootCmd(app).Execute()
}

// wire loads the dataset and builds the service graph for one command.
func wire(cfg cli.Config) (*cli.Services, error) {
	if err := log.Init(cfg.Debug); err != nil {
		return nil, err
	}
	logger := log.GetSugaredLogger()

	table, err := dataset.Prepare(cfg.DataPath, dataset.Options{Ride: cfg.Ride})
	if err != nil {
		return nil, fmt.Errorf("loading %s (set --data or RIDEWAIT_DATA): %w", cfg.DataPath, err)
	}
	logger.Infow("dataset loaded", "path", cfg.DataPath, "ride", cfg.Ride, "rows", len(table.Rows))

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	repo := repository.NewSQLiteConversationRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	llmCfg := llm.LoadConfig()
	var observer llm.Observer = llm.NoopObserver{}
	if llmCfg.LogPrompts {
		observer = llm.NewLogObserver(logger)
	}
	if !llmCfg.HasCredential() {
		logger.Warn("OPENAI_KEY is not set; chart requests will fail until it is")
	}
	client := llm.NewOpenAIClient(llmCfg, observer)

	charts := intelligence.NewChartService(client, table, intelligence.ChartServiceOptions{
		Ride:           cfg.Ride,
		MaxPromptTurns: cfg.PromptMaxTurns,
	})
	dashboard := service.NewDashboardService(charts, table, repo, uow, cfg.Ride,
		service.NewLogUseCaseObserver(logger))

	return &cli.Services{
		Dashboard: dashboard,
		Logger:    logger,
		Close:     database.Close,
	}, nil
}
