package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd creates the top-level "ridewait" command and registers all
// subcommands against the provided App. Run without a subcommand on an
// interactive terminal it opens the shell.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "ridewait",
		Short:         "Ride wait-time charts from plain-language requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return cmd.Help()
			}
			return runShell(cmd, app)
		},
	}

	bindConfigFlags(root.PersistentFlags(), &app.Config)

	root.AddCommand(
		newServeCmd(app),
		newAskCmd(app),
		newDataCmd(app),
		newShellCmd(app),
	)

	return root
}

// bindConfigFlags registers flags that override the environment config.
func bindConfigFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.DataPath, "data", cfg.DataPath, "wait-time CSV file (date, datetime, SACTMIN, SPOSTMIN columns)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "session database path (\":memory:\" keeps sessions in memory)")
	fs.StringVar(&cfg.Ride, "ride", cfg.Ride, "ride name shown in prompts and titles")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	fs.IntVar(&cfg.PromptMaxTurns, "max-turns", cfg.PromptMaxTurns, "completed turns kept in each prompt (0 keeps all)")
}
