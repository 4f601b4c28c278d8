package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/ridewait/internal/cli/formatter"
	"github.com/alexanderramin/ridewait/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services()
			if err != nil {
				return err
			}

			srv, err := server.New(svc.Dashboard, server.Config{
				Addr: app.Config.Addr,
				Ride: app.Config.Ride,
			}, svc.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n",
				formatter.StyleGreen.Render("Dashboard on"),
				formatter.Bold("http://"+app.Config.Addr))
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&app.Config.Addr, "addr", app.Config.Addr, "listen address")
	return cmd
}
