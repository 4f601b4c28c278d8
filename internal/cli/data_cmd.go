package cli

import (
	"fmt"

	"github.com/alexanderramin/ridewait/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newDataCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "data",
		Short: "Print the monthly average wait-time table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTable(svc.Dashboard.Table()))
			return nil
		},
	}
}
