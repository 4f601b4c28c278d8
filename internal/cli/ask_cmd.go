package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/ridewait/internal/cli/formatter"
	"github.com/alexanderramin/ridewait/internal/contract"
	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/alexanderramin/ridewait/internal/render"
	"github.com/spf13/cobra"
)

// errNoDescription is returned when ask has nothing to submit.
var errNoDescription = fmt.Errorf("a chart description is required")

func newAskCmd(app *App) *cobra.Command {
	var outPath, format string
	var width, height int

	cmd := &cobra.Command{
		Use:   "ask [description]",
		Short: "Generate one chart from a description",
		Long: `Sends one description to the completion service and prints a summary of
the resulting chart. With --out the chart is also written as PNG or SVG.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.TrimSpace(strings.Join(args, " "))
			if desc == "" && app.interactive() {
				prompt := app.PromptDescription
				if prompt == nil {
					prompt = huhPromptDescription(app.Config.Ride)
				}
				var err error
				if desc, err = prompt(cmd.Context()); err != nil {
					return err
				}
			}
			sub := contract.NewSubmission(desc)
			if sub == nil {
				return errNoDescription
			}

			svc, err := app.services()
			if err != nil {
				return err
			}
			sessionID, err := svc.Dashboard.StartSession(cmd.Context())
			if err != nil {
				return err
			}

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(stderr(app, cmd), "drawing chart")
			}
			update, err := svc.Dashboard.GenerateGraph(cmd.Context(), sessionID, sub)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatTurn(domain.Turn{
				Seq:         update.Turns,
				Description: sub.Text,
				Code:        update.Code,
				Error:       update.Failure,
			}))
			fmt.Fprint(out, formatter.FormatFigure(update.Figure))

			if outPath == "" {
				return nil
			}
			if err := writeChart(outPath, format, update.Figure, width, height); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", formatter.Dim("wrote"), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the chart to this file")
	cmd.Flags().StringVar(&format, "format", "", "image format: png or svg (default from --out extension)")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", render.DefaultHeight, "image height in pixels")
	return cmd
}

func stderr(app *App, cmd *cobra.Command) io.Writer {
	if app.Stderr != nil {
		return app.Stderr
	}
	return cmd.ErrOrStderr()
}

// chartFormat picks the image format from the flag or the file extension.
func chartFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if format == "" {
			format = "png"
		}
	}
	switch format {
	case "png", "svg":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q (want png or svg)", format)
	}
}

func writeChart(path, format string, fig domain.Figure, width, height int) error {
	format, err := chartFormat(path, format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if format == "svg" {
		err = render.SVG(fig, &buf, width, height)
	} else {
		err = render.PNG(fig, &buf, width, height)
	}
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}
