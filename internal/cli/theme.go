package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/ridewait/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ridewaitHuhTheme returns a huh theme using the formatter palette.
func ridewaitHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// descriptionForm builds the single-field form ask shows when run without
// an argument.
func descriptionForm(ride string, result *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Describe a chart").
				Description(fmt.Sprintf("Monthly averages for %s.", ride)).
				Placeholder("posted wait by month, one line per year").
				Value(result).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description is required")
					}
					return nil
				}),
		),
	).WithTheme(ridewaitHuhTheme()).WithShowHelp(false)
}

func huhPromptDescription(ride string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		var desc string
		if err := descriptionForm(ride, &desc).RunWithContext(ctx); err != nil {
			return "", err
		}
		return desc, nil
	}
}
