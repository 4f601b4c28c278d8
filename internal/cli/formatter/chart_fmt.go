package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/alexanderramin/ridewait/internal/render"
)

// FormatShellWelcome renders the banner shown when the shell starts.
func FormatShellWelcome(ride string, rows int) string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render("ridewait"))
	b.WriteString(Dim(fmt.Sprintf("  %s · %d monthly rows", ride, rows)))
	b.WriteString("\n")
	b.WriteString(Dim("Describe a chart and press Enter. /help lists commands."))
	b.WriteString("\n")
	return b.String()
}

// FormatShellHelp lists the shell's slash commands.
func FormatShellHelp() string {
	rows := [][]string{
		{StyleGreen.Render("/reset"), "start a new conversation"},
		{StyleGreen.Render("/data"), "show the monthly table"},
		{StyleGreen.Render("/help"), "show this help"},
		{StyleGreen.Render("/quit"), "exit the shell"},
	}
	return RenderTable([]string{"COMMAND", "DESCRIPTION"}, rows)
}

// FormatFigure renders a figure as a title line and one sparkline row per
// series.
func FormatFigure(fig domain.Figure) string {
	var b strings.Builder
	title := fig.Title
	if title == "" {
		title = fmt.Sprintf("%s: %s by %s", fig.Kind, fig.YLabel, fig.XLabel)
	}
	b.WriteString(Bold(title))
	b.WriteString("\n")

	if fig.IsPlaceholder() {
		b.WriteString(StyleYellow.Render("  no chart for this request"))
		b.WriteString("\n")
		return b.String()
	}
	summaries := render.Summarize(fig)
	if len(summaries) == 0 {
		b.WriteString(Dim("  (no data)"))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(summaries))
	for i, s := range summaries {
		style := SeriesStyle(i)
		if s.Points == 0 {
			rows = append(rows, []string{style.Render(s.Name), "", Dim("no points"), ""})
			continue
		}
		rows = append(rows, []string{
			style.Render(s.Name),
			style.Render(s.Spark),
			fmt.Sprintf("%.1f–%.1f", s.Min, s.Max),
			fmt.Sprintf("%d", s.Points),
		})
	}
	b.WriteString(RenderTable([]string{"SERIES", "TREND", "RANGE", "PTS"}, rows))
	return b.String()
}

// FormatTurn renders one conversation turn. Failed turns show the error in
// red beneath the code.
func FormatTurn(t domain.Turn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleBlue.Render(fmt.Sprintf("#%d", t.Seq)), StyleFg.Render(t.Description))
	switch {
	case t.Pending():
		b.WriteString(Dim("   …"))
		b.WriteString("\n")
	case t.Code != "":
		b.WriteString("   ")
		b.WriteString(StylePurple.Render(t.Code))
		b.WriteString("\n")
	}
	if t.Error != "" {
		b.WriteString("   ")
		b.WriteString(StyleRed.Render(t.Error))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTranscript renders every turn of a conversation.
func FormatTranscript(state domain.ConversationState) string {
	if len(state.Turns) == 0 {
		return Dim("No requests yet.") + "\n"
	}
	var b strings.Builder
	for _, t := range state.Turns {
		b.WriteString(FormatTurn(t))
	}
	return b.String()
}

// FormatTable renders the monthly aggregate.
func FormatTable(agg *domain.MonthlyAggregate) string {
	if agg == nil || len(agg.Rows) == 0 {
		return Dim("No rows.") + "\n"
	}
	cols := agg.Columns()
	rows := make([][]string, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		cells := make([]string, 0, len(cols))
		for _, c := range cols {
			_, label, _, err := r.Value(c)
			if err != nil {
				label = "?"
			}
			if label == "NaN" {
				label = Dim(label)
			}
			cells = append(cells, label)
		}
		rows = append(rows, cells)
	}
	var b strings.Builder
	b.WriteString(Header(agg.Name))
	b.WriteString("\n")
	b.WriteString(RenderTable(cols, rows))
	return b.String()
}
