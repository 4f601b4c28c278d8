package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ridewait/internal/chartexpr"
	"github.com/alexanderramin/ridewait/internal/domain"
)

// chartPreambleTemplate describes the data frame and gives one worked example.
// The Markdown markers are part of the transcript shown to users; they are
// stripped before the text reaches the completion service.
const chartPreambleTemplate = "\n" +
	`Our dataframe "df_average_month" contains the following columns: Ride, Year, Month, Posted Wait, and Actual Wait. ` + "\n" +
	"The wait times are aggregated over the days within a month.\n" +
	"\n\n" +
	"**Description**: The average Posted Wait by month for %s.\n" +
	"\n" +
	"**Code**: ```%s```\n"

// ChartPreamble returns the fixed instructional preamble for ride.
func ChartPreamble(ride string) string {
	return fmt.Sprintf(chartPreambleTemplate, ride, DefaultChartCode(ride))
}

// DefaultChartCode is the worked example: mean posted wait per month, one
// line per year, for ride.
func DefaultChartCode(ride string) string {
	if ride == "" || ride == "Spaceship Earth" {
		return chartexpr.DefaultCode
	}
	query := "Ride == " + quote(ride, '\'')
	return fmt.Sprintf(`px.line(df_average_month.query(%s), x="Month", y="Posted Wait", color = "Year")`, quote(query, '"'))
}

// quote wraps s in q, escaping backslashes and q. The query literal is quoted
// twice, once for itself and once for the enclosing call.
func quote(s string, q byte) string {
	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == q {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte(q)
	return b.String()
}

// Sanitize removes Markdown code fences and bold markers from prompt text.
// Removal repeats until none remain, since deleting one marker can join the
// characters around it into another.
func Sanitize(s string) string {
	for strings.Contains(s, "```") || strings.Contains(s, "**") {
		s = strings.ReplaceAll(s, "```", "")
		s = strings.ReplaceAll(s, "**", "")
	}
	return s
}

// BuildPrompt serializes the preamble and conversation into the text
// sent to the completion service. Turns that failed without producing code
// are left out. When maxTurns > 0 only the most recent maxTurns completed
// turns are kept; a trailing pending turn is always included.
func BuildPrompt(preamble string, state domain.ConversationState, maxTurns int) string {
	var completed []domain.Turn
	var pending *domain.Turn
	for i, t := range state.Turns {
		switch {
		case t.Pending() && i == len(state.Turns)-1:
			pending = &state.Turns[i]
		case t.Error != "":
			continue
		default:
			completed = append(completed, t)
		}
	}
	if maxTurns > 0 && len(completed) > maxTurns {
		completed = completed[len(completed)-maxTurns:]
	}

	var b strings.Builder
	b.WriteString(preamble)
	for _, t := range completed {
		domain.WriteTurn(&b, t)
	}
	if pending != nil {
		domain.WriteTurn(&b, *pending)
	}
	return Sanitize(b.String())
}
