package intelligence

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/ridewait/internal/chartexpr"
	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartPreamble_DefaultRide(t *testing.T) {
	p := ChartPreamble("Spaceship Earth")

	assert.True(t, strings.HasPrefix(p, "\nOur dataframe \"df_average_month\" contains"))
	assert.Contains(t, p, "Posted Wait, and Actual Wait. \n")
	assert.Contains(t, p, "**Description**: The average Posted Wait by month for Spaceship Earth.")
	assert.True(t, strings.HasSuffix(p, "color = \"Year\")```\n"))
}

func TestChartPreamble_OtherRide(t *testing.T) {
	p := ChartPreamble("Soarin'")

	assert.Contains(t, p, "by month for Soarin'.")
	assert.Contains(t, p, `query("Ride == 'Soarin\\''")`)
}

func TestDefaultChartCode_QuotedRideNamesEvaluate(t *testing.T) {
	for _, ride := range []string{"Peter Pan's Flight", `Say "Cheese"`, `Back\slash`, "Soarin'"} {
		t.Run(ride, func(t *testing.T) {
			table := &domain.MonthlyAggregate{
				Name: "df_average_month",
				Rows: []domain.MonthlyRow{
					{Ride: ride, Year: 2018, Month: 1, PostedWait: 10, ActualWait: 6},
					{Ride: ride, Year: 2018, Month: 2, PostedWait: 12, ActualWait: 7},
					{Ride: "Other", Year: 2018, Month: 1, PostedWait: 99, ActualWait: 99},
				},
			}

			fig, err := chartexpr.Evaluate(DefaultChartCode(ride), table)
			require.NoError(t, err)
			require.Len(t, fig.Series, 1)
			assert.Equal(t, []float64{10, 12}, fig.Series[0].Y)
		})
	}
}

func TestChartService_DefaultFigureForApostropheRide(t *testing.T) {
	ride := "Peter Pan's Flight"
	table := &domain.MonthlyAggregate{
		Name: "df_average_month",
		Rows: []domain.MonthlyRow{{Ride: ride, Year: 2018, Month: 1, PostedWait: 10, ActualWait: 6}},
	}

	fig := NewChartService(nil, table, ChartServiceOptions{Ride: ride}).DefaultFigure()
	assert.False(t, fig.IsPlaceholder(), fig.Title)
	assert.Len(t, fig.Series, 1)
}

func TestSanitize_RemovesMarkers(t *testing.T) {
	cases := []string{
		"**Code**: ```px.line(df)```",
		"`**``",
		"*```*",
		"****",
		"no markers",
	}
	for _, in := range cases {
		out := Sanitize(in)
		assert.NotContains(t, out, "```", in)
		assert.NotContains(t, out, "**", in)
	}
	assert.Equal(t, "no markers", Sanitize("no markers"))
	assert.Equal(t, "Code: px.line(df)", Sanitize("**Code**: ```px.line(df)```"))
}

func TestBuildPrompt_NoMarkersAndEndsAtCode(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	state := domain.ConversationState{}.WithTurn("show actual waits", now)
	state.CompleteLast(`px.line(df_average_month, x="Month", y="Actual Wait")`, nil)
	state = state.WithTurn("now **bold** ```fenced```", now)

	prompt := BuildPrompt(ChartPreamble("Spaceship Earth"), state, 0)

	assert.NotContains(t, prompt, "```")
	assert.NotContains(t, prompt, "**")
	assert.True(t, strings.HasSuffix(prompt, "\nCode:"))
	assert.Contains(t, prompt, "Description: show actual waits")
	assert.Contains(t, prompt, `Code: px.line(df_average_month, x="Month", y="Actual Wait")`)
}

func TestBuildPrompt_SkipsFailedTurns(t *testing.T) {
	now := time.Now()
	state := domain.ConversationState{}.WithTurn("broken request", now)
	state.CompleteLast("", errors.New("completion failed: timeout"))
	state = state.WithTurn("next request", now)

	prompt := BuildPrompt("", state, 0)

	assert.NotContains(t, prompt, "broken request")
	assert.Contains(t, prompt, "next request")
}

func TestBuildPrompt_WindowKeepsRecentTurns(t *testing.T) {
	now := time.Now()
	state := domain.ConversationState{}
	for _, d := range []string{"first", "second", "third"} {
		state = state.WithTurn(d, now)
		state.CompleteLast("px.line(df_average_month)", nil)
	}
	state = state.WithTurn("fourth", now)

	prompt := BuildPrompt("", state, 2)

	assert.NotContains(t, prompt, "first")
	assert.Contains(t, prompt, "second")
	assert.Contains(t, prompt, "third")
	assert.Contains(t, prompt, "fourth")
	require.Equal(t, 4, state.Len(), "window only affects the prompt")
}
