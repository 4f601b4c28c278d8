package chartexpr

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *domain.MonthlyAggregate {
	return &domain.MonthlyAggregate{
		Name: FrameName,
		Rows: []domain.MonthlyRow{
			{Ride: "Spaceship Earth", Year: 2018, Month: 1, PostedWait: 10, ActualWait: 6},
			{Ride: "Spaceship Earth", Year: 2018, Month: 2, PostedWait: 12, ActualWait: math.NaN()},
			{Ride: "Spaceship Earth", Year: 2019, Month: 1, PostedWait: 15, ActualWait: 9},
			{Ride: "Spaceship Earth", Year: 2019, Month: 2, PostedWait: 18, ActualWait: 11},
			{Ride: "Spaceship Earth", Year: 2019, Month: 3, PostedWait: 20, ActualWait: 14},
		},
	}
}

func TestEvaluate_DefaultCodeOneLinePerYear(t *testing.T) {
	fig, err := Evaluate(DefaultCode, sampleTable())
	require.NoError(t, err)

	assert.Equal(t, domain.ChartLine, fig.Kind)
	assert.Equal(t, "Month", fig.XLabel)
	assert.Equal(t, "Posted Wait", fig.YLabel)
	assert.Equal(t, "Year", fig.ColorLabel)
	require.Len(t, fig.Series, 2)
	assert.Equal(t, "2018", fig.Series[0].Name)
	assert.Equal(t, []float64{1, 2}, fig.Series[0].X)
	assert.Equal(t, []float64{10, 12}, fig.Series[0].Y)
	assert.Equal(t, "2019", fig.Series[1].Name)
	assert.Equal(t, []float64{15, 18, 20}, fig.Series[1].Y)
}

func TestEvaluate_PlainLineSingleSeries(t *testing.T) {
	fig, err := Evaluate(`px.line(df_average_month, x="Month", y="Posted Wait")`, sampleTable())
	require.NoError(t, err)
	require.Len(t, fig.Series, 1)
	assert.Equal(t, "Posted Wait", fig.Series[0].Name)
	assert.Equal(t, 5, fig.Points())
}

func TestEvaluate_SkipsMissingMeans(t *testing.T) {
	fig, err := Evaluate(`px.scatter(df_average_month, x="Month", y="Actual Wait", color="Year")`, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, domain.ChartScatter, fig.Kind)
	require.Len(t, fig.Series, 2)
	assert.Equal(t, []float64{6}, fig.Series[0].Y)
}

func TestEvaluate_Filters(t *testing.T) {
	cases := map[string]struct {
		code   string
		points int
	}{
		"year equals":     {`px.line(df_average_month.query("Year == 2019"), x="Month", y="Posted Wait")`, 3},
		"month range":     {`px.line(df_average_month.query("Month >= 2 and Month < 3"), x="Month", y="Posted Wait")`, 2},
		"year above":      {`px.line(df_average_month.query("Year > 2018"), x="Month", y="Posted Wait")`, 3},
		"mask":            {`px.line(df_average_month[df_average_month["Year"] != 2019], x="Month", y="Posted Wait")`, 2},
		"ride mismatch":   {`px.line(df_average_month.query("Ride == 'Test Track'"), x="Month", y="Posted Wait")`, 0},
		"ride inequality": {`px.line(df_average_month.query("Ride != 'Test Track'"), x="Month", y="Posted Wait")`, 5},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fig, err := Evaluate(tc.code, sampleTable())
			require.NoError(t, err)
			assert.Equal(t, tc.points, fig.Points())
		})
	}
}

func TestEvaluate_ColorByRide(t *testing.T) {
	fig, err := Evaluate(`px.line(df_average_month, x="Month", y="Posted Wait", color="Ride", title="All rides")`, sampleTable())
	require.NoError(t, err)
	require.Len(t, fig.Series, 1)
	assert.Equal(t, "Spaceship Earth", fig.Series[0].Name)
	assert.Equal(t, "All rides", fig.Title)
}

func TestEvaluate_NilTable(t *testing.T) {
	_, err := Evaluate(DefaultCode, nil)
	assert.Error(t, err)
}

func TestInterpret_ValidStubOutput(t *testing.T) {
	fig := Interpret(`px.line(df_average_month, x="Month", y="Posted Wait")`, sampleTable())
	assert.False(t, fig.IsPlaceholder())
	assert.NotEmpty(t, fig.Series)
}

func TestInterpret_MalformedOutputYieldsPlaceholder(t *testing.T) {
	fig := Interpret("not a chart call", sampleTable())

	assert.True(t, fig.IsPlaceholder())
	assert.True(t, strings.HasPrefix(fig.Title, "Exception:"))
	assert.True(t, strings.HasSuffix(fig.Title, "Please try again!"))
	assert.Empty(t, fig.Series)
}

func TestPlaceholder_Title(t *testing.T) {
	fig := Placeholder(errors.New("boom"))
	assert.Equal(t, "Exception: boom. Please try again!", fig.Title)
	assert.Equal(t, domain.ChartLine, fig.Kind)
}
