package render

import (
	"math"
	"testing"

	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█", Sparkline([]float64{1, 2}))
	assert.Equal(t, "▁ █", Sparkline([]float64{0, math.NaN(), 10}))
	assert.Equal(t, "▅▅", Sparkline([]float64{3, 3}))
	assert.Equal(t, "", Sparkline(nil))
}

func TestSummarize(t *testing.T) {
	sums := Summarize(twoYearFigure())

	require.Len(t, sums, 2)
	assert.Equal(t, "2019", sums[1].Name)
	assert.Equal(t, 2, sums[1].Points)
	assert.Equal(t, 15.0, sums[1].Min)
	assert.Equal(t, 20.0, sums[1].Max)
}

func TestText(t *testing.T) {
	out := Text(twoYearFigure())
	assert.Contains(t, out, "line of Posted Wait by Month")
	assert.Contains(t, out, "2018")

	placeholder := Text(domain.Figure{Title: "Exception: x. Please try again!"})
	assert.Equal(t, "Exception: x. Please try again!\n", placeholder)
}
