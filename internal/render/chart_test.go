package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"
)

func twoYearFigure() domain.Figure {
	return domain.Figure{
		Kind:   domain.ChartLine,
		XLabel: "Month",
		YLabel: "Posted Wait",
		Series: []domain.Series{
			{Name: "2018", X: []float64{1, 2, 3}, Y: []float64{10, 12, 11}},
			{Name: "2019", X: []float64{1, 2, 3}, Y: []float64{15, math.NaN(), 20}},
		},
	}
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPNG_LineFigure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(twoYearFigure(), &buf, 640, 360))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestSVG_ScatterFigure(t *testing.T) {
	fig := twoYearFigure()
	fig.Kind = domain.ChartScatter

	var buf bytes.Buffer
	require.NoError(t, SVG(fig, &buf, 0, 0))
	assert.True(t, strings.Contains(buf.String(), "<svg"))
}

func TestPNG_PlaceholderRendersBlankFrame(t *testing.T) {
	fig := domain.Figure{Kind: domain.ChartLine, Title: "Exception: bad call. Please try again!"}

	var buf bytes.Buffer
	require.NoError(t, PNG(fig, &buf, 320, 200))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestBuild_SkipsNaNAndPadsSinglePoint(t *testing.T) {
	fig := domain.Figure{
		Kind: domain.ChartLine,
		Series: []domain.Series{
			{Name: "solo", X: []float64{4, 5}, Y: []float64{math.NaN(), 7}},
			{Name: "empty", X: []float64{1}, Y: []float64{math.NaN()}},
		},
	}

	ch := Build(fig, 0, 0)

	require.Len(t, ch.Series, 1)
	s := ch.Series[0].(chart.ContinuousSeries)
	assert.Equal(t, []float64{5, 6}, s.XValues)
	assert.Equal(t, []float64{7, 7}, s.YValues)
	assert.Empty(t, ch.Elements, "no legend for one series")
	assert.Equal(t, DefaultWidth, ch.Width)
}

func TestBuild_LegendForMultipleSeries(t *testing.T) {
	ch := Build(twoYearFigure(), 640, 360)

	assert.Len(t, ch.Series, 2)
	assert.Len(t, ch.Elements, 1)
}
