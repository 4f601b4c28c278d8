// Package render draws figures as PNG or SVG images and as terminal text.
package render

import (
	"fmt"
	"io"
	"math"

	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size in pixels.
const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// PNG renders fig as a PNG image.
func PNG(fig domain.Figure, w io.Writer, width, height int) error {
	return renderTo(fig, w, width, height, chart.PNG)
}

// SVG renders fig as an SVG document.
func SVG(fig domain.Figure, w io.Writer, width, height int) error {
	return renderTo(fig, w, width, height, chart.SVG)
}

func renderTo(fig domain.Figure, w io.Writer, width, height int, provider chart.RendererProvider) error {
	ch := Build(fig, width, height)
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

// Build converts fig to a go-chart chart. Placeholder and empty figures
// become a blank frame carrying the title.
func Build(fig domain.Figure, width, height int) chart.Chart {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	ch := chart.Chart{
		Title:      fig.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis:      chart.XAxis{Name: fig.XLabel},
		YAxis:      chart.YAxis{Name: fig.YLabel},
	}

	for i, s := range fig.Series {
		xs, ys := finitePoints(s)
		if len(xs) == 0 {
			continue
		}
		if len(xs) == 1 {
			// A single point has a zero-width range.
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
		}
		col := chart.GetDefaultColor(i)
		style := lineStyle(col)
		if fig.Kind == domain.ChartScatter {
			style = pointStyle(col)
		}
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	if len(ch.Series) == 0 {
		ch.XAxis = chart.XAxis{Style: chart.Hidden()}
		ch.YAxis = chart.YAxis{Style: chart.Hidden()}
		ch.Series = []chart.Series{blankSeries()}
		return ch
	}

	if len(ch.Series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// pointStyle draws markers without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: chart.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

func blankSeries() chart.ContinuousSeries {
	return chart.ContinuousSeries{
		XValues: []float64{0, 1},
		YValues: []float64{0, 1},
		Style:   chart.Style{StrokeColor: chart.ColorTransparent},
	}
}

func finitePoints(s domain.Series) ([]float64, []float64) {
	n := len(s.X)
	if len(s.Y) < n {
		n = len(s.Y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(s.X[i]) || math.IsNaN(s.Y[i]) || math.IsInf(s.X[i], 0) || math.IsInf(s.Y[i], 0) {
			continue
		}
		xs = append(xs, s.X[i])
		ys = append(ys, s.Y[i])
	}
	return xs, ys
}
