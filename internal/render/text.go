package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/ridewait/internal/domain"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline maps values onto eight block heights. NaN values print as a
// space.
func Sparkline(values []float64) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		switch {
		case math.IsNaN(v):
			b.WriteRune(' ')
		case hi == lo:
			b.WriteRune(sparkBlocks[len(sparkBlocks)/2])
		default:
			i := int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
			b.WriteRune(sparkBlocks[i])
		}
	}
	return b.String()
}

// SeriesSummary is one line of a terminal figure summary.
type SeriesSummary struct {
	Name   string
	Points int
	Min    float64
	Max    float64
	Spark  string
}

// Summarize reduces fig to per-series statistics for text output.
func Summarize(fig domain.Figure) []SeriesSummary {
	out := make([]SeriesSummary, 0, len(fig.Series))
	for _, s := range fig.Series {
		_, ys := finitePoints(s)
		sum := SeriesSummary{Name: s.Name, Points: len(ys), Min: math.NaN(), Max: math.NaN()}
		for _, y := range ys {
			if math.IsNaN(sum.Min) || y < sum.Min {
				sum.Min = y
			}
			if math.IsNaN(sum.Max) || y > sum.Max {
				sum.Max = y
			}
		}
		sum.Spark = Sparkline(s.Y)
		out = append(out, sum)
	}
	return out
}

// Text renders a plain multi-line description of fig.
func Text(fig domain.Figure) string {
	var b strings.Builder
	title := fig.Title
	if title == "" {
		title = fmt.Sprintf("%s of %s by %s", fig.Kind, fig.YLabel, fig.XLabel)
	}
	b.WriteString(title)
	b.WriteByte('\n')
	if fig.IsPlaceholder() {
		return b.String()
	}
	if len(fig.Series) == 0 {
		b.WriteString("  (no data)\n")
		return b.String()
	}
	for _, s := range Summarize(fig) {
		if s.Points == 0 {
			fmt.Fprintf(&b, "  %-16s (no points)\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "  %-16s %s  %.1f–%.1f (%d pts)\n", s.Name, s.Spark, s.Min, s.Max, s.Points)
	}
	return b.String()
}
