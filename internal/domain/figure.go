package domain

import "strings"

type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartScatter ChartKind = "scatter"
)

// Series is one colored line (or point set) of a figure.
type Series struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// Figure is a renderable chart built from the monthly aggregate.
type Figure struct {
	Kind       ChartKind `json:"kind"`
	Title      string    `json:"title,omitempty"`
	XLabel     string    `json:"x_label,omitempty"`
	YLabel     string    `json:"y_label,omitempty"`
	ColorLabel string    `json:"color_label,omitempty"`
	Series     []Series  `json:"series"`
}

// PlaceholderPrefix starts the title of every failure chart.
const PlaceholderPrefix = "Exception: "

// PlaceholderSuffix ends the title of every failure chart.
const PlaceholderSuffix = ". Please try again!"

// IsPlaceholder reports whether the figure stands in for a failed chart.
func (f Figure) IsPlaceholder() bool {
	return len(f.Series) == 0 &&
		strings.HasPrefix(f.Title, PlaceholderPrefix) &&
		strings.HasSuffix(f.Title, "Please try again!")
}

// Points returns the total number of plotted points.
func (f Figure) Points() int {
	n := 0
	for _, s := range f.Series {
		n += len(s.X)
	}
	return n
}
