// Package dataset loads raw wait-time observations and reshapes them into the
// monthly aggregate table that charts are drawn from.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ridewait/internal/domain"
)

// DefaultRide is the ride the bundled dataset describes.
const DefaultRide = "Spaceship Earth"

// ErrMissingColumn indicates a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Options controls how raw records are interpreted.
type Options struct {
	Ride string
	// Location used for timestamps without a zone. Defaults to UTC.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.Ride == "" {
		o.Ride = DefaultRide
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Raw header names mapped to canonical field names.
var columnAliases = map[string]string{
	"date":          "Date",
	"datetime":      "Date and Time",
	"date and time": "Date and Time",
	"sactmin":       domain.ColumnActualWait,
	"actual wait":   domain.ColumnActualWait,
	"spostmin":      domain.ColumnPostedWait,
	"posted wait":   domain.ColumnPostedWait,
}

var requiredColumns = []string{"Date", "Date and Time", domain.ColumnPostedWait}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04",
}

// LoadFile reads a CSV file of raw observations.
func LoadFile(path string, opts Options) ([]domain.WaitTimeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	records, err := LoadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return records, nil
}

// LoadCSV parses raw observations, renames fields to their canonical names,
// drops rows whose posted wait is the unavailable sentinel, tags every row
// with the ride name and derives the calendar fields.
func LoadCSV(r io.Reader, opts Options) ([]domain.WaitTimeRecord, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	index := headerIndex(header)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var records []domain.WaitTimeRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		posted, err := parseWait(cell(row, index, domain.ColumnPostedWait))
		if err != nil {
			return nil, fmt.Errorf("line %d: posted wait: %w", line, err)
		}
		if posted != nil && *posted == domain.PostedWaitUnavailable {
			continue
		}
		actual, err := parseWait(cell(row, index, domain.ColumnActualWait))
		if err != nil {
			return nil, fmt.Errorf("line %d: actual wait: %w", line, err)
		}

		date, err := parseTime(cell(row, index, "Date"), dateLayouts, opts.Location)
		if err != nil {
			return nil, fmt.Errorf("line %d: date: %w", line, err)
		}
		stamp, err := parseTime(cell(row, index, "Date and Time"), dateTimeLayouts, opts.Location)
		if err != nil {
			return nil, fmt.Errorf("line %d: datetime: %w", line, err)
		}

		records = append(records, domain.WaitTimeRecord{
			Ride:       opts.Ride,
			Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			DateTime:   stamp,
			Time:       stamp.Format("15:04:05"),
			Year:       date.Year(),
			Month:      int(date.Month()),
			PostedWait: posted,
			ActualWait: actual,
		})
	}
	return records, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			if _, dup := index[canonical]; !dup {
				index[canonical] = i
			}
		}
	}
	return index
}

func cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseWait reads a minutes value, keeping any fraction. Blank and NaN cells
// are missing values.
func parseWait(s string) (*float64, error) {
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "na") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("invalid minutes %q", s)
	}
	return &f, nil
}

func parseTime(s string, layouts []string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
