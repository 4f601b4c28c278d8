package domain

import (
	"fmt"
	"math"
	"time"
)

// PostedWaitUnavailable marks an interval where no posted wait was published.
const PostedWaitUnavailable = -999

// Canonical column names of the monthly aggregate table.
const (
	ColumnRide       = "Ride"
	ColumnYear       = "Year"
	ColumnMonth      = "Month"
	ColumnPostedWait = "Posted Wait"
	ColumnActualWait = "Actual Wait"
)

// WaitTimeRecord is a single observation for one ride.
type WaitTimeRecord struct {
	Ride       string
	Date       time.Time // calendar date, midnight UTC
	DateTime   time.Time
	Time       string // time of day, 15:04:05
	Year       int
	Month      int
	PostedWait *float64
	ActualWait *float64
}

// MonthKey identifies one aggregate group.
type MonthKey struct {
	Year  int
	Month int
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// Less orders keys chronologically.
func (k MonthKey) Less(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// MonthlyRow holds the mean waits for one (Year, Month) group. A mean with no
// contributing values is NaN.
type MonthlyRow struct {
	Ride       string
	Year       int
	Month      int
	PostedWait float64
	ActualWait float64
}

func (r MonthlyRow) Key() MonthKey {
	return MonthKey{Year: r.Year, Month: r.Month}
}

// Value returns the cell for a canonical column name. For the Ride column
// numeric is false and only label is meaningful.
func (r MonthlyRow) Value(column string) (num float64, label string, numeric bool, err error) {
	switch column {
	case ColumnRide:
		return math.NaN(), r.Ride, false, nil
	case ColumnYear:
		return float64(r.Year), fmt.Sprint(r.Year), true, nil
	case ColumnMonth:
		return float64(r.Month), fmt.Sprint(r.Month), true, nil
	case ColumnPostedWait:
		return r.PostedWait, formatMean(r.PostedWait), true, nil
	case ColumnActualWait:
		return r.ActualWait, formatMean(r.ActualWait), true, nil
	default:
		return 0, "", false, fmt.Errorf("unknown column %q", column)
	}
}

func formatMean(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

// MonthlyAggregate is the monthly-average table. Rows are sorted by
// (Year, Month) and each key appears once. It is read-only after construction.
type MonthlyAggregate struct {
	Name string
	Rows []MonthlyRow
}

// Columns lists the table's columns in display order.
func (a *MonthlyAggregate) Columns() []string {
	return []string{ColumnYear, ColumnMonth, ColumnPostedWait, ColumnActualWait, ColumnRide}
}

// HasColumn reports whether name is one of the table's columns.
func (a *MonthlyAggregate) HasColumn(name string) bool {
	for _, c := range a.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether a column holds numbers.
func IsNumeric(column string) bool {
	return column != ColumnRide
}

// Rides returns the distinct ride names in row order.
func (a *MonthlyAggregate) Rides() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range a.Rows {
		if !seen[r.Ride] {
			seen[r.Ride] = true
			out = append(out, r.Ride)
		}
	}
	return out
}
