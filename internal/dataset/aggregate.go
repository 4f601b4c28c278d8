package dataset

import (
	"math"
	"sort"

	"github.com/alexanderramin/ridewait/internal/domain"
	"gonum.org/v1/gonum/stat"
)

type monthBucket struct {
	posted []float64
	actual []float64
}

// Aggregate groups records by (Year, Month) and averages the numeric wait
// columns. Missing values are skipped; a group with no values for a column
// gets NaN for it. Rows come back sorted chronologically.
func Aggregate(records []domain.WaitTimeRecord, ride string) *domain.MonthlyAggregate {
	if ride == "" {
		ride = DefaultRide
	}

	buckets := make(map[domain.MonthKey]*monthBucket)
	for _, rec := range records {
		key := domain.MonthKey{Year: rec.Year, Month: rec.Month}
		b, ok := buckets[key]
		if !ok {
			b = &monthBucket{}
			buckets[key] = b
		}
		if rec.PostedWait != nil {
			b.posted = append(b.posted, *rec.PostedWait)
		}
		if rec.ActualWait != nil {
			b.actual = append(b.actual, *rec.ActualWait)
		}
	}

	keys := make([]domain.MonthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	agg := &domain.MonthlyAggregate{
		Name: "df_average_month",
		Rows: make([]domain.MonthlyRow, 0, len(keys)),
	}
	for _, k := range keys {
		b := buckets[k]
		agg.Rows = append(agg.Rows, domain.MonthlyRow{
			Ride:       ride,
			Year:       k.Year,
			Month:      k.Month,
			PostedWait: mean(b.posted),
			ActualWait: mean(b.actual),
		})
	}
	return agg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// Prepare loads path and builds the monthly aggregate in one step.
func Prepare(path string, opts Options) (*domain.MonthlyAggregate, error) {
	opts = opts.withDefaults()
	records, err := LoadFile(path, opts)
	if err != nil {
		return nil, err
	}
	return Aggregate(records, opts.Ride), nil
}
