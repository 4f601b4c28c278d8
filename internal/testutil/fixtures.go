package testutil

import (
	"math"
	"time"

	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/google/uuid"
)

// SampleCSV is a small wait-time export in the raw column layout, covering
// two rides, two years, a sentinel row and a missing actual wait.
const SampleCSV = `date,datetime,SACTMIN,SPOSTMIN
01/05/2018,2018-01-05 09:00:00,,10
01/05/2018,2018-01-05 10:00:00,6,
01/20/2018,2018-01-20 11:00:00,,-999
02/03/2018,2018-02-03 09:30:00,,12
01/07/2019,2019-01-07 09:00:00,,15
01/07/2019,2019-01-07 09:05:00,9,
02/11/2019,2019-02-11 14:00:00,,18
`

// NewTestTable returns a monthly aggregate for Spaceship Earth over three
// months in two years.
func NewTestTable() *domain.MonthlyAggregate {
	return &domain.MonthlyAggregate{
		Name: "df_average_month",
		Rows: []domain.MonthlyRow{
			{Ride: "Spaceship Earth", Year: 2018, Month: 1, PostedWait: 10, ActualWait: 6},
			{Ride: "Spaceship Earth", Year: 2018, Month: 2, PostedWait: 12, ActualWait: math.NaN()},
			{Ride: "Spaceship Earth", Year: 2019, Month: 1, PostedWait: 15, ActualWait: 9},
			{Ride: "Spaceship Earth", Year: 2019, Month: 2, PostedWait: 18, ActualWait: math.NaN()},
		},
	}
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

type TurnOption func(*domain.Turn)

func WithCode(code string) TurnOption {
	return func(t *domain.Turn) { t.Code = code }
}

func WithError(msg string) TurnOption {
	return func(t *domain.Turn) { t.Error = msg }
}

func WithCreatedAt(at time.Time) TurnOption {
	return func(t *domain.Turn) { t.CreatedAt = at }
}

// NewTestTurn builds a completed turn with valid chart code unless options
// say otherwise.
func NewTestTurn(seq int, description string, opts ...TurnOption) domain.Turn {
	t := domain.Turn{
		Seq:         seq,
		Description: description,
		Code:        `px.line(df_average_month, x="Month", y="Posted Wait")`,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, seq, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
