package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyRow_Value(t *testing.T) {
	row := MonthlyRow{Ride: "Spaceship Earth", Year: 2019, Month: 7, PostedWait: 12.5, ActualWait: math.NaN()}

	v, _, numeric, err := row.Value(ColumnMonth)
	require.NoError(t, err)
	assert.True(t, numeric)
	assert.Equal(t, 7.0, v)

	_, label, numeric, err := row.Value(ColumnRide)
	require.NoError(t, err)
	assert.False(t, numeric)
	assert.Equal(t, "Spaceship Earth", label)

	_, label, _, err = row.Value(ColumnActualWait)
	require.NoError(t, err)
	assert.Equal(t, "NaN", label)

	_, _, _, err = row.Value("Ride Name")
	assert.Error(t, err)
}

func TestMonthKey_Less(t *testing.T) {
	assert.True(t, MonthKey{2018, 12}.Less(MonthKey{2019, 1}))
	assert.True(t, MonthKey{2019, 1}.Less(MonthKey{2019, 2}))
	assert.False(t, MonthKey{2019, 2}.Less(MonthKey{2019, 2}))
	assert.Equal(t, "2019-02", MonthKey{2019, 2}.String())
}

func TestMonthlyAggregate_Rides(t *testing.T) {
	agg := &MonthlyAggregate{Rows: []MonthlyRow{
		{Ride: "A", Year: 2019, Month: 1},
		{Ride: "A", Year: 2019, Month: 2},
		{Ride: "B", Year: 2019, Month: 1},
	}}
	assert.Equal(t, []string{"A", "B"}, agg.Rides())
	assert.True(t, agg.HasColumn(ColumnPostedWait))
	assert.False(t, agg.HasColumn("Wait"))
}

func TestFigure_IsPlaceholder(t *testing.T) {
	assert.True(t, Figure{Title: "Exception: boom. Please try again!"}.IsPlaceholder())
	assert.False(t, Figure{Title: "Exception: boom. Please try again!", Series: []Series{{Name: "x"}}}.IsPlaceholder())
	assert.False(t, Figure{Title: "Monthly waits"}.IsPlaceholder())
}
