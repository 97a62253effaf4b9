package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayValue(t *testing.T) {
	cases := []struct {
		mode string
		want float64
	}{
		{ModeFullDay, 1},
		{ModeFirstHalf, 0.5},
		{ModeSecondHalf, 0.5},
	}
	for _, tc := range cases {
		value, err := DayValue(tc.mode)
		require.NoError(t, err)
		assert.True(t, value.Equal(decimal.NewFromFloat(tc.want)), tc.mode)
	}

	_, err := DayValue("weekend")
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNormalizeDatesComputesValuesServerSide(t *testing.T) {
	dates := []DateItem{
		{Date: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), Mode: ModeFullDay, Value: 99, Status: "approved"},
		{Date: time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC), Mode: ModeFirstHalf},
	}

	total, err := normalizeDates(dates)
	require.NoError(t, err)

	assert.True(t, total.Equal(decimal.NewFromFloat(1.5)))
	assert.Equal(t, 1.0, dates[0].Value, "client value is ignored")
	assert.Equal(t, StatusPending, dates[0].Status, "client status is ignored")
	assert.Equal(t, 0.5, dates[1].Value)
}

func TestNormalizeDatesRejectsEmptyAndDuplicates(t *testing.T) {
	_, err := normalizeDates(nil)
	require.Error(t, err)

	same := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	_, err = normalizeDates([]DateItem{
		{Date: same, Mode: ModeFullDay},
		{Date: same, Mode: ModeFirstHalf},
	})
	require.Error(t, err)
}
