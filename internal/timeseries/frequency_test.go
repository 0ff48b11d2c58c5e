package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datesEvery(start string, gapDays, n int) []time.Time {
	out := make([]time.Time, n)
	t := day(start)
	for i := 0; i < n; i++ {
		out[i] = t
		t = t.AddDate(0, 0, gapDays)
	}
	return out
}

func TestInferFrequency(t *testing.T) {
	monthStarts := make([]time.Time, 24)
	for i := range monthStarts {
		monthStarts[i] = day("2024-01-01").AddDate(0, i, 0)
	}
	quarterStarts := make([]time.Time, 12)
	for i := range quarterStarts {
		quarterStarts[i] = day("2023-01-01").AddDate(0, 3*i, 0)
	}
	yearStarts := make([]time.Time, 6)
	for i := range yearStarts {
		yearStarts[i] = day("2020-01-01").AddDate(i, 0, 0)
	}

	tests := []struct {
		name  string
		dates []time.Time
		want  Frequency
	}{
		{"daily", datesEvery("2026-01-01", 1, 30), Daily},
		{"weekly", datesEvery("2026-01-02", 7, 20), Weekly},
		{"month starts", monthStarts, MonthStart},
		{"quarter starts", quarterStarts, QuarterStart},
		{"year starts", yearStarts, YearStart},
		{"two points eight days apart", []time.Time{day("2026-01-01"), day("2026-01-09")}, Weekly},
		{"single point", []time.Time{day("2026-01-01")}, Unknown},
		{"empty", nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFrequency(tt.dates))
		})
	}
}

func TestInferFrequencyIrregularFallsBackToMedian(t *testing.T) {
	// Business-daily data skips weekends, so gaps mix 1s and 3s. No
	// band admits both; the median gap of 1 still reads as daily.
	dates := []time.Time{
		day("2026-01-05"), day("2026-01-06"), day("2026-01-07"),
		day("2026-01-08"), day("2026-01-09"), day("2026-01-12"),
		day("2026-01-13"), day("2026-01-14"), day("2026-01-15"),
		day("2026-01-16"), day("2026-01-19"),
	}
	assert.Equal(t, Daily, InferFrequency(dates))
}

func TestInferFrequencyDuplicateDates(t *testing.T) {
	d := day("2026-01-01")
	assert.Equal(t, Unknown, InferFrequency([]time.Time{d, d}))
}

func TestFrequencyNext(t *testing.T) {
	tests := []struct {
		freq Frequency
		from string
		want string
	}{
		{Daily, "2026-02-28", "2026-03-01"},
		{Weekly, "2026-01-01", "2026-01-08"},
		{MonthStart, "2026-01-01", "2026-02-01"},
		{QuarterStart, "2026-01-01", "2026-04-01"},
		{YearStart, "2026-01-01", "2027-01-01"},
		{Unknown, "2026-01-01", "2026-01-02"},
	}
	for _, tt := range tests {
		assert.Equal(t, day(tt.want), tt.freq.Next(day(tt.from)), "freq %q", tt.freq)
	}
}

func TestSeasonalPeriod(t *testing.T) {
	assert.Equal(t, 7, Daily.SeasonalPeriod())
	assert.Equal(t, 52, Weekly.SeasonalPeriod())
	assert.Equal(t, 12, MonthStart.SeasonalPeriod())
	assert.Equal(t, 4, QuarterStart.SeasonalPeriod())
	assert.Equal(t, 0, YearStart.SeasonalPeriod())
	assert.Equal(t, 0, Unknown.SeasonalPeriod())
}

func TestForecastDates(t *testing.T) {
	dates := ForecastDates(day("2026-03-01"), MonthStart, 3)
	require.Len(t, dates, 3)
	assert.Equal(t, day("2026-04-01"), dates[0])
	assert.Equal(t, day("2026-05-01"), dates[1])
	assert.Equal(t, day("2026-06-01"), dates[2])

	assert.Empty(t, ForecastDates(day("2026-03-01"), Daily, 0))
}
