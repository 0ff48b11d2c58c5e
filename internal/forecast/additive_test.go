package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econlab/econpipe/internal/timeseries"
)

// seasonalRamp builds a trending series with an exact additive cycle
// of period 4.
func seasonalRamp(n int) *timeseries.Series {
	pattern := []float64{2, -1, -2, 1}
	dates := make([]time.Time, n)
	vals := make([]float64, n)
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		dates[i] = start.AddDate(0, 3*i, 0)
		vals[i] = 10 + 0.5*float64(i) + pattern[i%4]
	}
	return &timeseries.Series{Dates: dates, Values: vals, Name: "synthetic"}
}

func TestAdditiveFitValidation(t *testing.T) {
	err := NewAdditive(1).Fit(seasonalRamp(40))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "period")

	err = NewAdditive(4).Fit(seasonalRamp(7))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two full cycles")
}

func TestAdditiveForecastBeforeFit(t *testing.T) {
	_, _, _, err := NewAdditive(4).Forecast(4, 0.95)
	require.Error(t, err)
}

func TestAdditiveForecastContinuesPattern(t *testing.T) {
	s := seasonalRamp(40)
	m := NewAdditive(4)
	require.NoError(t, m.Fit(s))

	point, lower, upper, err := m.Forecast(8, 0.95)
	require.NoError(t, err)
	require.Len(t, point, 8)

	pattern := []float64{2, -1, -2, 1}
	for h := 0; h < 8; h++ {
		want := 10 + 0.5*float64(40+h) + pattern[h%4]
		assert.InDelta(t, want, point[h], 2.5, "step %d", h)
		assert.LessOrEqual(t, lower[h], point[h])
		assert.GreaterOrEqual(t, upper[h], point[h])
	}

	// One full cycle later the seasonal term repeats, so consecutive
	// cycles differ by the trend alone.
	for h := 0; h < 4; h++ {
		assert.InDelta(t, 2.0, point[h+4]-point[h], 0.75, "step %d", h)
	}
}

func TestAdditiveForecastArguments(t *testing.T) {
	m := NewAdditive(4)
	require.NoError(t, m.Fit(seasonalRamp(40)))

	_, _, _, err := m.Forecast(0, 0.95)
	require.Error(t, err)

	_, _, _, err = m.Forecast(4, 1.5)
	require.Error(t, err)
}
