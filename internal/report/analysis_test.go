package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econlab/econpipe/internal/timeseries"
	"github.com/econlab/econpipe/pkg/types"
)

func TestYoYChanges(t *testing.T) {
	obs := monthlyObservations(15, func(i int) float64 { return 100 + float64(i) })
	s := timeseries.FromObservations(obs, "CPI")

	dates, changes := yoyChanges(s, 12)
	require.Len(t, changes, 3)
	assert.Equal(t, s.Dates[12], dates[0])
	assert.InDelta(t, 12.0, changes[0], 1e-9) // 112 vs 100
	assert.InDelta(t, 12/101.0*100, changes[1], 1e-9)
}

func TestYoYChangesSkipsZeroBase(t *testing.T) {
	obs := monthlyObservations(14, func(i int) float64 {
		if i == 0 {
			return 0
		}
		return float64(i)
	})
	s := timeseries.FromObservations(obs, "X")

	dates, changes := yoyChanges(s, 12)
	require.Len(t, changes, 1) // index 12 has a zero base and is dropped
	assert.Equal(t, s.Dates[13], dates[0])
}

func TestYoYChangesTooShort(t *testing.T) {
	obs := monthlyObservations(12, func(i int) float64 { return float64(i) })
	dates, changes := yoyChanges(timeseries.FromObservations(obs, "X"), 12)
	assert.Nil(t, dates)
	assert.Nil(t, changes)
}

func seriesItem(code, title string, obs []types.Observation) indicatorSeries {
	return indicatorSeries{
		spec:   types.IndicatorSpec{Series: code, Title: title},
		series: timeseries.FromObservations(obs, title),
	}
}

func TestCorrelationMatrix(t *testing.T) {
	up := monthlyObservations(10, func(i int) float64 { return float64(i) })
	down := monthlyObservations(10, func(i int) float64 { return -float64(i) })

	labels, matrix, joined := correlationMatrix([]indicatorSeries{
		seriesItem("A", "Series A", up),
		seriesItem("B", "Series B", down),
	})
	require.Equal(t, 10, joined)
	assert.Equal(t, []string{"Series A", "Series B"}, labels)
	assert.InDelta(t, 1.0, matrix[0][0], 1e-12)
	assert.InDelta(t, 1.0, matrix[1][1], 1e-12)
	assert.InDelta(t, -1.0, matrix[0][1], 1e-9)
	assert.InDelta(t, matrix[0][1], matrix[1][0], 1e-12)
}

func TestCorrelationMatrixInnerJoin(t *testing.T) {
	a := monthlyObservations(10, func(i int) float64 { return float64(i) })
	b := monthlyObservations(10, func(i int) float64 { return float64(i) })
	// Shift B five months forward so only five dates overlap.
	for i := range b {
		b[i].Date = b[i].Date.AddDate(0, 5, 0)
	}

	_, matrix, joined := correlationMatrix([]indicatorSeries{
		seriesItem("A", "A", a),
		seriesItem("B", "B", b),
	})
	assert.Equal(t, 5, joined)
	require.NotNil(t, matrix)
	assert.InDelta(t, 1.0, matrix[0][1], 1e-9)
}

func TestCorrelationMatrixNoOverlap(t *testing.T) {
	a := monthlyObservations(5, func(i int) float64 { return float64(i) })
	b := monthlyObservations(5, func(i int) float64 { return float64(i) })
	for i := range b {
		b[i].Date = b[i].Date.AddDate(10, 0, 0)
	}

	_, matrix, joined := correlationMatrix([]indicatorSeries{
		seriesItem("A", "A", a),
		seriesItem("B", "B", b),
	})
	assert.Equal(t, 0, joined)
	assert.Nil(t, matrix)
}

func TestDateKeyNormalizesLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	a := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 9, 19, 0, 0, 0, est) // same instant
	assert.Equal(t, dateKey(a), dateKey(b))
}
