package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econlab/econpipe/pkg/types"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewSeriesLengthMismatch(t *testing.T) {
	_, err := NewSeries([]time.Time{day("2026-01-01")}, []float64{1, 2}, "x")
	require.Error(t, err)
}

func TestFromObservations(t *testing.T) {
	obs := []types.Observation{
		{Date: day("2026-01-01"), Value: 3.5},
		{Date: day("2026-02-01"), Value: 3.7},
	}
	s := FromObservations(obs, "UNRATE")

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "UNRATE", s.Name)
	assert.Equal(t, day("2026-02-01"), s.LastDate())
	assert.Equal(t, 3.7, s.Last())
}

func TestSeriesStatistics(t *testing.T) {
	s := &Series{Values: []float64{2, 4, 4, 4, 5, 5, 7, 9}}

	assert.InDelta(t, 5.0, s.Mean(), 1e-9)
	assert.InDelta(t, 4.571428571, s.Variance(), 1e-6)
	assert.InDelta(t, 2.138089935, s.Std(), 1e-6)
	assert.InDelta(t, 4.5, s.Median(), 1e-9)
}

func TestSeriesMedianOddLength(t *testing.T) {
	s := &Series{Values: []float64{9, 1, 5}}
	assert.InDelta(t, 5.0, s.Median(), 1e-9)
}

func TestSeriesDiff(t *testing.T) {
	s := &Series{
		Dates:  []time.Time{day("2026-01-01"), day("2026-02-01"), day("2026-03-01"), day("2026-04-01")},
		Values: []float64{10, 12, 15, 14},
	}

	d := s.Diff()
	require.Equal(t, 3, d.Len())
	assert.Equal(t, []float64{2, 3, -1}, d.Values)
	assert.Equal(t, day("2026-02-01"), d.Dates[0])

	d2 := s.DiffN(2)
	require.Equal(t, 2, d2.Len())
	assert.Equal(t, []float64{5, 2}, d2.Values)
}

func TestSeriesDiffTooShort(t *testing.T) {
	s := &Series{Values: []float64{1}}
	assert.Equal(t, 0, s.Diff().Len())
}

func TestSeriesSlice(t *testing.T) {
	s := &Series{
		Dates:  []time.Time{day("2026-01-01"), day("2026-02-01"), day("2026-03-01")},
		Values: []float64{1, 2, 3},
	}

	sub := s.Slice(1, 3)
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, []float64{2, 3}, sub.Values)
	assert.Equal(t, day("2026-02-01"), sub.Dates[0])

	sub.Values[0] = 99
	assert.Equal(t, 2.0, s.Values[1], "slice must copy, not alias")

	assert.Equal(t, 0, s.Slice(2, 1).Len())
	assert.Equal(t, 3, s.Slice(-5, 99).Len())
}

func TestSortByDate(t *testing.T) {
	s := &Series{
		Dates:  []time.Time{day("2026-03-01"), day("2026-01-01"), day("2026-02-01")},
		Values: []float64{3, 1, 2},
	}
	s.SortByDate()

	assert.Equal(t, []float64{1, 2, 3}, s.Values)
	assert.Equal(t, day("2026-01-01"), s.Dates[0])
	assert.Equal(t, day("2026-03-01"), s.Dates[2])
}
