// Package timeseries provides the dated series container and frequency
// inference used by the forecasting and reporting surfaces.
package timeseries

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/econlab/econpipe/pkg/types"
)

// Series is a chronologically ordered series of dated values.
type Series struct {
	Dates  []time.Time
	Values []float64
	Name   string
}

// NewSeries creates a series from parallel date and value slices.
func NewSeries(dates []time.Time, values []float64, name string) (*Series, error) {
	if len(dates) != len(values) {
		return nil, errors.New("dates and values must have the same length")
	}
	return &Series{Dates: dates, Values: values, Name: name}, nil
}

// FromObservations builds a series from stored observations.
func FromObservations(obs []types.Observation, name string) *Series {
	s := &Series{
		Dates:  make([]time.Time, len(obs)),
		Values: make([]float64, len(obs)),
		Name:   name,
	}
	for i, o := range obs {
		s.Dates[i] = o.Date
		s.Values[i] = o.Value
	}
	return s
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// SortByDate sorts the series chronologically in place.
func (s *Series) SortByDate() {
	idx := make([]int, s.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Dates[idx[a]].Before(s.Dates[idx[b]])
	})

	dates := make([]time.Time, s.Len())
	values := make([]float64, s.Len())
	for i, j := range idx {
		dates[i] = s.Dates[j]
		values[i] = s.Values[j]
	}
	s.Dates = dates
	s.Values = values
}

// LastDate returns the date of the final observation.
func (s *Series) LastDate() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.Dates[s.Len()-1]
}

// Last returns the final value.
func (s *Series) Last() float64 {
	if s.Len() == 0 {
		return math.NaN()
	}
	return s.Values[s.Len()-1]
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if s.Len() == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(s.Len())
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if s.Len() < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(s.Len()-1)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Median returns the median value of the series.
func (s *Series) Median() float64 {
	if s.Len() == 0 {
		return math.NaN()
	}
	sorted := make([]float64, s.Len())
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Diff calculates the first difference of the series.
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the n-th order difference of the series.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || s.Len() <= n {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, s.Len()-n)
	for i := n; i < s.Len(); i++ {
		values[i-n] = s.Values[i] - s.Values[i-n]
	}

	dates := make([]time.Time, len(values))
	if len(s.Dates) > n {
		copy(dates, s.Dates[n:])
	}

	return &Series{Dates: dates, Values: values, Name: s.Name + "_diff"}
}

// Slice returns a copy of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > s.Len() {
		end = s.Len()
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	dates := make([]time.Time, len(values))
	if len(s.Dates) >= end {
		copy(dates, s.Dates[start:end])
	}

	return &Series{Dates: dates, Values: values, Name: s.Name}
}
