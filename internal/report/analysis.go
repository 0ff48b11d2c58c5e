package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/econlab/econpipe/internal/timeseries"
)

// yoyChanges computes the percentage change of each observation against the
// one periods earlier. Observations whose base value is zero are skipped.
func yoyChanges(s *timeseries.Series, periods int) ([]time.Time, []float64) {
	if s.Len() <= periods {
		return nil, nil
	}
	dates := make([]time.Time, 0, s.Len()-periods)
	changes := make([]float64, 0, s.Len()-periods)
	for i := periods; i < s.Len(); i++ {
		base := s.Values[i-periods]
		if base == 0 {
			continue
		}
		dates = append(dates, s.Dates[i])
		changes = append(changes, (s.Values[i]/base-1)*100)
	}
	return dates, changes
}

// correlationMatrix inner-joins the series on observation date and returns
// the pairwise Pearson correlations plus the number of shared dates.
func correlationMatrix(items []indicatorSeries) (labels []string, matrix [][]float64, joined int) {
	byDate := make([]map[time.Time]float64, len(items))
	labels = make([]string, len(items))
	for i, item := range items {
		labels[i] = item.spec.Title
		m := make(map[time.Time]float64, item.series.Len())
		for j, d := range item.series.Dates {
			m[dateKey(d)] = item.series.Values[j]
		}
		byDate[i] = m
	}

	var shared []time.Time
	for d := range byDate[0] {
		present := true
		for _, m := range byDate[1:] {
			if _, ok := m[d]; !ok {
				present = false
				break
			}
		}
		if present {
			shared = append(shared, d)
		}
	}
	if len(shared) < 2 {
		return labels, nil, len(shared)
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].Before(shared[j]) })

	vectors := make([][]float64, len(items))
	for i := range items {
		v := make([]float64, len(shared))
		for j, d := range shared {
			v[j] = byDate[i][d]
		}
		vectors[i] = v
	}

	matrix = make([][]float64, len(items))
	for i := range matrix {
		matrix[i] = make([]float64, len(items))
		matrix[i][i] = 1
		for j := 0; j < i; j++ {
			c := stat.Correlation(vectors[i], vectors[j], nil)
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}
	return labels, matrix, len(shared)
}

// dateKey normalizes an observation timestamp to a UTC calendar date so
// join keys compare equal regardless of location.
func dateKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
