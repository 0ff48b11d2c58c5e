package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/stl"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/econlab/econpipe/internal/timeseries"
)

// AdditiveModel forecasts by STL decomposition: the trend is
// extrapolated linearly and the last seasonal cycle repeats. Band
// width is constant at z times the residual deviation.
type AdditiveModel struct {
	Period int

	alpha, beta float64
	seasonal    []float64
	residStd    float64
	n           int
	fitted      bool
}

// NewAdditive creates an unfitted model with the given seasonal period.
func NewAdditive(period int) *AdditiveModel {
	return &AdditiveModel{Period: period}
}

// Fit decomposes the series. At least two full seasonal cycles are
// required.
func (m *AdditiveModel) Fit(series *timeseries.Series) error {
	if m.Period < 2 {
		return fmt.Errorf("seasonal period %d too short to decompose", m.Period)
	}
	n := series.Len()
	if n < 2*m.Period {
		return fmt.Errorf("additive model needs %d observations (two full cycles of %d), have %d", 2*m.Period, m.Period, n)
	}

	// Decompose mutates its input, so hand it a copy.
	vals := make([]float64, n)
	copy(vals, series.Values)

	res := stl.Decompose(vals, m.Period, n-1, stl.Additive(), stl.WithIter(2), stl.WithRobustIter(2))
	if res.Err != nil {
		return fmt.Errorf("stl decompose: %w", res.Err)
	}
	for _, v := range res.Trend {
		if math.IsNaN(v) {
			return errors.New("stl decompose produced NaN trend values")
		}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	m.alpha, m.beta = stat.LinearRegression(xs, res.Trend, nil, false)

	m.seasonal = make([]float64, m.Period)
	copy(m.seasonal, res.Seasonal[n-m.Period:])

	m.residStd = math.Sqrt(stat.Variance(res.Resid, nil))
	m.n = n
	m.fitted = true
	return nil
}

// Forecast projects steps values ahead with a confidence band at the
// given level.
func (m *AdditiveModel) Forecast(steps int, level float64) (point, lower, upper []float64, err error) {
	if !m.fitted {
		return nil, nil, nil, errors.New("model must be fitted before forecasting")
	}
	if steps < 1 {
		return nil, nil, nil, errors.New("steps must be at least 1")
	}
	if level <= 0 || level >= 1 {
		return nil, nil, nil, fmt.Errorf("confidence level %v outside (0, 1)", level)
	}

	z := distuv.UnitNormal.Quantile(0.5 + level/2)
	half := z * m.residStd

	point = make([]float64, steps)
	lower = make([]float64, steps)
	upper = make([]float64, steps)
	for h := 0; h < steps; h++ {
		v := m.alpha + m.beta*float64(m.n+h) + m.seasonal[h%m.Period]
		point[h] = v
		lower[h] = v - half
		upper[h] = v + half
	}
	return point, lower, upper, nil
}
