package forecast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/econlab/econpipe/internal/timeseries"
)

func TestADFWhiteNoiseIsStationary(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	vals := make([]float64, 120)
	for i := range vals {
		vals[i] = r.NormFloat64()
	}

	res := ADF(&timeseries.Series{Values: vals}, 0)
	require.NotNil(t, res)
	assert.True(t, res.IsStationary)
	assert.Less(t, res.Statistic, -2.86)
	assert.Less(t, res.PValue, 0.05)
	assert.Equal(t, 4, res.Lags) // floor(119^(1/3))
	assert.Contains(t, res.CriticalValues, "5%")
}

func TestADFExplosiveGrowthIsNotStationary(t *testing.T) {
	// Compounding growth keeps the level coefficient positive, which
	// can never reject a unit root.
	r := rand.New(rand.NewSource(29))
	vals := make([]float64, 80)
	for i := range vals {
		vals[i] = math.Pow(1.05, float64(i)) + 0.01*r.NormFloat64()
	}

	res := ADF(&timeseries.Series{Values: vals}, 0)
	require.NotNil(t, res)
	assert.False(t, res.IsStationary)
	assert.GreaterOrEqual(t, res.PValue, 0.05)
}

func TestADFTooShort(t *testing.T) {
	assert.Nil(t, ADF(rampSeries(9), 0))
	// Long enough to start but too few usable rows after lagging.
	assert.Nil(t, ADF(rampSeries(12), 0))
}

func TestADFPValueMapping(t *testing.T) {
	tests := []struct {
		stat float64
		want float64
	}{
		{-4.5, 0.001},
		{-3.5, 0.01},
		{-3.0, 0.05},
		{-2.7, 0.10},
		{-2.0, 0.25},
		{-1.8, 0.50},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, adfPValue(tt.stat), 1e-9, "stat %v", tt.stat)
	}
	assert.InDelta(t, 0.905, adfPValue(0), 1e-9)
	assert.InDelta(t, 0.99, adfPValue(10), 1e-9)
}

func TestOLSRecoversExactLine(t *testing.T) {
	n := 20
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		x.Set(i, 1, float64(i))
		y[i] = 2 + 3*float64(i)
	}

	coeffs, se := ols(x, y)
	require.Len(t, coeffs, 2)
	assert.InDelta(t, 2.0, coeffs[0], 1e-6)
	assert.InDelta(t, 3.0, coeffs[1], 1e-6)
	require.Len(t, se, 2)
}
