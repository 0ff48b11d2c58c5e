package forecast

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/econlab/econpipe/internal/timeseries"
)

// ADFResult holds an augmented Dickey-Fuller unit root test. The null
// hypothesis is a unit root, so IsStationary is set when the p-value
// rejects it at 5%.
type ADFResult struct {
	Statistic      float64
	PValue         float64
	Lags           int
	NObs           int
	CriticalValues map[string]float64
	IsStationary   bool
}

// ADF runs the augmented Dickey-Fuller test with a constant and no
// trend. A non-positive maxLag selects floor((n-1)^(1/3)). Returns nil
// when the series is too short or the regression is degenerate.
func ADF(series *timeseries.Series, maxLag int) *ADFResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := series.Diff()
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	// Regression: delta_y[t] on [1, y[t-1], delta_y[t-1..t-maxLag]].
	k := 2 + maxLag
	y := make([]float64, nObs)
	x := mat.NewDense(nObs, k, nil)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff.Values[t]
		x.Set(i, 0, 1)
		x.Set(i, 1, series.Values[t])
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff.Values[t-j])
		}
	}

	coeffs, se := ols(x, y)
	if len(coeffs) < 2 || len(se) < 2 || se[1] == 0 {
		return nil
	}

	tStat := coeffs[1] / se[1]
	pValue := adfPValue(tStat)

	return &ADFResult{
		Statistic: tStat,
		PValue:    pValue,
		Lags:      maxLag,
		NObs:      nObs,
		CriticalValues: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// ols fits y on the columns of x, returning coefficients and their
// standard errors. Either return may be nil when the design matrix is
// rank deficient.
func ols(x *mat.Dense, y []float64) (coeffs, stderr []float64) {
	n, k := x.Dims()
	if n == 0 || len(y) != n {
		return nil, nil
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil {
		return nil, nil
	}
	coeffs = make([]float64, k)
	for i := range coeffs {
		coeffs[i] = beta.AtVec(i)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	sse := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		sse += r * r
	}

	if n <= k {
		return coeffs, nil
	}

	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	if err := inv.Inverse(&xtx); err != nil {
		return coeffs, nil
	}

	s2 := sse / float64(n-k)
	stderr = make([]float64, k)
	for i := 0; i < k; i++ {
		stderr[i] = math.Sqrt(s2 * inv.At(i, i))
	}
	return coeffs, stderr
}

// adfPValue interpolates the MacKinnon (1994) response surface for the
// constant-only regression.
func adfPValue(stat float64) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}
