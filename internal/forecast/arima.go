package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/econlab/econpipe/internal/timeseries"
)

// Order is the (p, d, q) specification of an ARIMA model.
type Order struct {
	P int
	D int
	Q int
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// ARIMA is an autoregressive integrated moving average model estimated
// by conditional sum of squares.
type ARIMA struct {
	Order     Order
	AR        []float64
	MA        []float64
	Intercept float64
	Variance  float64
	LogLik    float64
	AIC       float64
	AICc      float64
	BIC       float64

	fitted    bool
	diffed    []float64
	residuals []float64
	// Tail value of each successively differenced series, indexed by
	// differencing level. Seeds the integration back to level scale.
	tails []float64
}

// NewARIMA creates an unfitted model with the given order.
func NewARIMA(order Order) *ARIMA {
	return &ARIMA{
		Order: order,
		AR:    make([]float64, order.P),
		MA:    make([]float64, order.Q),
	}
}

// Fit estimates the model parameters from the series.
func (m *ARIMA) Fit(series *timeseries.Series) error {
	need := m.Order.P + m.Order.D + m.Order.Q + 10
	if series.Len() < need {
		return fmt.Errorf("%s needs at least %d observations, have %d", m.Order, need, series.Len())
	}

	diffed := series
	m.tails = make([]float64, m.Order.D)
	for i := 0; i < m.Order.D; i++ {
		m.tails[i] = diffed.Last()
		diffed = diffed.Diff()
		if diffed.Len() == 0 {
			return errors.New("differencing produced an empty series")
		}
	}
	m.diffed = diffed.Values

	if err := m.fitCSS(); err != nil {
		return err
	}
	m.informationCriteria()
	m.fitted = true
	return nil
}

// fitCSS estimates parameters by conditional sum of squares: Yule-Walker
// starting values for the AR terms, then gradient refinement.
func (m *ARIMA) fitCSS() error {
	y := m.diffed
	n := len(y)
	p, q := m.Order.P, m.Order.Q

	if p == 0 && q == 0 {
		// White noise around the mean.
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		m.Intercept = mean / float64(n)

		m.residuals = make([]float64, n)
		sse := 0.0
		for i, v := range y {
			m.residuals[i] = v - m.Intercept
			sse += m.residuals[i] * m.residuals[i]
		}
		m.Variance = sse / float64(n-1)
		return nil
	}

	if p > 0 {
		if acfVals := acf(y, p); acfVals != nil {
			if phi := yuleWalker(acfVals, p); phi != nil {
				m.AR = phi
			}
		}
	}
	for i := range m.MA {
		m.MA[i] = 0.1
	}

	m.optimizeCSS(y)
	m.finalizeResiduals(y)
	return nil
}

// cssResiduals evaluates the one-step residuals and their sum of
// squares under the current parameters. Residuals before max(p, q)
// are left at zero.
func (m *ARIMA) cssResiduals(y []float64) ([]float64, float64) {
	n := len(y)
	p, q := m.Order.P, m.Order.Q
	start := max(p, q)

	resid := make([]float64, n)
	sse := 0.0
	for t := start; t < n; t++ {
		pred := m.Intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.AR[i] * (y[t-i-1] - m.Intercept)
		}
		for i := 0; i < q && t-i-1 >= 0; i++ {
			pred += m.MA[i] * resid[t-i-1]
		}
		resid[t] = y[t] - pred
		sse += resid[t] * resid[t]
	}
	return resid, sse
}

func (m *ARIMA) optimizeCSS(y []float64) {
	n := len(y)
	p, q := m.Order.P, m.Order.Q
	start := max(p, q)

	const (
		maxIter      = 100
		tolerance    = 1e-6
		learningRate = 0.01
	)

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	m.Intercept = mean / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		resid, sse := m.cssResiduals(y)

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		for t := start; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * resid[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * resid[t] * resid[t-i-1]
			}
		}

		for i := 0; i < p; i++ {
			m.AR[i] -= learningRate * arGrad[i] / float64(n)
			m.AR[i] = math.Max(-0.99, math.Min(0.99, m.AR[i]))
		}
		for i := 0; i < q; i++ {
			m.MA[i] -= learningRate * maGrad[i] / float64(n)
			m.MA[i] = math.Max(-0.99, math.Min(0.99, m.MA[i]))
		}

		if _, newSSE := m.cssResiduals(y); math.Abs(sse-newSSE) < tolerance {
			break
		}
	}
}

// finalizeResiduals computes the residual series kept on the model and
// the degrees-of-freedom corrected variance.
func (m *ARIMA) finalizeResiduals(y []float64) {
	n := len(y)
	p, q := m.Order.P, m.Order.Q
	start := max(p, q)

	m.residuals = make([]float64, n)
	for t := 0; t < n; t++ {
		if t < start {
			m.residuals[t] = y[t] - m.Intercept
			continue
		}
		pred := m.Intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.AR[i] * (y[t-i-1] - m.Intercept)
		}
		for i := 0; i < q && t-i-1 >= 0; i++ {
			pred += m.MA[i] * m.residuals[t-i-1]
		}
		m.residuals[t] = y[t] - pred
	}

	sse := 0.0
	count := 0
	for t := start; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	if count > p+q+1 {
		m.Variance = sse / float64(count-p-q-1)
	} else {
		m.Variance = sse / float64(count)
	}
}

func (m *ARIMA) informationCriteria() {
	n := len(m.residuals)
	k := m.Order.P + m.Order.Q + 1

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	if m.Variance > 0 {
		nf := float64(n)
		m.LogLik = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(m.Variance) - sse/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(-1)
	}

	kf, nf := float64(k), float64(n)
	m.AIC = -2*m.LogLik + 2*kf
	if nf-kf-1 > 0 {
		m.AICc = m.AIC + 2*kf*(kf+1)/(nf-kf-1)
	} else {
		m.AICc = math.Inf(1)
	}
	m.BIC = -2*m.LogLik + kf*math.Log(nf)
}

// Predict forecasts steps values ahead on the original scale.
func (m *ARIMA) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("model must be fitted before prediction")
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	p, q := m.Order.P, m.Order.Q
	y := m.diffed
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResid := make([]float64, n+steps)
	copy(extResid, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.AR[i] * (extY[t-i-1] - m.Intercept)
		}
		// Future residuals have expectation zero, so only observed
		// residuals contribute.
		for i := 0; i < q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.MA[i] * extResid[t-i-1]
		}
		extY[t] = pred
	}

	forecasts := make([]float64, steps)
	copy(forecasts, extY[n:])
	if m.Order.D > 0 {
		forecasts = m.integrate(forecasts)
	}
	return forecasts, nil
}

// integrate undoes the differencing, seeding each pass with the tail
// of the series at that differencing level.
func (m *ARIMA) integrate(forecasts []float64) []float64 {
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for level := m.Order.D - 1; level >= 0; level-- {
		last := m.tails[level]
		for j := range result {
			if j == 0 {
				result[j] += last
			} else {
				result[j] += result[j-1]
			}
		}
	}
	return result
}

// PredictInterval forecasts steps values ahead with a symmetric
// confidence band at the given level (for example 0.95). Widths come
// from the psi-weight representation of the forecast error variance.
func (m *ARIMA) PredictInterval(steps int, level float64) (point, lower, upper []float64, err error) {
	if level <= 0 || level >= 1 {
		return nil, nil, nil, fmt.Errorf("confidence level %v outside (0, 1)", level)
	}
	point, err = m.Predict(steps)
	if err != nil {
		return nil, nil, nil, err
	}

	z := distuv.UnitNormal.Quantile(0.5 + level/2)
	psi := m.psiWeights(steps)

	lower = make([]float64, steps)
	upper = make([]float64, steps)
	cumVar := 0.0
	for h := 0; h < steps; h++ {
		cumVar += psi[h] * psi[h]
		half := z * math.Sqrt(m.Variance*cumVar)
		lower[h] = point[h] - half
		upper[h] = point[h] + half
	}
	return point, lower, upper, nil
}

// psiWeights expands the fitted model into its moving average
// representation, integrated up to the model's differencing order.
func (m *ARIMA) psiWeights(h int) []float64 {
	psi := make([]float64, h)
	if h == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < h; j++ {
		v := 0.0
		if j <= len(m.MA) {
			v = m.MA[j-1]
		}
		for i := 1; i <= len(m.AR) && i <= j; i++ {
			v += m.AR[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	for level := 0; level < m.Order.D; level++ {
		for j := 1; j < h; j++ {
			psi[j] += psi[j-1]
		}
	}
	return psi
}

// Residuals returns a copy of the one-step residuals on the
// differenced scale, or nil before fitting.
func (m *ARIMA) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// acf computes autocorrelations for lags 0..maxLag, or nil for a
// constant series.
func acf(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return nil
	}

	out := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		out[k] = sum / variance
	}
	return out
}

// yuleWalker solves the Yule-Walker equations for AR starting values
// using Levinson-Durbin recursion.
func yuleWalker(acfVals []float64, order int) []float64 {
	if order <= 0 || len(acfVals) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acfVals[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		lambda := acfVals[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acfVals[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}
	return phi
}
