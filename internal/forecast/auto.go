package forecast

import (
	"errors"
	"math"

	"github.com/econlab/econpipe/internal/timeseries"
)

// Default search bounds for AutoARIMA.
const (
	DefaultMaxP = 5
	DefaultMaxD = 2
	DefaultMaxQ = 5
)

// AutoARIMA fits every order on the (p, d, q) grid and returns the
// model with the lowest AIC. Orders that fail to fit are skipped; an
// error is returned only when no order fits at all.
func AutoARIMA(series *timeseries.Series, maxP, maxD, maxQ int) (*ARIMA, error) {
	if maxP < 0 || maxD < 0 || maxQ < 0 {
		return nil, errors.New("search bounds must be non-negative")
	}

	var best *ARIMA
	bestAIC := math.Inf(1)
	for p := 0; p <= maxP; p++ {
		for d := 0; d <= maxD; d++ {
			for q := 0; q <= maxQ; q++ {
				model := NewARIMA(Order{P: p, D: d, Q: q})
				if err := model.Fit(series); err != nil {
					continue
				}
				if model.AIC < bestAIC {
					bestAIC = model.AIC
					best = model
				}
			}
		}
	}
	if best == nil {
		return nil, errors.New("no ARIMA order could be fitted to the series")
	}
	return best, nil
}
