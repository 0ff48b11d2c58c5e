package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultTrainFraction is the share of observations used for the
// training split during backtesting.
const DefaultTrainFraction = 0.8

// BacktestResult compares a forecast from a chronological training
// split against the held-out observations.
type BacktestResult struct {
	Model     ModelType
	TrainSize int
	TestSize  int
	MAPE      float64
	MAE       float64
	RMSE      float64
	Dates     []time.Time
	Forecast  []float64
	Actual    []float64
}

// Backtest refits the current model family on the first trainFrac of
// the series and scores its forecast against the remainder. A
// non-positive horizon scores the whole holdout. The refit model
// replaces the one held by the forecaster.
func (f *Forecaster) Backtest(trainFrac float64, horizon int) (*BacktestResult, error) {
	if f.model == "" {
		return nil, &StateError{Op: "backtest"}
	}
	if trainFrac <= 0 || trainFrac >= 1 {
		trainFrac = DefaultTrainFraction
	}

	n := f.series.Len()
	split := int(float64(n) * trainFrac)
	if split < 1 || split >= n {
		return nil, errors.New("series too short to split for backtesting")
	}
	train := f.series.Slice(0, split)
	holdout := f.series.Slice(split, n)

	steps := holdout.Len()
	if horizon > 0 && horizon < steps {
		steps = horizon
	}

	var point []float64
	switch f.model {
	case ModelARIMA:
		model := NewARIMA(f.arima.Order)
		if err := model.Fit(train); err != nil {
			return nil, fmt.Errorf("refit %s on training split: %w", f.arima.Order, err)
		}
		f.arima = model
		p, err := model.Predict(steps)
		if err != nil {
			return nil, err
		}
		point = p
	case ModelAdditive:
		model := NewAdditive(f.additive.Period)
		if err := model.Fit(train); err != nil {
			return nil, fmt.Errorf("refit additive on training split: %w", err)
		}
		f.additive = model
		p, _, _, err := model.Forecast(steps, f.level)
		if err != nil {
			return nil, err
		}
		point = p
	}

	actual := holdout.Values[:steps]
	return &BacktestResult{
		Model:     f.model,
		TrainSize: train.Len(),
		TestSize:  steps,
		MAPE:      MAPE(actual, point),
		MAE:       MAE(actual, point),
		RMSE:      RMSE(actual, point),
		Dates:     holdout.Dates[:steps],
		Forecast:  point,
		Actual:    actual,
	}, nil
}

// MAPE is the mean absolute percentage error. Zero actuals are
// excluded from the mean; with no nonzero actuals the result is NaN.
func MAPE(actual, forecast []float64) float64 {
	n := min(len(actual), len(forecast))
	sum, count := 0.0, 0
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - forecast[i]) / actual[i])
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count) * 100
}

// MAE is the mean absolute error over the overlapping prefix.
func MAE(actual, forecast []float64) float64 {
	n := min(len(actual), len(forecast))
	if n == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Abs(actual[i] - forecast[i])
	}
	return sum / float64(n)
}

// RMSE is the root mean squared error over the overlapping prefix.
func RMSE(actual, forecast []float64) float64 {
	n := min(len(actual), len(forecast))
	if n == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := actual[i] - forecast[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}
