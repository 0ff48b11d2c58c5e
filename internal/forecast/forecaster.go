// Package forecast fits time-series models to economic indicators and
// projects them forward with confidence bands.
package forecast

import (
	"fmt"
	"time"

	"github.com/econlab/econpipe/internal/timeseries"
)

// ModelType identifies a forecasting model family.
type ModelType string

const (
	ModelARIMA    ModelType = "arima"
	ModelAdditive ModelType = "additive"
)

// SupportedModels lists the model families a Forecaster can fit.
func SupportedModels() []ModelType {
	return []ModelType{ModelARIMA, ModelAdditive}
}

// Supported reports whether the model family is known.
func Supported(mt ModelType) bool {
	switch mt {
	case ModelARIMA, ModelAdditive:
		return true
	}
	return false
}

// DefaultConfidenceLevel is the band level used unless overridden.
const DefaultConfidenceLevel = 0.95

// Result is a forecast with its confidence band. Slices are parallel.
type Result struct {
	Model ModelType
	Order *Order // set for ARIMA results
	Level float64
	Dates []time.Time
	Mean  []float64
	Lower []float64
	Upper []float64
}

// Forecaster holds a series and at most one fitted model. Forecast and
// Backtest return a *StateError until one of the Fit methods succeeds.
type Forecaster struct {
	series *timeseries.Series
	freq   timeseries.Frequency
	level  float64

	model    ModelType
	arima    *ARIMA
	additive *AdditiveModel
}

// ForecasterOption configures a Forecaster.
type ForecasterOption func(*Forecaster)

// WithConfidenceLevel overrides the confidence band level.
func WithConfidenceLevel(level float64) ForecasterOption {
	return func(f *Forecaster) {
		f.level = level
	}
}

// NewForecaster wraps a chronologically sorted series. The observation
// cadence is inferred from the dates and drives forecast date
// generation and seasonal period selection.
func NewForecaster(series *timeseries.Series, opts ...ForecasterOption) *Forecaster {
	f := &Forecaster{
		series: series,
		freq:   timeseries.InferFrequency(series.Dates),
		level:  DefaultConfidenceLevel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Frequency returns the inferred observation cadence.
func (f *Forecaster) Frequency() timeseries.Frequency {
	return f.freq
}

// Fitted returns the fitted model family, or "" before fitting.
func (f *Forecaster) Fitted() ModelType {
	return f.model
}

// Fit fits the given model family with default settings: ARIMA by AIC
// grid search, additive with the period implied by the cadence.
func (f *Forecaster) Fit(mt ModelType) error {
	switch mt {
	case ModelARIMA:
		_, err := f.FitAutoARIMA(DefaultMaxP, DefaultMaxD, DefaultMaxQ)
		return err
	case ModelAdditive:
		return f.FitAdditive(0)
	default:
		return &UnsupportedModelError{Model: mt}
	}
}

// FitARIMA fits an ARIMA model with the given order.
func (f *Forecaster) FitARIMA(order Order) error {
	model := NewARIMA(order)
	if err := model.Fit(f.series); err != nil {
		return fmt.Errorf("fit %s: %w", order, err)
	}
	f.arima = model
	f.additive = nil
	f.model = ModelARIMA
	return nil
}

// FitAutoARIMA grid-searches ARIMA orders and keeps the best by AIC.
func (f *Forecaster) FitAutoARIMA(maxP, maxD, maxQ int) (Order, error) {
	model, err := AutoARIMA(f.series, maxP, maxD, maxQ)
	if err != nil {
		return Order{}, err
	}
	f.arima = model
	f.additive = nil
	f.model = ModelARIMA
	return model.Order, nil
}

// FitAdditive fits the seasonal decomposition model. A non-positive
// period uses the one implied by the series cadence; cadences without
// a seasonal cycle cannot carry the model.
func (f *Forecaster) FitAdditive(period int) error {
	if period <= 0 {
		period = f.freq.SeasonalPeriod()
	}
	if period < 2 {
		return &UnsupportedModelError{
			Model:  ModelAdditive,
			Reason: fmt.Sprintf("no seasonal cycle for cadence %q", f.freq),
		}
	}

	model := NewAdditive(period)
	if err := model.Fit(f.series); err != nil {
		return err
	}
	f.additive = model
	f.arima = nil
	f.model = ModelAdditive
	return nil
}

// Forecast projects steps periods past the end of the series.
func (f *Forecaster) Forecast(steps int) (*Result, error) {
	var (
		point, lower, upper []float64
		err                 error
		order               *Order
	)
	switch f.model {
	case ModelARIMA:
		point, lower, upper, err = f.arima.PredictInterval(steps, f.level)
		o := f.arima.Order
		order = &o
	case ModelAdditive:
		point, lower, upper, err = f.additive.Forecast(steps, f.level)
	default:
		return nil, &StateError{Op: "forecast"}
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Model: f.model,
		Order: order,
		Level: f.level,
		Dates: timeseries.ForecastDates(f.series.LastDate(), f.freq, steps),
		Mean:  point,
		Lower: lower,
		Upper: upper,
	}, nil
}
