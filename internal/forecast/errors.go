package forecast

import "fmt"

// StateError reports an operation invoked before the forecaster holds
// a fitted model.
type StateError struct {
	Op string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: no fitted model (call FitARIMA or FitAdditive first)", e.Op)
}

// UnsupportedModelError reports a model the forecaster cannot fit,
// either because the type is unrecognized or the series cannot carry
// it.
type UnsupportedModelError struct {
	Model  ModelType
	Reason string
}

func (e *UnsupportedModelError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("model %q is not supported", e.Model)
	}
	return fmt.Sprintf("model %q is not supported: %s", e.Model, e.Reason)
}
