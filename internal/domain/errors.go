package domain

import "errors"

// Error kinds. Callers branch with errors.Is; every failure path wraps exactly
// one of these.
var (
	// ErrNotTrained is returned by prediction before the first successful
	// training run. It is retryable.
	ErrNotTrained = errors.New("model not trained")

	// ErrInvalidReading marks input rejected at the boundary.
	ErrInvalidReading = errors.New("invalid climate reading")

	// ErrFitFailed marks a training run in which at least one estimator could
	// not be fitted. The previously published model, if any, stays live.
	ErrFitFailed = errors.New("model fit failed")

	// ErrTrainingInProgress is returned when a training run is requested while
	// another one is still running.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrPrediction marks an internal numerical failure while predicting.
	ErrPrediction = errors.New("prediction failed")
)

// FitError reports the failure of a single estimator during training.
type FitError struct {
	Target string
	Err    error
}

func (e *FitError) Error() string {
	return "fit " + e.Target + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *FitError) Unwrap() []error {
	return []error{ErrFitFailed, e.Err}
}
