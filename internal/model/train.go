package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-risk-engine/internal/dataset"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// ClassifierTarget names the overall-band classifier in fit errors.
const ClassifierTarget = "overall_label"

// regressorRidge keeps the least squares systems full rank when a hinge column
// never activates in the training rows.
const regressorRidge = 1e-6

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.Samples < 10:
		return fmt.Errorf("samples must be at least 10, got %d", c.Samples)
	case !(c.TestFraction > 0 && c.TestFraction < 1):
		return fmt.Errorf("test fraction must be in (0,1), got %v", c.TestFraction)
	case c.MaxIterations < 1:
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	case c.L2Penalty < 0:
		return fmt.Errorf("l2 penalty must not be negative, got %v", c.L2Penalty)
	case c.Parallelism < 1:
		return fmt.Errorf("parallelism must be positive, got %d", c.Parallelism)
	}
	return nil
}

// fit synthesizes the training set and fits every estimator. The classifier
// and the regressors share one standardizer and one split, and are fitted
// concurrently; each goroutine writes only its own slot.
func (r *Registry) fit() (*Snapshot, domain.TrainingMetrics, error) {
	cfg := r.cfg
	metrics := domain.TrainingMetrics{
		Samples:    cfg.Samples,
		TargetRMSE: make(map[string]float64, domain.NumDiseases),
	}
	if err := cfg.Validate(); err != nil {
		return nil, metrics, fmt.Errorf("%w: %w", domain.ErrFitFailed, err)
	}

	samples := r.synthesize(cfg.Seed, cfg.Samples)
	metrics.Samples = len(samples)

	raw := make([][]float64, len(samples))
	for i, s := range samples {
		raw[i] = s.Features()
	}
	std, err := FitStandardizer(raw)
	if err != nil {
		return nil, metrics, errors.Join(&domain.FitError{Target: "standardizer", Err: err})
	}
	basis := make([][]float64, len(raw))
	for i, row := range raw {
		x, err := basisRow(std, row)
		if err != nil {
			return nil, metrics, errors.Join(&domain.FitError{Target: "standardizer", Err: err})
		}
		basis[i] = x
	}

	split, err := dataset.TrainTestSplit(len(samples), cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, metrics, fmt.Errorf("%w: %w", domain.ErrFitFailed, err)
	}
	metrics.TrainSize = len(split.Train)
	metrics.TestSize = len(split.Test)

	trainX := designMatrix(dataset.Rows(basis, split.Train))
	testX := designMatrix(dataset.Rows(basis, split.Test))
	trainS := dataset.Rows(samples, split.Train)
	testS := dataset.Rows(samples, split.Test)

	var (
		classifier *SoftmaxClassifier
		accuracy   float64
		regressors [domain.NumDiseases]*LinearRegressor
		rmse       [domain.NumDiseases]float64
		// slot 0 is the classifier, slot 1+d the regressor for disease d.
		fitErrs [1 + domain.NumDiseases]error
	)

	// The closures always return nil; failures land in their fitErrs slot so
	// every target is reported, not just the first.
	var g errgroup.Group
	g.SetLimit(cfg.Parallelism)

	g.Go(func() error {
		c, err := FitSoftmax(trainX, levels(trainS), domain.NumLevels, SoftmaxOptions{
			MaxIterations: cfg.MaxIterations,
			L2Penalty:     cfg.L2Penalty,
		})
		if err != nil {
			fitErrs[0] = err
			return nil
		}
		classifier = c
		accuracy = c.Accuracy(testX, levels(testS))
		return nil
	})

	for _, d := range domain.Diseases {
		g.Go(func() error {
			reg, err := FitLinear(trainX, targets(trainS, d), regressorRidge)
			if err != nil {
				fitErrs[1+d] = err
				return nil
			}
			regressors[d] = reg
			rmse[d] = reg.RMSE(testX, targets(testS, d))
			return nil
		})
	}
	g.Wait() //nolint:errcheck // closures report through fitErrs

	var errs []error
	if fitErrs[0] != nil {
		errs = append(errs, &domain.FitError{Target: ClassifierTarget, Err: fitErrs[0]})
		metrics.FailedTargets = append(metrics.FailedTargets, ClassifierTarget)
	} else {
		metrics.ClassifierAccuracy = domain.Round(accuracy, 4)
		metrics.ClassifierConverged = classifier.Converged()
	}
	for _, d := range domain.Diseases {
		if err := fitErrs[1+d]; err != nil {
			errs = append(errs, &domain.FitError{Target: d.Key(), Err: err})
			metrics.FailedTargets = append(metrics.FailedTargets, d.Key())
			continue
		}
		metrics.TargetRMSE[d.Key()] = domain.Round(rmse[d], 4)
		r.logger.Debug("regressor fitted", "target", d.Key(), "rmse", metrics.TargetRMSE[d.Key()])
	}
	if len(errs) > 0 {
		return nil, metrics, errors.Join(errs...)
	}

	snap := &Snapshot{
		id:           uuid.NewString(),
		standardizer: std,
		classifier:   classifier,
		regressors:   regressors,
	}
	metrics.ModelVersion = snap.id
	return snap, metrics, nil
}

func levels(samples []dataset.Sample) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(s.Level)
	}
	return out
}

func targets(samples []dataset.Sample, d domain.Disease) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Scores[d]
	}
	return out
}
