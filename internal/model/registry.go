// Package model fits and serves the risk estimators: one softmax classifier
// for the overall risk band and one least-squares regressor per disease
// category. Both are fitted on the same basis: clipped and standardized
// measurements with their squares, hinge terms at the knots of the labelling
// heuristics, and month indicators.
//
// A [Registry] owns the live [Snapshot]. Training builds a complete snapshot
// off to the side and publishes it with one atomic pointer swap; prediction
// reads whichever snapshot is live and never blocks on training.
package model

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-risk-engine/internal/dataset"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Config controls a training run.
type Config struct {
	Samples       int
	Seed          uint64
	TestFraction  float64
	MaxIterations int
	L2Penalty     float64
	Parallelism   int
}

// DefaultConfig matches the service defaults.
func DefaultConfig() Config {
	return Config{
		Samples:       8000,
		Seed:          42,
		TestFraction:  0.2,
		MaxIterations: 300,
		L2Penalty:     1e-3,
		Parallelism:   4,
	}
}

// Registry trains snapshots and serves predictions from the live one. The
// zero value is not usable; construct with NewRegistry.
type Registry struct {
	cfg        Config
	logger     *slog.Logger
	clock      clockwork.Clock
	synthesize func(seed uint64, n int) []dataset.Sample
	trainMu    sync.Mutex
	current    atomic.Pointer[Snapshot]
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source used for trained-at stamps and the default
// month of readings without one.
func WithClock(c clockwork.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// NewRegistry returns an untrained registry.
func NewRegistry(cfg Config, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		cfg:        cfg,
		logger:     logger,
		clock:      clockwork.NewRealClock(),
		synthesize: dataset.Generate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Train runs a full training cycle and, if every estimator fitted, publishes
// the result. A failed run leaves the previous snapshot live and returns the
// partial metrics with the joined per-target errors. A call that overlaps a
// running cycle fails fast with ErrTrainingInProgress.
func (r *Registry) Train() (domain.TrainingMetrics, error) {
	if !r.trainMu.TryLock() {
		return domain.TrainingMetrics{}, domain.ErrTrainingInProgress
	}
	defer r.trainMu.Unlock()

	start := r.clock.Now()
	r.logger.Info("training started",
		"samples", r.cfg.Samples,
		"seed", r.cfg.Seed,
		"parallelism", r.cfg.Parallelism,
	)

	snap, metrics, err := r.fit()
	metrics.Duration = r.clock.Since(start)
	if err != nil {
		r.logger.Error("training failed",
			"error", err,
			"failed_targets", metrics.FailedTargets,
			"duration", metrics.Duration,
		)
		return metrics, err
	}

	snap.trainedAt = r.clock.Now()
	metrics.TrainedAt = snap.trainedAt
	snap.metrics = metrics
	r.current.Store(snap)

	r.logger.Info("training complete",
		"model_version", snap.id,
		"classifier_accuracy", metrics.ClassifierAccuracy,
		"classifier_converged", metrics.ClassifierConverged,
		"duration", metrics.Duration,
	)
	return metrics, nil
}

// Predict scores a reading with the live snapshot.
func (r *Registry) Predict(reading domain.ClimateReading) (domain.ModelOutput, error) {
	snap := r.current.Load()
	if snap == nil {
		return domain.ModelOutput{}, domain.ErrNotTrained
	}
	return snap.Predict(reading, reading.ResolveMonth(r.clock.Now()))
}

// Snapshot returns the live snapshot, or nil before the first successful run.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// IsTrained reports whether a snapshot is live.
func (r *Registry) IsTrained() bool {
	return r.current.Load() != nil
}

// Info describes the live model.
func (r *Registry) Info() (domain.ModelInfo, error) {
	snap := r.current.Load()
	if snap == nil {
		return domain.ModelInfo{}, domain.ErrNotTrained
	}
	return snap.Info(), nil
}

// CheckReadiness implements the readiness probe: ready once a model is live.
func (r *Registry) CheckReadiness(_ context.Context) error {
	if !r.IsTrained() {
		return domain.ErrNotTrained
	}
	return nil
}
