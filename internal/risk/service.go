package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// Model is the trained estimator set the service interprets.
type Model interface {
	Train() (domain.TrainingMetrics, error)
	Predict(reading domain.ClimateReading) (domain.ModelOutput, error)
	Info() (domain.ModelInfo, error)
	CheckReadiness(ctx context.Context) error
}

// Service validates readings, scores them with the model and assembles risk
// reports. It is safe for concurrent use.
type Service struct {
	model   Model
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
	noise   func() rand.Source

	training atomic.Bool
	wg       sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for report timestamps and forecast dates.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithNoiseSource sets the factory for the forecast noise stream. It is
// called once per report.
func WithNoiseSource(f func() rand.Source) Option {
	return func(s *Service) { s.noise = f }
}

// NewService wires a Service around a model.
func NewService(m Model, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		model:   m,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
		noise: func() rand.Source {
			return rand.NewPCG(rand.Uint64(), rand.Uint64())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess validates a reading and produces its full risk report.
func (s *Service) Assess(reading domain.ClimateReading) (domain.RiskReport, error) {
	start := s.clock.Now()

	out, err := s.predict(reading)
	if err != nil {
		return domain.RiskReport{}, err
	}

	now := s.clock.Now()
	report := domain.RiskReport{
		ID:                uuid.NewString(),
		Region:            reading.Region,
		Month:             out.Month,
		OverallScore:      out.OverallScore,
		OverallLevel:      out.OverallLevel,
		OverallConfidence: out.OverallConfidence,
		DiseaseRisks:      DiseaseRisks(out.Scores, reading),
		Recommendations:   Recommendations(out.Scores, reading),
		Forecast:          Forecast(out.OverallScore, now, s.noise()),
		ModelVersion:      out.ModelVersion,
		AssessedAt:        now,
	}

	s.metrics.PredictionDuration.Observe(s.clock.Since(start).Seconds())
	return report, nil
}

// Comparison sides. They also stand in for unnamed regions.
const (
	sideA = "Region A"
	sideB = "Region B"
)

// Compare scores two readings side by side and names the riskier one. Ties
// go to the second reading. The recommendation refers to the side rather than
// the region name, which may be empty or shared by both readings.
func (s *Service) Compare(a, b domain.ClimateReading) (domain.Comparison, error) {
	outA, err := s.predict(a)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("region a: %w", err)
	}
	outB, err := s.predict(b)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("region b: %w", err)
	}
	// A retrain may publish between the two predictions; rescore a so both
	// sides come from the same model.
	if outA.ModelVersion != outB.ModelVersion {
		if outA, err = s.predict(a); err != nil {
			return domain.Comparison{}, fmt.Errorf("region a: %w", err)
		}
	}

	sumA := summarize(a, outA, sideA)
	sumB := summarize(b, outB, sideB)
	higher, side := sumB, sideB
	if outA.OverallScore > outB.OverallScore {
		higher, side = sumA, sideA
	}

	return domain.Comparison{
		RegionA:         sumA,
		RegionB:         sumB,
		HigherRisk:      higher.Name,
		ScoreDifference: domain.Round(math.Abs(outA.OverallScore-outB.OverallScore), 1),
		Recommendation:  side + " has higher risk and requires priority intervention",
		ModelVersion:    outB.ModelVersion,
		ComparedAt:      s.clock.Now(),
	}, nil
}

// Train runs a training cycle synchronously and records its outcome.
func (s *Service) Train() (domain.TrainingMetrics, error) {
	m, err := s.model.Train()
	switch {
	case errors.Is(err, domain.ErrTrainingInProgress):
		s.metrics.TrainingRuns.WithLabelValues("busy").Inc()
		return m, err
	case err != nil:
		s.metrics.TrainingRuns.WithLabelValues("failed").Inc()
		s.metrics.TrainingDuration.Observe(m.Duration.Seconds())
		return m, err
	}

	s.metrics.TrainingRuns.WithLabelValues("success").Inc()
	s.metrics.TrainingDuration.Observe(m.Duration.Seconds())
	s.metrics.ModelReady.Set(1)
	s.metrics.ClassifierAccuracy.Set(m.ClassifierAccuracy)
	for target, rmse := range m.TargetRMSE {
		s.metrics.RegressorRMSE.WithLabelValues(target).Set(rmse)
	}
	return m, nil
}

// StartTraining launches a training cycle in the background. It returns
// ErrTrainingInProgress if one launched here is still running.
func (s *Service) StartTraining() error {
	if !s.training.CompareAndSwap(false, true) {
		return domain.ErrTrainingInProgress
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.training.Store(false)
		if _, err := s.Train(); err != nil {
			s.logger.Error("background training failed", "error", err)
		}
	}()
	return nil
}

// Training reports whether a background training cycle is running.
func (s *Service) Training() bool { return s.training.Load() }

// Wait blocks until background training has finished.
func (s *Service) Wait() { s.wg.Wait() }

// ModelInfo describes the live model.
func (s *Service) ModelInfo() (domain.ModelInfo, error) {
	return s.model.Info()
}

// SeasonalProfile returns the static monthly risk pattern table.
func (s *Service) SeasonalProfile() domain.SeasonalProfile {
	return SeasonalProfile()
}

// CheckReadiness reports ready once the model can serve predictions.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.model.CheckReadiness(ctx)
}

func (s *Service) predict(reading domain.ClimateReading) (domain.ModelOutput, error) {
	if err := domain.ValidateReading(reading); err != nil {
		s.metrics.PredictionErrors.WithLabelValues(ErrorKind(err)).Inc()
		return domain.ModelOutput{}, err
	}
	out, err := s.model.Predict(reading)
	if err != nil {
		kind := ErrorKind(err)
		s.metrics.PredictionErrors.WithLabelValues(kind).Inc()
		if kind == "internal" {
			s.logger.Error("prediction failed", "error", err, "region", reading.Region)
		}
		return domain.ModelOutput{}, err
	}
	s.metrics.Predictions.WithLabelValues(out.OverallLevel.String()).Inc()
	return out, nil
}

// ErrorKind classifies an error for metrics and transport status mapping.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidReading):
		return "invalid"
	case errors.Is(err, domain.ErrNotTrained):
		return "not_ready"
	case errors.Is(err, domain.ErrTrainingInProgress):
		return "busy"
	default:
		return "internal"
	}
}

func summarize(r domain.ClimateReading, out domain.ModelOutput, fallback string) domain.RegionSummary {
	name := r.Region
	if name == "" {
		name = fallback
	}
	return domain.RegionSummary{
		Name:         name,
		OverallScore: out.OverallScore,
		OverallLevel: out.OverallLevel,
		Scores:       out.Scores,
	}
}
