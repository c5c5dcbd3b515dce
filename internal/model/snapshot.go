package model

import (
	"fmt"
	"maps"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Snapshot is one fully trained model: standardizer, classifier, one
// regressor per disease and the diagnostics of the run that produced it.
// It is never mutated after publication and is safe for concurrent use.
type Snapshot struct {
	id           string
	trainedAt    time.Time
	standardizer *Standardizer
	classifier   *SoftmaxClassifier
	regressors   [domain.NumDiseases]*LinearRegressor
	metrics      domain.TrainingMetrics
}

// ID is the snapshot's model version.
func (s *Snapshot) ID() string { return s.id }

// TrainedAt is when the snapshot was published.
func (s *Snapshot) TrainedAt() time.Time { return s.trainedAt }

// Metrics returns a copy of the training diagnostics.
func (s *Snapshot) Metrics() domain.TrainingMetrics {
	m := s.metrics
	m.TargetRMSE = maps.Clone(s.metrics.TargetRMSE)
	return m
}

// Info describes the snapshot.
func (s *Snapshot) Info() domain.ModelInfo {
	classes := make([]string, domain.NumLevels)
	for i := range classes {
		classes[i] = domain.RiskLevel(i).String()
	}
	return domain.ModelInfo{
		ModelVersion: s.id,
		TrainedAt:    s.trainedAt,
		Features:     append([]string(nil), domain.FeatureNames[:]...),
		Targets:      domain.TargetNames(),
		Classes:      classes,
		Metrics:      s.Metrics(),
	}
}

// Predict scores a reading for an already resolved month.
//
// The overall score blends the predicted band with the classifier's
// certainty: (class/3)*75 + confidence*25. It is labelled with
// domain.ScoreToLabel like every other score.
func (s *Snapshot) Predict(reading domain.ClimateReading, month int) (domain.ModelOutput, error) {
	month = min(max(month, 1), 12)

	x, err := basisRow(s.standardizer, domain.Features(reading, month))
	if err != nil {
		return domain.ModelOutput{}, fmt.Errorf("%w: %w", domain.ErrPrediction, err)
	}

	probs, err := s.classifier.Probabilities(x)
	if err != nil {
		return domain.ModelOutput{}, fmt.Errorf("%w: %w", domain.ErrPrediction, err)
	}
	if !domain.Finite(probs...) {
		return domain.ModelOutput{}, fmt.Errorf("%w: non-finite class probabilities", domain.ErrPrediction)
	}
	class := floats.MaxIdx(probs)
	confidence := probs[class]

	out := domain.ModelOutput{
		ModelVersion:      s.id,
		Month:             month,
		OverallScore:      domain.Round(domain.Clamp(float64(class)/3*75+confidence*25, 0, 100), 1),
		OverallConfidence: domain.Round(domain.Clamp(confidence, 0, 1), 3),
	}
	out.OverallLevel = domain.ScoreToLabel(out.OverallScore)
	copy(out.ClassProbabilities[:], probs)

	for _, d := range domain.Diseases {
		raw, err := s.regressors[d].Predict(x)
		if err != nil {
			return domain.ModelOutput{}, fmt.Errorf("%w: %s: %w", domain.ErrPrediction, d.Key(), err)
		}
		if !domain.Finite(raw) {
			return domain.ModelOutput{}, fmt.Errorf("%w: %s: non-finite output", domain.ErrPrediction, d.Key())
		}
		out.Scores[d] = domain.Round(domain.Clamp(raw, 0, 1)*100, 1)
	}
	return out, nil
}
