package risk_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
)

var serviceNow = time.Date(2026, time.July, 14, 8, 30, 0, 0, time.UTC)

type stubModel struct {
	mu       sync.Mutex
	outputs  map[string]domain.ModelOutput
	versions []string
	calls    int
	err      error
	train    func() (domain.TrainingMetrics, error)
}

func (m *stubModel) Train() (domain.TrainingMetrics, error) {
	return m.train()
}

func (m *stubModel) Predict(r domain.ClimateReading) (domain.ModelOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.ModelOutput{}, m.err
	}
	out := m.outputs[r.Region]
	if len(m.versions) > 0 {
		out.ModelVersion = m.versions[min(m.calls, len(m.versions))-1]
	}
	return out, nil
}

func (m *stubModel) Info() (domain.ModelInfo, error) {
	return domain.ModelInfo{ModelVersion: "stub"}, nil
}

func (m *stubModel) CheckReadiness(context.Context) error {
	if m.err != nil {
		return m.err
	}
	return nil
}

func (m *stubModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(m risk.Model, metrics *observability.Metrics) *risk.Service {
	return risk.NewService(m, metrics, discardLogger(),
		risk.WithClock(clockwork.NewFakeClockAt(serviceNow)),
		risk.WithNoiseSource(func() rand.Source { return rand.NewPCG(3, 4) }),
	)
}

func validReading(region string) domain.ClimateReading {
	return domain.ClimateReading{Temperature: 33.5, Humidity: 80, Rainfall: 195, AQI: 115, UVIndex: 7.5, Region: region, Month: 10}
}

func stubOutput(version string, overall float64, scores domain.DiseaseScores) domain.ModelOutput {
	return domain.ModelOutput{
		ModelVersion:      version,
		Month:             10,
		OverallScore:      overall,
		OverallLevel:      domain.ScoreToLabel(overall),
		OverallConfidence: 0.91,
		Scores:            scores,
	}
}

func TestAssess_BuildsReport(t *testing.T) {
	var scores domain.DiseaseScores
	scores[domain.VectorBorne] = 64.2
	scores[domain.WaterBorne] = 55.1
	scores[domain.HeatRelated] = 12
	m := &stubModel{outputs: map[string]domain.ModelOutput{"Pune": stubOutput("v1", 47.3, scores)}}
	metrics := observability.NewMetricsForTesting()
	svc := newTestService(m, metrics)

	report, err := svc.Assess(validReading("Pune"))
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "Pune", report.Region)
	assert.Equal(t, 10, report.Month)
	assert.Equal(t, 47.3, report.OverallScore)
	assert.Equal(t, domain.Moderate, report.OverallLevel)
	assert.Equal(t, 0.91, report.OverallConfidence)
	assert.Equal(t, "v1", report.ModelVersion)
	assert.True(t, serviceNow.Equal(report.AssessedAt))

	require.Len(t, report.DiseaseRisks, domain.NumDiseases)
	assert.Equal(t, "Vector-Borne", report.DiseaseRisks[0].Name)

	require.Len(t, report.Recommendations, 2)
	assert.Equal(t, "Vector-Borne", report.Recommendations[0].Disease)
	assert.Equal(t, "Water-Borne", report.Recommendations[1].Disease)

	require.Len(t, report.Forecast, risk.ForecastDays)
	assert.True(t, serviceNow.AddDate(0, 0, 1).Equal(report.Forecast[0].Date))
	assert.Equal(t, risk.Forecast(47.3, serviceNow, rand.NewPCG(3, 4)), report.Forecast)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Predictions.WithLabelValues("Moderate")))
}

func TestAssess_UniqueIDs(t *testing.T) {
	m := &stubModel{outputs: map[string]domain.ModelOutput{"": stubOutput("v1", 20, domain.DiseaseScores{})}}
	svc := newTestService(m, observability.NewMetricsForTesting())

	a, err := svc.Assess(validReading(""))
	require.NoError(t, err)
	b, err := svc.Assess(validReading(""))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAssess_InvalidReading(t *testing.T) {
	m := &stubModel{}
	metrics := observability.NewMetricsForTesting()
	svc := newTestService(m, metrics)

	r := validReading("x")
	r.Humidity = 120
	_, err := svc.Assess(r)

	require.ErrorIs(t, err, domain.ErrInvalidReading)
	assert.Equal(t, 0, m.callCount(), "model must not see invalid readings")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PredictionErrors.WithLabelValues("invalid")))
}

func TestAssess_NotTrained(t *testing.T) {
	m := &stubModel{err: domain.ErrNotTrained}
	metrics := observability.NewMetricsForTesting()
	svc := newTestService(m, metrics)

	_, err := svc.Assess(validReading("x"))

	require.ErrorIs(t, err, domain.ErrNotTrained)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PredictionErrors.WithLabelValues("not_ready")))
	assert.ErrorIs(t, svc.CheckReadiness(context.Background()), domain.ErrNotTrained)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		regionA    string
		regionB    string
		scoreA     float64
		scoreB     float64
		wantWinner string
		wantSide   string
		wantDiff   float64
	}{
		{"a higher", "Chennai", "Shimla", 68.4, 22.1, "Chennai", "Region A", 46.3},
		{"b higher", "Chennai", "Shimla", 30, 30.5, "Shimla", "Region B", 0.5},
		{"tie goes to b", "Chennai", "Shimla", 40, 40, "Shimla", "Region B", 0},
		{"unnamed regions", "", "", 10, 55, "Region B", "Region B", 45},
		{"shared name", "Pune", "Pune", 30, 30, "Pune", "Region B", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs := map[string]domain.ModelOutput{}
			if tt.regionA == tt.regionB {
				// Same key: the stub returns one output, so only the scores
				// at the key matter for the winner.
				outputs[tt.regionA] = stubOutput("v1", tt.scoreB, domain.DiseaseScores{})
			} else {
				outputs[tt.regionA] = stubOutput("v1", tt.scoreA, domain.DiseaseScores{})
				outputs[tt.regionB] = stubOutput("v1", tt.scoreB, domain.DiseaseScores{})
			}
			svc := newTestService(&stubModel{outputs: outputs}, observability.NewMetricsForTesting())

			cmp, err := svc.Compare(validReading(tt.regionA), validReading(tt.regionB))
			require.NoError(t, err)

			if tt.regionA == tt.regionB {
				want := tt.regionA
				if want == "" {
					want = "Region A"
				}
				assert.Equal(t, want, cmp.RegionA.Name)
				assert.Equal(t, tt.wantWinner, cmp.RegionB.Name)
				assert.Equal(t, tt.wantWinner, cmp.HigherRisk)
				assert.Equal(t, 0.0, cmp.ScoreDifference)
				assert.Equal(t, "Region B has higher risk and requires priority intervention", cmp.Recommendation)
				return
			}
			assert.Equal(t, tt.wantWinner, cmp.HigherRisk)
			assert.InDelta(t, tt.wantDiff, cmp.ScoreDifference, 1e-9)
			assert.Equal(t, tt.wantSide+" has higher risk and requires priority intervention", cmp.Recommendation)
			assert.Equal(t, "v1", cmp.ModelVersion)
			assert.True(t, serviceNow.Equal(cmp.ComparedAt))
		})
	}
}

func TestCompare_RescoresAcrossRetrain(t *testing.T) {
	m := &stubModel{
		outputs: map[string]domain.ModelOutput{
			"A": stubOutput("", 50, domain.DiseaseScores{}),
			"B": stubOutput("", 20, domain.DiseaseScores{}),
		},
		versions: []string{"old", "new", "new"},
	}
	svc := newTestService(m, observability.NewMetricsForTesting())

	cmp, err := svc.Compare(validReading("A"), validReading("B"))
	require.NoError(t, err)

	assert.Equal(t, 3, m.callCount())
	assert.Equal(t, "new", cmp.ModelVersion)
	assert.Equal(t, "A", cmp.HigherRisk)
}

func TestCompare_InvalidSide(t *testing.T) {
	svc := newTestService(&stubModel{}, observability.NewMetricsForTesting())
	bad := validReading("B")
	bad.AQI = -1

	_, err := svc.Compare(validReading("A"), bad)
	require.ErrorIs(t, err, domain.ErrInvalidReading)
	assert.Contains(t, err.Error(), "region b")
}

func TestTrain_RecordsOutcome(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	outcome := error(nil)
	m := &stubModel{train: func() (domain.TrainingMetrics, error) {
		return domain.TrainingMetrics{
			ClassifierAccuracy: 0.93,
			TargetRMSE:         map[string]float64{"vector_score": 0.04},
			Duration:           2 * time.Second,
		}, outcome
	}}
	svc := newTestService(m, metrics)

	_, err := svc.Train()
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TrainingRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ModelReady))
	assert.Equal(t, 0.93, testutil.ToFloat64(metrics.ClassifierAccuracy))
	assert.Equal(t, 0.04, testutil.ToFloat64(metrics.RegressorRMSE.WithLabelValues("vector_score")))

	outcome = fmt.Errorf("fit: %w", domain.ErrFitFailed)
	_, err = svc.Train()
	require.ErrorIs(t, err, domain.ErrFitFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TrainingRuns.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ModelReady), "failed retrain keeps the model ready")

	outcome = domain.ErrTrainingInProgress
	_, err = svc.Train()
	require.ErrorIs(t, err, domain.ErrTrainingInProgress)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TrainingRuns.WithLabelValues("busy")))
}

func TestStartTraining_RejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := &stubModel{train: func() (domain.TrainingMetrics, error) {
		close(started)
		<-release
		return domain.TrainingMetrics{}, nil
	}}
	svc := newTestService(m, observability.NewMetricsForTesting())

	require.NoError(t, svc.StartTraining())
	<-started
	assert.True(t, svc.Training())
	assert.ErrorIs(t, svc.StartTraining(), domain.ErrTrainingInProgress)

	close(release)
	svc.Wait()
	assert.False(t, svc.Training())
}

func TestStartTraining_LogsFailure(t *testing.T) {
	m := &stubModel{train: func() (domain.TrainingMetrics, error) {
		return domain.TrainingMetrics{}, errors.New("boom")
	}}
	metrics := observability.NewMetricsForTesting()
	svc := newTestService(m, metrics)

	require.NoError(t, svc.StartTraining())
	svc.Wait()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TrainingRuns.WithLabelValues("failed")))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "invalid", risk.ErrorKind(fmt.Errorf("x: %w", domain.ErrInvalidReading)))
	assert.Equal(t, "not_ready", risk.ErrorKind(domain.ErrNotTrained))
	assert.Equal(t, "busy", risk.ErrorKind(domain.ErrTrainingInProgress))
	assert.Equal(t, "internal", risk.ErrorKind(domain.ErrPrediction))
	assert.Equal(t, "internal", risk.ErrorKind(errors.New("other")))
}

func TestService_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("trains a real model")
	}
	cfg := model.DefaultConfig()
	cfg.Samples = 2000
	cfg.MaxIterations = 150
	reg := model.NewRegistry(cfg, discardLogger(), model.WithClock(clockwork.NewFakeClockAt(serviceNow)))
	svc := newTestService(reg, observability.NewMetricsForTesting())

	_, err := svc.Assess(validReading("Chennai"))
	require.ErrorIs(t, err, domain.ErrNotTrained)

	_, err = svc.Train()
	require.NoError(t, err)
	require.NoError(t, svc.CheckReadiness(context.Background()))

	report, err := svc.Assess(validReading("Chennai"))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, report.OverallLevel, domain.Moderate)
	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, "Vector-Borne", report.Recommendations[0].Disease)
	assert.Equal(t, domain.VectorBorne, report.DiseaseRisks[0].Disease)
	assert.GreaterOrEqual(t, report.DiseaseRisks[0].Score, 50.0)

	info, err := svc.ModelInfo()
	require.NoError(t, err)
	assert.Equal(t, report.ModelVersion, info.ModelVersion)

	mild := domain.ClimateReading{Temperature: 18, Humidity: 45, Rainfall: 120, AQI: 30, UVIndex: 3, Region: "Shimla", Month: 10}
	cmp, err := svc.Compare(validReading("Chennai"), mild)
	require.NoError(t, err)
	assert.Equal(t, "Chennai", cmp.HigherRisk)
	assert.Greater(t, cmp.ScoreDifference, 0.0)
}
