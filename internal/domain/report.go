package domain

import "time"

// ModelOutput is the raw result of one prediction against a fitted model.
type ModelOutput struct {
	ModelVersion       string             `json:"model_version"`
	Month              int                `json:"month"`
	OverallScore       float64            `json:"overall_score"`
	OverallLevel       RiskLevel          `json:"overall_label"`
	OverallConfidence  float64            `json:"overall_confidence"`
	ClassProbabilities [NumLevels]float64 `json:"class_probabilities"`

	// Scores are on the 0-100 scale, rounded to one decimal.
	Scores DiseaseScores `json:"disease_scores"`
}

// DiseaseRisk is one category's entry in a report.
type DiseaseRisk struct {
	Disease             Disease   `json:"-"`
	Key                 string    `json:"key"`
	Name                string    `json:"disease"`
	Icon                string    `json:"icon"`
	Score               float64   `json:"risk_score"`
	Level               RiskLevel `json:"risk_label"`
	Confidence          float64   `json:"confidence"`
	ContributingFactors []string  `json:"contributing_factors"`
}

// Recommendation groups prioritized actions for one category.
type Recommendation struct {
	Disease  string    `json:"disease"`
	Icon     string    `json:"icon"`
	Score    float64   `json:"risk_score"`
	Severity RiskLevel `json:"severity"`
	Urgency  Urgency   `json:"type"`
	Actions  []string  `json:"actions"`
}

// ForecastDay is one point of the simulated 14-day trajectory.
type ForecastDay struct {
	Day   int       `json:"day"`
	Date  time.Time `json:"date"`
	Label string    `json:"date_label"`
	Score float64   `json:"risk_score"`
	Level RiskLevel `json:"risk_label"`
}

// RiskReport is the interpreted assessment for a single reading.
type RiskReport struct {
	ID                string           `json:"id"`
	Region            string           `json:"region,omitempty"`
	Month             int              `json:"month"`
	OverallScore      float64          `json:"overall_risk_score"`
	OverallLevel      RiskLevel        `json:"overall_risk_label"`
	OverallConfidence float64          `json:"overall_confidence"`
	DiseaseRisks      []DiseaseRisk    `json:"disease_risks"`
	Recommendations   []Recommendation `json:"recommendations"`
	Forecast          []ForecastDay    `json:"forecast_14day"`
	ModelVersion      string           `json:"model_version"`
	AssessedAt        time.Time        `json:"assessed_at"`
}

// RegionSummary is the condensed view of one side of a comparison.
type RegionSummary struct {
	Name         string        `json:"name"`
	OverallScore float64       `json:"overall_score"`
	OverallLevel RiskLevel     `json:"overall_label"`
	Scores       DiseaseScores `json:"disease_scores"`
}

// Comparison contrasts two readings scored by the same model.
type Comparison struct {
	RegionA         RegionSummary `json:"region_a"`
	RegionB         RegionSummary `json:"region_b"`
	HigherRisk      string        `json:"winner"`
	ScoreDifference float64       `json:"score_difference"`
	Recommendation  string        `json:"recommendation"`
	ModelVersion    string        `json:"model_version"`
	ComparedAt      time.Time     `json:"timestamp"`
}

// TrainingMetrics are the held-out diagnostics of one training run.
type TrainingMetrics struct {
	ModelVersion        string             `json:"model_version,omitempty"`
	Samples             int                `json:"samples"`
	TrainSize           int                `json:"train_size"`
	TestSize            int                `json:"test_size"`
	ClassifierAccuracy  float64            `json:"classifier_accuracy"`
	ClassifierConverged bool               `json:"classifier_converged"`
	TargetRMSE          map[string]float64 `json:"per_target_rmse"`
	FailedTargets       []string           `json:"failed_targets,omitempty"`
	Duration            time.Duration      `json:"duration_ns"`
	TrainedAt           time.Time          `json:"trained_at"`
}

// ModelInfo describes the live model.
type ModelInfo struct {
	ModelVersion string          `json:"model_version"`
	TrainedAt    time.Time       `json:"trained_at"`
	Features     []string        `json:"features"`
	Targets      []string        `json:"targets"`
	Classes      []string        `json:"classes"`
	Metrics      TrainingMetrics `json:"metrics"`
}

// SeasonalProfile is the fixed monthly risk pattern used for charting.
type SeasonalProfile struct {
	Months      []string `json:"months"`
	VectorBorne []int    `json:"vector_borne"`
	WaterBorne  []int    `json:"water_borne"`
	Respiratory []int    `json:"respiratory"`
	HeatRelated []int    `json:"heat_related"`
	SkinEye     []int    `json:"skin_eye"`
}
