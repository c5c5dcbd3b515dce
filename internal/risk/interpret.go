// Package risk turns raw model output into the report a person reads:
// per-disease labels and confidence, the climate factors behind each score,
// ranked recommendations and a simulated two-week trajectory.
package risk

import (
	"slices"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

const (
	// RecommendationFloor is the minimum disease score that earns a
	// recommendation.
	RecommendationFloor = 40.0

	// MaxActions caps the actions listed per recommendation.
	MaxActions = 4
)

// generalHealth is returned when no category reaches RecommendationFloor.
var generalHealth = domain.Recommendation{
	Disease:  "General Health",
	Icon:     "✅",
	Score:    10,
	Severity: domain.Low,
	Urgency:  domain.UrgencySuccess,
	Actions: []string{
		"Continue regular handwashing hygiene",
		"Stay hydrated and maintain balanced nutrition",
		"Monitor local district health bulletins weekly",
		"Schedule annual comprehensive health checkup",
	},
}

// ContributingFactors evaluates the category's threshold rules in order and
// describes each one that fires. When none fire it returns the generic
// fallback factor, so the result is never empty.
func ContributingFactors(r domain.ClimateReading, d domain.Disease) []string {
	p := d.Profile()
	if p == nil {
		return []string{domain.FallbackFactor}
	}
	var factors []string
	for _, rule := range p.Factors {
		if rule.Applies(r) {
			factors = append(factors, rule.Describe(r))
		}
	}
	if len(factors) == 0 {
		return []string{domain.FallbackFactor}
	}
	return factors
}

// UrgencyFor maps a 0-100 disease score to a recommendation urgency.
func UrgencyFor(score float64) domain.Urgency {
	switch {
	case score >= domain.CriticalThreshold:
		return domain.UrgencyCritical
	case score >= domain.HighThreshold:
		return domain.UrgencyWarning
	default:
		return domain.UrgencyInfo
	}
}

// DiseaseConfidence is the displayed confidence for a 0-100 disease score.
func DiseaseConfidence(score float64) float64 {
	return domain.Round(domain.Clamp(0.78+score/100*0.15, 0, 1), 3)
}

// Rank orders the categories by score, highest first. Ties keep enumeration
// order.
func Rank(scores domain.DiseaseScores) []domain.Disease {
	order := slices.Clone(domain.Diseases[:])
	slices.SortStableFunc(order, func(a, b domain.Disease) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		default:
			return 0
		}
	})
	return order
}

// Recommendations lists prioritized actions for every category scoring at
// least RecommendationFloor, highest score first. With none qualifying it
// returns exactly one General Health entry.
func Recommendations(scores domain.DiseaseScores, r domain.ClimateReading) []domain.Recommendation {
	var recs []domain.Recommendation
	for _, d := range Rank(scores) {
		score := scores[d]
		if score < RecommendationFloor {
			continue
		}
		p := d.Profile()
		actions := make([]string, 0, MaxActions)
		for _, a := range p.Actions {
			if len(actions) == MaxActions {
				break
			}
			actions = append(actions, a(r))
		}
		recs = append(recs, domain.Recommendation{
			Disease:  p.Name,
			Icon:     p.Icon,
			Score:    score,
			Severity: domain.ScoreToLabel(score),
			Urgency:  UrgencyFor(score),
			Actions:  actions,
		})
	}
	if len(recs) == 0 {
		fallback := generalHealth
		fallback.Actions = slices.Clone(generalHealth.Actions)
		return []domain.Recommendation{fallback}
	}
	return recs
}

// DiseaseRisks builds the per-category report entries, highest score first.
func DiseaseRisks(scores domain.DiseaseScores, r domain.ClimateReading) []domain.DiseaseRisk {
	out := make([]domain.DiseaseRisk, 0, domain.NumDiseases)
	for _, d := range Rank(scores) {
		p := d.Profile()
		score := scores[d]
		out = append(out, domain.DiseaseRisk{
			Disease:             d,
			Key:                 p.Key,
			Name:                p.Name,
			Icon:                p.Icon,
			Score:               score,
			Level:               domain.ScoreToLabel(score),
			Confidence:          DiseaseConfidence(score),
			ContributingFactors: ContributingFactors(r, d),
		})
	}
	return out
}
