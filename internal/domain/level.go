package domain

import (
	"fmt"
	"math"
)

// RiskLevel is the four-band ordinal risk scale. The zero value is Low.
type RiskLevel int

const (
	Low RiskLevel = iota
	Moderate
	High
	Critical
)

// NumLevels is the number of risk bands and the classifier's class count.
const NumLevels = 4

// Band boundaries on the 0-100 scale. Training labels use the same cut points
// on the unit scale through LevelForUnitScore.
const (
	ModerateThreshold = 25.0
	HighThreshold     = 50.0
	CriticalThreshold = 75.0
)

var levelNames = [NumLevels]string{"Low", "Moderate", "High", "Critical"}

// ScoreToLabel maps a 0-100 score to its risk band. Every label in the system
// goes through this function. NaN maps to Low.
func ScoreToLabel(score float64) RiskLevel {
	switch {
	case math.IsNaN(score), score < ModerateThreshold:
		return Low
	case score < HighThreshold:
		return Moderate
	case score < CriticalThreshold:
		return High
	default:
		return Critical
	}
}

// LevelForUnitScore labels a score expressed on the [0,1] scale.
func LevelForUnitScore(v float64) RiskLevel {
	return ScoreToLabel(v * 100)
}

func (l RiskLevel) String() string {
	if l < Low || l > Critical {
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the four defined bands.
func (l RiskLevel) Valid() bool {
	return l >= Low && l <= Critical
}

// ParseRiskLevel is the inverse of String.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for i, name := range levelNames {
		if name == s {
			return RiskLevel(i), nil
		}
	}
	return Low, fmt.Errorf("unknown risk level %q", s)
}

func (l RiskLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *RiskLevel) UnmarshalText(b []byte) error {
	v, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Urgency classifies a recommendation for presentation.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyInfo     Urgency = "info"
	UrgencySuccess  Urgency = "success"
)
