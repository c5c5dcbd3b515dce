package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Assessor scores a validated reading into a full report.
type Assessor interface {
	Assess(reading domain.ClimateReading) (domain.RiskReport, error)
}

// ReportTransformer decodes a raw message into a reading and assesses it.
type ReportTransformer struct {
	assessor Assessor
}

// NewTransformer creates a ReportTransformer backed by the given assessor.
func NewTransformer(a Assessor) *ReportTransformer {
	return &ReportTransformer{assessor: a}
}

func (t *ReportTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.RiskReport, error) {
	reading, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.RiskReport{}, err
	}
	if reading.Region == "" {
		reading.Region = string(raw.Key)
	}
	report, err := t.assessor.Assess(reading)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("assess offset %d: %w", raw.Offset, err)
	}
	return report, nil
}
