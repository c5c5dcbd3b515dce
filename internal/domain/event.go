package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseRawEvent decodes and validates the ClimateReading carried by a raw
// event. Unknown fields are ignored. Errors wrap ErrInvalidReading.
func ParseRawEvent(raw RawEvent) (ClimateReading, error) {
	var r ClimateReading
	if err := json.Unmarshal(raw.Value, &r); err != nil {
		return ClimateReading{}, fmt.Errorf("%w: parse raw event: %w", ErrInvalidReading, err)
	}
	if err := ValidateReading(r); err != nil {
		return ClimateReading{}, err
	}
	return r, nil
}

// MessageKey is the partitioning key for a published report: the region when
// present so one region's reports stay ordered, otherwise the report ID.
func (r RiskReport) MessageKey() string {
	if r.Region != "" {
		return r.Region
	}
	return r.ID
}
