package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Header keys set on every published report.
const (
	HeaderRiskLevel    = "risk_level"
	HeaderModelVersion = "model_version"
	HeaderAssessedAt   = "assessed_at"
)

// Writer publishes risk reports to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes the reports in a single WriteMessages call. Reports for
// the same region share a key and therefore a partition.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.RiskReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d reports: %w", len(msgs), err)
	}
	w.logger.Debug("batch published", "size", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(report domain.RiskReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize risk report %s: %w", report.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(report.MessageKey()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderRiskLevel, Value: []byte(report.OverallLevel.String())},
			{Key: HeaderModelVersion, Value: []byte(report.ModelVersion)},
			{Key: HeaderAssessedAt, Value: []byte(report.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
