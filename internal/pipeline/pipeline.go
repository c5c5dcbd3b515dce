// Package pipeline scores climate readings streamed from Kafka and publishes
// the resulting risk reports, one batch at a time.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw readings from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer scores one raw reading.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.RiskReport, error)
}

// BatchLoader publishes reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.RiskReport) error
}

// Pipeline runs the extract-score-publish loop. Offsets are committed only
// after a message's report is published or the message is found unusable.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
	batchSize   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for retry backoff and batch timing.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		batchSize:   batchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the pipeline has published at least one
// report.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any reports yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := backoff{clock: p.clock, next: minBackoff}
	for ctx.Err() == nil {
		if !p.processBatch(ctx, &b) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// processBatch runs one cycle. It returns false when the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, b *backoff) bool {
	start := p.clock.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return b.wait(ctx)
	}
	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	b.reset()

	published, ok := p.scoreAndPublish(ctx, rawBatch, b)
	if !ok {
		return false
	}
	if published > 0 {
		p.metrics.BatchProcessingDuration.Observe(p.clock.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// scoreAndPublish scores each reading, publishes the reports and commits
// offsets. Readings that cannot be scored are logged, counted and committed
// so one bad message never blocks its partition. A failed publish is retried
// with backoff until it succeeds or the context ends; the consumer group does
// not redeliver uncommitted messages, so the scored batch is held until then.
// Nothing is committed for a batch that was never published.
func (p *Pipeline) scoreAndPublish(ctx context.Context, rawBatch []domain.RawEvent, b *backoff) (int, bool) {
	reports := make([]domain.RiskReport, 0, len(rawBatch))
	scored := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		report, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("scoring failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		reports = append(reports, report)
		scored = append(scored, raw)
	}

	if len(reports) == 0 {
		return 0, true
	}

	for {
		err := p.loader.LoadBatch(ctx, reports)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return 0, false
		}
		p.logger.Error("publish batch failed, retrying",
			"error", err,
			"batch_size", len(reports),
			"retry_in", b.next,
		)
		if !b.wait(ctx) {
			return 0, false
		}
	}
	b.reset()
	p.metrics.MessagesProduced.Add(float64(len(reports)))

	for _, raw := range scored {
		p.commitOffset(ctx, raw)
	}
	return len(reports), true
}

func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoff doubles from minBackoff up to maxBackoff between failed cycles.
type backoff struct {
	clock clockwork.Clock
	next  time.Duration
}

func (b *backoff) reset() { b.next = minBackoff }

// wait sleeps for the current delay and advances it. It returns false if the
// context ended first.
func (b *backoff) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	timer := b.clock.NewTimer(b.next)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
	}
	b.next = min(b.next*2, maxBackoff)
	return true
}
