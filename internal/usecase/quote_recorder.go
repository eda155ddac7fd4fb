package usecase

import (
	"context"
	"fmt"
	"time"

	"QuoteLens/internal/domain/models"
	drepo "QuoteLens/internal/domain/repository"
	applogger "QuoteLens/pkg/logger"
)

// Archive backends.
const (
	ArchiveKafka      = "kafka"
	ArchiveClickHouse = "clickhouse"
)

// QuoteRecorder archives quote events to the configured backend.
type QuoteRecorder struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	l       *applogger.Logger
}

// NewQuoteRecorder creates a recorder. Only the dependency matching backend is used.
func NewQuoteRecorder(pub drepo.Publisher, store drepo.Storage, metrics drepo.Metrics, backend string, l *applogger.Logger) *QuoteRecorder {
	return &QuoteRecorder{pub: pub, store: store, metrics: metrics, backend: backend, l: l}
}

// Record archives e and only logs failures.
func (r *QuoteRecorder) Record(ctx context.Context, e *models.QuoteEvent) {
	if err := r.Process(ctx, e); err != nil {
		r.l.Warn("quote archive failed",
			applogger.String("backend", r.backend),
			applogger.String("symbol", e.Symbol),
			applogger.Error(err),
		)
	}
}

// Process routes a single event to the configured backend.
func (r *QuoteRecorder) Process(ctx context.Context, e *models.QuoteEvent) error {
	if e == nil {
		return fmt.Errorf("quote event is nil")
	}
	if e.IsFallback {
		return nil
	}
	return r.ProcessBatch(ctx, []*models.QuoteEvent{e})
}

// ProcessBatch routes events to the configured backend in one call.
func (r *QuoteRecorder) ProcessBatch(ctx context.Context, events []*models.QuoteEvent) error {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch r.backend {
	case ArchiveKafka:
		err = r.pub.PublishBatch(ctx, events)
	case ArchiveClickHouse:
		err = r.store.StoreBatch(ctx, events)
	default:
		err = fmt.Errorf("unknown archive backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("archive")
		return fmt.Errorf("archive quotes: %w", err)
	}
	r.metrics.RecordLatency("archive", time.Since(start).Seconds())
	return nil
}

// Close closes the underlying backends.
func (r *QuoteRecorder) Close() {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}
