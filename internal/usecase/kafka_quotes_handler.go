package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"QuoteLens/internal/domain/models"
	domrepo "QuoteLens/internal/domain/repository"
	pkgkafka "QuoteLens/pkg/kafka"
)

// KafkaQuotesHandler drains archived quote events from Kafka into storage.
type KafkaQuotesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaQuotesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaQuotesHandler {
	return &KafkaQuotesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaQuotesHandler) Topic() string { return h.topic }

// Handle expects a JSON-encoded QuoteEvent.
func (h *KafkaQuotesHandler) Handle(ctx context.Context, b []byte) error {
	var e models.QuoteEvent
	if err := json.Unmarshal(b, &e); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode quote event: %w", err)
	}
	if e.Symbol == "" {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("quote event without symbol")
	}
	if !e.FetchedAt.IsZero() {
		h.metrics.RecordLatency("archive_e2e", time.Since(e.FetchedAt).Seconds())
	}

	start := time.Now()
	err := h.storage.Store(ctx, &e)
	h.metrics.RecordLatency("archive_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaQuotesHandler)(nil)
