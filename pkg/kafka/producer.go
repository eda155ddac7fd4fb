package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// Producer publishes to any topic through one shared writer. Messages with the
// same key land on the same partition unless key hashing is switched off.
type Producer struct {
	writer *kafka.Writer
	comp   string
	now    func() time.Time
}

// Message is one record to publish. Value is sent verbatim for []byte and string
// and JSON-encoded otherwise.
type Message struct {
	Key     []byte
	Value   interface{}
	Headers map[string]string
}

// NewProducer creates a producer. Connections are opened lazily on first write.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	var bal kafka.Balancer = &kafka.LeastBytes{}
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}

	producerMetricsOnce.Do(initProducerMetrics)
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     bal,
			RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
			Compression:  parseCompression(cfg.Compression),
			MaxAttempts:  cfg.MaxAttempts,
			WriteTimeout: cfg.WriteTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			BatchSize:    cfg.BatchSize,
			BatchBytes:   int64(cfg.BatchBytes),
			BatchTimeout: cfg.BatchTimeout,
			Async:        cfg.Async,
		},
		comp: cfg.Compression,
		now:  time.Now,
	}, nil
}

// PublishBatch sends messages to topic in one write. A trace id carried by ctx
// is attached to every message that does not set one itself.
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	start := time.Now()
	msgs, size, err := buildMessages(ctx, topic, messages, p.now())
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, msgs...)
	producerMetrics.observe(topic, p.comp, size, len(msgs), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the producer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func buildMessages(ctx context.Context, topic string, messages []Message, at time.Time) ([]kafka.Message, int64, error) {
	traceID := TraceID(ctx)
	out := make([]kafka.Message, 0, len(messages))
	var size int64
	for _, m := range messages {
		v, err := encodeValue(m.Value)
		if err != nil {
			return nil, 0, err
		}
		km := kafka.Message{Topic: topic, Key: m.Key, Value: v, Time: at}
		for hk, hv := range m.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: hk, Value: []byte(hv)})
		}
		if _, ok := m.Headers[TraceIDHeader]; !ok && traceID != "" {
			km.Headers = append(km.Headers, kafka.Header{Key: TraceIDHeader, Value: []byte(traceID)})
		}
		out = append(out, km)
		size += int64(len(v))
	}
	return out, size, nil
}

func encodeValue(value interface{}) ([]byte, error) {
	switch val := value.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		v, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
		return v, nil
	}
}

// parseCompression falls back to snappy for unknown codecs.
func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Snappy
	}
}

type producerCollectors struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	producerMetrics     *producerCollectors
	producerMetricsOnce sync.Once
)

func initProducerMetrics() {
	producerMetrics = &producerCollectors{
		messages: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quotelens_kafka_producer_messages_total",
			Help: "Messages written to Kafka by result",
		}, []string{"topic", "compression", "result"}),
		bytes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quotelens_kafka_producer_bytes_total",
			Help: "Payload bytes written to Kafka",
		}, []string{"topic", "compression"}),
		latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quotelens_kafka_producer_publish_seconds",
			Help:    "Latency of one batch write",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

func (m *producerCollectors) observe(topic, comp string, bytes int64, count int, dur time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messages.WithLabelValues(topic, comp, result).Add(float64(count))
	if err == nil {
		m.bytes.WithLabelValues(topic, comp).Add(float64(bytes))
	}
	m.latency.WithLabelValues(topic).Observe(dur.Seconds())
}
