package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"QuoteLens/internal/domain/models"
	applogger "QuoteLens/pkg/logger"
)

func TestQuoteRecorderRoutesByBackend(t *testing.T) {
	ctx := context.Background()
	e := &models.QuoteEvent{Symbol: "AAPL", Prices: models.PriceSeries{{Date: testNow, Price: 1}}}

	kafka := &fakeArchive{}
	if err := NewQuoteRecorder(kafka, kafka, newFakeMetrics(), ArchiveKafka, applogger.NewNop()).Process(ctx, e); err != nil {
		t.Fatalf("kafka: %v", err)
	}
	if len(kafka.published) != 1 || len(kafka.stored) != 0 {
		t.Fatalf("kafka backend must publish only")
	}

	ch := &fakeArchive{}
	if err := NewQuoteRecorder(ch, ch, newFakeMetrics(), ArchiveClickHouse, applogger.NewNop()).Process(ctx, e); err != nil {
		t.Fatalf("clickhouse: %v", err)
	}
	if len(ch.stored) != 1 || len(ch.published) != 0 {
		t.Fatalf("clickhouse backend must store only")
	}

	if err := NewQuoteRecorder(nil, nil, newFakeMetrics(), "s3", applogger.NewNop()).Process(ctx, e); err == nil {
		t.Fatalf("unknown backend must fail")
	}
}

func TestQuoteRecorderSkipsFallbackAndSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	arch := &fakeArchive{}
	m := newFakeMetrics()
	r := NewQuoteRecorder(arch, arch, m, ArchiveKafka, applogger.NewNop())

	if err := r.Process(ctx, &models.QuoteEvent{Symbol: "X", IsFallback: true}); err != nil || len(arch.published) != 0 {
		t.Fatalf("fallback events must be skipped")
	}

	arch.err = errors.New("broker down")
	r.Record(ctx, &models.QuoteEvent{Symbol: "AAPL"})
	if m.errs["archive"] != 1 {
		t.Fatalf("expected archive error metric, got %v", m.errs)
	}
}

func TestKafkaQuotesHandler(t *testing.T) {
	ctx := context.Background()
	store := &fakeArchive{}
	m := newFakeMetrics()
	h := NewKafkaQuotesHandler("quotes.daily", store, m)

	if h.Topic() != "quotes.daily" {
		t.Fatalf("topic = %s", h.Topic())
	}

	b, _ := json.Marshal(models.QuoteEvent{Symbol: "AAPL", Period: "1mo", Prices: models.PriceSeries{{Date: testNow, Price: 3}}, FetchedAt: testNow})
	if err := h.Handle(ctx, b); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.stored) != 1 || store.stored[0].Prices[0].Price != 3 {
		t.Fatalf("event not stored: %+v", store.stored)
	}

	if err := h.Handle(ctx, []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := h.Handle(ctx, []byte(`{"period":"1mo"}`)); err == nil {
		t.Fatalf("expected missing symbol error")
	}
	if m.errs["consumer_unmarshal"] != 1 || m.errs["consumer_invalid"] != 1 {
		t.Fatalf("error metrics = %v", m.errs)
	}
}
