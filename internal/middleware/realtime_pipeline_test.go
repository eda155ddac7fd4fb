package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"QuoteLens/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordQuote(string, string) {}
func (nopMetrics) RecordFallback(string) {}
func (nopMetrics) RecordError(string) {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64) {}

type recordingProc struct {
	mu    sync.Mutex
	ticks []models.PriceTick
	err   error
}

func (r *recordingProc) Process(_ context.Context, t models.PriceTick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.ticks = append(r.ticks, t)
	return nil
}

func tick(sym string, price float64) models.PriceTick {
	return models.PriceTick{Symbol: sym, Price: price, Timestamp: time.Unix(1700000000, 0)}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, nopMetrics{}, WithMinInterval(10*time.Second))
	now := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	_ = p.Process(ctx, tick("AAPL", 1))
	_ = p.Process(ctx, tick("AAPL", 2))
	_ = p.Process(ctx, tick("MSFT", 3))
	now = now.Add(10 * time.Second)
	_ = p.Process(ctx, tick("AAPL", 4))

	if len(proc.ticks) != 3 {
		t.Fatalf("expected 3 accepted ticks, got %d", len(proc.ticks))
	}
	if proc.ticks[2].Price != 4 {
		t.Fatalf("expected tick after interval to pass, got %+v", proc.ticks[2])
	}
}

func TestPipelineRejectsInvalidTicks(t *testing.T) {
	p := NewRealtimePipeline(&recordingProc{}, nopMetrics{}, WithMinInterval(0))
	ctx := context.Background()
	cases := []models.PriceTick{
		{Price: 1, Timestamp: time.Now()},
		{Symbol: "AAPL", Price: 1},
		{Symbol: "AAPL", Price: 0, Timestamp: time.Now()},
		{Symbol: "AAPL", Price: 1, Volume: -1, Timestamp: time.Now()},
	}
	for i, c := range cases {
		if err := p.Process(ctx, c); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordingProc{err: errors.New("store down")}
	p := NewRealtimePipeline(proc, nopMetrics{}, WithMinInterval(0), WithBufferSize(1))
	ctx := context.Background()

	if err := p.Process(ctx, tick("AAPL", 1)); err == nil {
		t.Fatalf("expected downstream error")
	}
	_ = p.Process(ctx, tick("AAPL", 2))
	if p.Buffered() != 1 {
		t.Fatalf("expected one buffered tick, got %d", p.Buffered())
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, nopMetrics{}, WithMinInterval(0), WithTransform(func(t models.PriceTick) models.PriceTick {
		t.Symbol = "X:" + t.Symbol
		return t
	}))
	_ = p.Process(context.Background(), tick("AAPL", 1))
	if len(proc.ticks) != 1 || proc.ticks[0].Symbol != "X:AAPL" {
		t.Fatalf("transform not applied: %+v", proc.ticks)
	}
}

func TestPipelineStopIdempotent(t *testing.T) {
	p := NewRealtimePipeline(&recordingProc{}, nopMetrics{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	p.Stop()
	p.Stop()
}
