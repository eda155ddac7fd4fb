package usecase

import (
	"context"
	"testing"
	"time"

	"QuoteLens/internal/domain/models"
	mid "QuoteLens/internal/middleware"
	applogger "QuoteLens/pkg/logger"
)

type fakeStream struct {
	subscribed []string
	ticks      chan models.PriceTick
	errs       chan error
	connected  bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{ticks: make(chan models.PriceTick, 8), errs: make(chan error, 1)}
}

func (s *fakeStream) Connect(context.Context) error {
	s.connected = true
	return nil
}

func (s *fakeStream) Subscribe(_ context.Context, symbols []string) error {
	s.subscribed = append(s.subscribed, symbols...)
	return nil
}

func (s *fakeStream) Read(context.Context) (<-chan models.PriceTick, <-chan error) {
	return s.ticks, s.errs
}

func (s *fakeStream) Reconnect(context.Context) error { return nil }

func (s *fakeStream) Close() error {
	s.connected = false
	return nil
}

func (s *fakeStream) IsConnected() bool { return s.connected }

func f64(v float64) *float64 { return &v }

func TestLiveChange(t *testing.T) {
	if got := LiveChange(models.WatchlistItem{}, 10); got != 0 {
		t.Fatalf("no stored price must mean no change, got %v", got)
	}
	// previous close = 105 - 5 = 100
	it := models.WatchlistItem{LastPrice: f64(105), PriceChange: f64(5)}
	if got := LiveChange(it, 110); got != 10 {
		t.Fatalf("change = %v, want 10", got)
	}
	if got := LiveChange(models.WatchlistItem{LastPrice: f64(50)}, 55); got != 5 {
		t.Fatalf("change without stored change = %v, want 5", got)
	}
}

func TestLivePricesAppliesWatchedTicks(t *testing.T) {
	ctx := context.Background()
	wl := newWatchlist(newMemKV())
	_, _ = wl.Add(ctx, "AAPL", "Apple")
	_ = wl.UpdatePrice(ctx, "AAPL", 105, 5)

	lp := NewLivePrices(newFakeStream(), wl, newFakeMetrics(), applogger.NewNop(), mid.WithMinInterval(0))

	if err := lp.Process(ctx, models.PriceTick{Symbol: "AAPL", Price: 110, Timestamp: testNow}); err != nil {
		t.Fatalf("process: %v", err)
	}
	it := wl.Load(ctx).Items[0]
	if *it.LastPrice != 110 || *it.PriceChange != 10 {
		t.Fatalf("live tick not applied: %v %v", *it.LastPrice, *it.PriceChange)
	}

	if err := lp.Process(ctx, models.PriceTick{Symbol: "ZZZ", Price: 1, Timestamp: testNow}); err != nil {
		t.Fatalf("unwatched tick: %v", err)
	}
	if wl.Contains(ctx, "ZZZ") {
		t.Fatalf("unwatched symbols must not be added")
	}
}

func TestLivePricesStartSubscribesAndConsumes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wl := newWatchlist(newMemKV())
	_, _ = wl.Add(ctx, "MSFT", "Microsoft")
	stream := newFakeStream()
	lp := NewLivePrices(stream, wl, newFakeMetrics(), applogger.NewNop(), mid.WithMinInterval(0))

	if err := lp.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(stream.subscribed) != 1 || stream.subscribed[0] != "MSFT" {
		t.Fatalf("subscribed = %v", stream.subscribed)
	}

	_, _ = wl.Add(ctx, "NVDA", "NVIDIA")
	if err := lp.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(stream.subscribed) != 2 || stream.subscribed[1] != "NVDA" {
		t.Fatalf("sync must subscribe only new symbols, got %v", stream.subscribed)
	}

	stream.ticks <- models.PriceTick{Symbol: "MSFT", Price: 420, Timestamp: testNow}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if it := wl.Load(ctx).Items[0]; it.LastPrice != nil && *it.LastPrice == 420 {
			_ = lp.Shutdown(ctx)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("tick never reached the watchlist")
}
