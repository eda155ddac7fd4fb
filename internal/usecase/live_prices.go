package usecase

import (
	"context"
	"sync"

	"QuoteLens/internal/domain/models"
	drepo "QuoteLens/internal/domain/repository"
	mid "QuoteLens/internal/middleware"
	applogger "QuoteLens/pkg/logger"
)

// LivePrices feeds live trade prices of watched symbols into the watchlist.
type LivePrices struct {
	stream    drepo.PriceStream
	watchlist *WatchlistUseCase
	metrics   drepo.Metrics
	pipe      *mid.RealtimePipeline
	l         *applogger.Logger

	mu         sync.Mutex
	subscribed map[string]struct{}
}

// NewLivePrices creates a feed. The throttle pipeline wraps the feed itself as its downstream.
func NewLivePrices(stream drepo.PriceStream, watchlist *WatchlistUseCase, metrics drepo.Metrics, l *applogger.Logger, opts ...mid.PipelineOption) *LivePrices {
	lp := &LivePrices{
		stream:     stream,
		watchlist:  watchlist,
		metrics:    metrics,
		l:          l,
		subscribed: make(map[string]struct{}),
	}
	lp.pipe = mid.NewRealtimePipeline(lp, metrics, opts...)
	return lp
}

// IsConnected returns true if the price stream is connected.
func (lp *LivePrices) IsConnected() bool {
	return lp.stream.IsConnected()
}

// Start connects, subscribes the current watchlist and consumes ticks in the background.
func (lp *LivePrices) Start(ctx context.Context) error {
	if err := lp.stream.Connect(ctx); err != nil {
		return err
	}
	if err := lp.Sync(ctx); err != nil {
		return err
	}
	lp.pipe.Start(ctx)
	go lp.consume(ctx)
	return nil
}

// Sync subscribes watchlist symbols that are not yet subscribed.
func (lp *LivePrices) Sync(ctx context.Context) error {
	var fresh []string
	lp.mu.Lock()
	for _, s := range lp.watchlist.Load(ctx).Symbols() {
		if _, ok := lp.subscribed[s]; !ok {
			fresh = append(fresh, s)
		}
	}
	lp.mu.Unlock()
	if len(fresh) == 0 {
		return nil
	}

	if err := lp.stream.Subscribe(ctx, fresh); err != nil {
		return err
	}
	lp.mu.Lock()
	for _, s := range fresh {
		lp.subscribed[s] = struct{}{}
	}
	lp.mu.Unlock()
	return nil
}

func (lp *LivePrices) consume(ctx context.Context) {
	for {
		ticks, errs := lp.stream.Read(ctx)
		err := lp.drain(ctx, ticks, errs)
		if ctx.Err() != nil {
			return
		}
		lp.metrics.RecordError("stream")
		lp.l.Warn("price stream interrupted, reconnecting", applogger.Error(err))
		if err := lp.stream.Reconnect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			lp.l.Error("price stream reconnect failed", applogger.Error(err))
		}
	}
}

// drain forwards ticks until the stream reports an error or closes.
func (lp *LivePrices) drain(ctx context.Context, ticks <-chan models.PriceTick, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if ok && err != nil {
				return err
			}
			errs = nil
		case t, ok := <-ticks:
			if !ok {
				return nil
			}
			lp.metrics.RecordLastPrice(t.Symbol, t.Price)
			if err := lp.pipe.Process(ctx, t); err != nil {
				lp.l.Debug("live tick not applied", applogger.String("symbol", t.Symbol), applogger.Error(err))
			}
		}
	}
}

// Process applies one throttled tick. Unwatched symbols are ignored.
// The change is measured against the previous close implied by the stored price and change.
func (lp *LivePrices) Process(ctx context.Context, t models.PriceTick) error {
	w := lp.watchlist.Load(ctx)
	i := w.Index(t.Symbol)
	if i < 0 {
		return nil
	}
	return lp.watchlist.UpdatePrice(ctx, t.Symbol, t.Price, LiveChange(w.Items[i], t.Price))
}

// LiveChange is price minus the previous close (lastPrice - priceChange).
// Items without a stored price report no change.
func LiveChange(item models.WatchlistItem, price float64) float64 {
	if item.LastPrice == nil {
		return 0
	}
	prevClose := *item.LastPrice
	if item.PriceChange != nil {
		prevClose -= *item.PriceChange
	}
	return price - prevClose
}

// Shutdown stops the pipeline and closes the stream.
func (lp *LivePrices) Shutdown(context.Context) error {
	lp.pipe.Stop()
	return lp.stream.Close()
}

var _ mid.Proc = (*LivePrices)(nil)
