package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"QuoteLens/internal/domain/models"
	drepo "QuoteLens/internal/domain/repository"
	applogger "QuoteLens/pkg/logger"
)

// WatchlistKey is the single key holding the serialised watchlist.
const WatchlistKey = "stock-analyzer-watchlist"

// WatchlistUseCase keeps the watchlist as one blob and rewrites it whole on every mutation.
// The mutex serialises read-modify-write within this process only.
type WatchlistUseCase struct {
	mu  sync.Mutex
	kv  drepo.KVStore
	l   *applogger.Logger
	now func() time.Time
}

func NewWatchlistUseCase(kv drepo.KVStore, l *applogger.Logger) *WatchlistUseCase {
	return &WatchlistUseCase{kv: kv, l: l, now: time.Now}
}

// Load returns an empty watchlist when the blob is missing, unreadable or malformed.
func (u *WatchlistUseCase) Load(ctx context.Context) models.Watchlist {
	raw, ok, err := u.kv.Get(ctx, WatchlistKey)
	if err != nil {
		u.l.Warn("watchlist read failed", applogger.Error(err))
		return emptyWatchlist()
	}
	if !ok || raw == "" {
		return emptyWatchlist()
	}

	var w models.Watchlist
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		u.l.Warn("watchlist blob is malformed, starting empty", applogger.Error(err))
		return emptyWatchlist()
	}
	if w.Items == nil {
		w.Items = []models.WatchlistItem{}
	}
	return w
}

// Add is idempotent by normalised symbol. A present symbol is returned unchanged without a write.
func (u *WatchlistUseCase) Add(ctx context.Context, symbol, companyName string) (models.Watchlist, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	w := u.Load(ctx)
	if w.Index(symbol) >= 0 {
		return w, nil
	}
	w.Items = append(w.Items, models.WatchlistItem{
		Symbol:      models.NormalizeSymbol(symbol),
		CompanyName: companyName,
		AddedAt:     u.now().UTC(),
	})
	return w, u.save(ctx, &w)
}

// Remove drops symbol if present. The collection is persisted either way.
func (u *WatchlistUseCase) Remove(ctx context.Context, symbol string) (models.Watchlist, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	w := u.Load(ctx)
	if i := w.Index(symbol); i >= 0 {
		w.Items = append(w.Items[:i], w.Items[i+1:]...)
	}
	return w, u.save(ctx, &w)
}

func (u *WatchlistUseCase) Contains(ctx context.Context, symbol string) bool {
	return u.Load(ctx).Index(symbol) >= 0
}

// UpdatePrice sets the last price and change of symbol. An absent symbol still re-persists the list.
func (u *WatchlistUseCase) UpdatePrice(ctx context.Context, symbol string, price, change float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	w := u.Load(ctx)
	if i := w.Index(symbol); i >= 0 {
		p, c := price, change
		w.Items[i].LastPrice = &p
		w.Items[i].PriceChange = &c
	}
	return u.save(ctx, &w)
}

func (u *WatchlistUseCase) save(ctx context.Context, w *models.Watchlist) error {
	w.LastUpdated = u.now().UTC()
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode watchlist: %w", err)
	}
	if err := u.kv.Set(ctx, WatchlistKey, string(b)); err != nil {
		u.l.Error("watchlist write failed", applogger.Error(err))
		return fmt.Errorf("write watchlist: %w", err)
	}
	return nil
}

func emptyWatchlist() models.Watchlist {
	return models.Watchlist{Items: []models.WatchlistItem{}}
}
