package usecase

import (
	"context"

	drepo "QuoteLens/internal/domain/repository"
	applogger "QuoteLens/pkg/logger"
)

// RefreshReport summarises one refresh pass.
type RefreshReport struct {
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"`
}

// WatchlistRefresher pulls fresh quotes for every watched symbol.
type WatchlistRefresher struct {
	quotes    *QuoteUseCase
	watchlist *WatchlistUseCase
	period    drepo.Period
	l         *applogger.Logger
}

func NewWatchlistRefresher(quotes *QuoteUseCase, watchlist *WatchlistUseCase, period drepo.Period, l *applogger.Logger) *WatchlistRefresher {
	return &WatchlistRefresher{quotes: quotes, watchlist: watchlist, period: period, l: l}
}

// Refresh updates every item with its current price and day change.
// Fallback quotes are skipped so synthetic prices never reach the watchlist.
func (r *WatchlistRefresher) Refresh(ctx context.Context) (RefreshReport, error) {
	rep := RefreshReport{Updated: []string{}, Skipped: []string{}, Failed: []string{}}

	for _, sym := range r.watchlist.Load(ctx).Symbols() {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		q := r.quotes.FetchQuote(ctx, sym, r.period)
		if q.IsFallback {
			rep.Skipped = append(rep.Skipped, sym)
			continue
		}
		if err := r.watchlist.UpdatePrice(ctx, sym, q.CurrentPrice, q.Change()); err != nil {
			r.l.Error("watchlist price update failed", applogger.String("symbol", sym), applogger.Error(err))
			rep.Failed = append(rep.Failed, sym)
			continue
		}
		rep.Updated = append(rep.Updated, sym)
	}

	r.l.Info("watchlist refreshed",
		applogger.Int("updated", len(rep.Updated)),
		applogger.Int("skipped", len(rep.Skipped)),
		applogger.Int("failed", len(rep.Failed)),
	)
	return rep, nil
}
