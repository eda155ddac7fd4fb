package di

import (
	"QuoteLens/internal/usecase"
	"QuoteLens/pkg/config"
	applogger "QuoteLens/pkg/logger"
)

// Toolkit holds the use cases the command line client drives directly, without
// the HTTP server, scheduler, live feed or archive.
type Toolkit struct {
	Quotes    *usecase.QuoteUseCase
	Analysis  *usecase.AnalysisUseCase
	Watchlist *usecase.WatchlistUseCase
	Refresher *usecase.WatchlistRefresher
}

// InitializeToolkit builds a Toolkit from the same providers as the server.
func InitializeToolkit(cfg *config.Config, l *applogger.Logger) (*Toolkit, func(), error) {
	redisCache, cleanup, err := ProvideRedisCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	kv, cleanupKV, err := ProvideKVStore(cfg, redisCache)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	src := ProvideQuoteSource(cfg, ProvideBytesCache(cfg, redisCache), l)
	quotes := ProvideQuoteUseCase(src, ProvideGenerator(), ProvideMetrics(), nil, cfg, l)
	wl := ProvideWatchlistUseCase(kv, l)

	return &Toolkit{
			Quotes:    quotes,
			Analysis:  ProvideAnalysisUseCase(quotes),
			Watchlist: wl,
			Refresher: ProvideWatchlistRefresher(quotes, wl, cfg, l),
		}, func() {
			cleanupKV()
			cleanup()
		}, nil
}
