//go:build wireinject
// +build wireinject

package di

import (
	"QuoteLens/pkg/config"
	applogger "QuoteLens/pkg/logger"
	"QuoteLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, l *applogger.Logger) (*server.App, func(), error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideCacheService,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideKVStore,
		ProvideBytesCache,
		ProvideQuoteSource,
		ProvideArchiveStorage,
		ProvideArchivePublisher,

		// Use cases
		ProvideGenerator,
		ProvideQuoteRecorder,
		ProvideQuoteUseCase,
		ProvideAnalysisUseCase,
		ProvideWatchlistUseCase,
		ProvideWatchlistRefresher,
		ProvideLivePrices,
		ProvideKafkaQuotesHandler,

		// Transport and scheduling
		ProvideRateLimiter,
		ProvideScheduler,
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
