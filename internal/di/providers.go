package di

import (
	"context"
	"fmt"
	"time"

	"QuoteLens/internal/domain/repository"
	"QuoteLens/internal/handler/api"
	mid "QuoteLens/internal/middleware"
	internalrepo "QuoteLens/internal/repository"
	"QuoteLens/internal/scheduler"
	"QuoteLens/internal/service/alphavantage"
	svccache "QuoteLens/internal/service/cache"
	"QuoteLens/internal/service/finnhub"
	"QuoteLens/internal/service/ratelimit"
	"QuoteLens/internal/services/fallback"
	"QuoteLens/internal/usecase"
	"QuoteLens/pkg/cache"
	pkgch "QuoteLens/pkg/clickhouse"
	"QuoteLens/pkg/config"
	xhttp "QuoteLens/pkg/http"
	pkgkafka "QuoteLens/pkg/kafka"
	applogger "QuoteLens/pkg/logger"
	"QuoteLens/pkg/metrics"
	"QuoteLens/pkg/server"

	kafkago "github.com/segmentio/kafka-go"
)

const archiveTable = "daily_closes"

// Optional subsystems that are switched off in the config are provided as nil.

func needsRedis(cfg *config.Config) bool {
	return cfg.Store.Backend == "redis" || cfg.Quotes.Cache.Backend == "redis"
}

func needsClickHouse(cfg *config.Config) bool {
	return cfg.Archive.Backend == usecase.ArchiveClickHouse || cfg.Archive.Consume
}

// ProvideRedisCache connects to Redis when the store or the quote cache uses it.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, func(), error) {
	if !needsRedis(cfg) {
		return nil, func() {}, nil
	}
	rc, err := cache.NewRedisCache(context.Background(),
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, 0),
		cache.WithRedisDialTimeout(cfg.Redis.DialTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideCacheService returns the shared cache used for job locks. Without Redis
// the locks are process-local.
func ProvideCacheService(rc *cache.RedisCache) (cache.Service, func()) {
	if rc != nil {
		return rc, func() {}
	}
	mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(0))
	return mc, func() { _ = mc.Close() }
}

// ProvideKVStore creates the watchlist store for the configured backend.
func ProvideKVStore(cfg *config.Config, rc *cache.RedisCache) (repository.KVStore, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		// the client is closed by the redis cleanup
		return internalrepo.NewCacheKV(rc), func() {}, nil
	case "memory":
		kv := internalrepo.NewCacheKV(cache.NewMemoryCache(cache.WithMemoryMaxSize(0)))
		return kv, func() { _ = kv.Close() }, nil
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		kv, err := internalrepo.NewSQLiteKV(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	}
}

// ProvideBytesCache returns the quote response cache, or nil when caching is off.
func ProvideBytesCache(cfg *config.Config, rc *cache.RedisCache) svccache.BytesCache {
	switch cfg.Quotes.Cache.Backend {
	case "redis":
		return svccache.NewRedisCache(rc.Client(), cache.GenerateKey(cfg.Redis.Prefix, "quotes"))
	case "memory":
		return svccache.NewTTLCache()
	default:
		return nil
	}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQuoteSource creates the Alpha Vantage client, cached when a cache is configured.
func ProvideQuoteSource(cfg *config.Config, bc svccache.BytesCache, l *applogger.Logger) repository.QuoteSource {
	client := alphavantage.NewClient(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.Timeout,
		alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
	)
	if bc == nil {
		return client
	}
	return internalrepo.NewCachedQuoteSource(client, bc, cfg.Quotes.Cache.TTL, l)
}

// ProvideGenerator creates the fallback series generator.
func ProvideGenerator() *fallback.Generator {
	return fallback.NewGenerator()
}

// ProvideClickHouseClient connects to the server's default database and creates the
// archive database. Archive tables are always addressed by qualified name.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !needsClickHouse(cfg) {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase("default"),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		pkgch.WithPool(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns, 0),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, []string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideArchiveStorage creates the ClickHouse archive and its table.
func ProvideArchiveStorage(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) (repository.Storage, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseQuoteStorage(ch, cfg.ClickHouse.Database+"."+archiveTable, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer when quotes are archived through Kafka.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if cfg.Archive.Backend != usecase.ArchiveKafka {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideArchivePublisher creates the Kafka publisher.
func ProvideArchivePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaQuotePublisher(producer, cfg.Kafka.Topic)
}

// ProvideQuoteRecorder creates the archive recorder.
func ProvideQuoteRecorder(pub repository.Publisher, store repository.Storage, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.QuoteRecorder {
	if cfg.Archive.Backend == "none" {
		return nil
	}
	return usecase.NewQuoteRecorder(pub, store, m, cfg.Archive.Backend, l)
}

// ProvideQuoteUseCase creates the quote use case.
func ProvideQuoteUseCase(
	src repository.QuoteSource,
	gen *fallback.Generator,
	m repository.Metrics,
	rec *usecase.QuoteRecorder,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.QuoteUseCase {
	opts := []usecase.QuoteOption{usecase.WithDemoKey(cfg.IsDemoKey())}
	if rec != nil {
		opts = append(opts, usecase.WithRecorder(rec))
	}
	return usecase.NewQuoteUseCase(src, gen, m, l, opts...)
}

// ProvideAnalysisUseCase creates the analysis use case.
func ProvideAnalysisUseCase(quotes *usecase.QuoteUseCase) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(quotes)
}

// ProvideWatchlistUseCase creates the watchlist store.
func ProvideWatchlistUseCase(kv repository.KVStore, l *applogger.Logger) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(kv, l)
}

// ProvideWatchlistRefresher creates the watchlist refresher.
func ProvideWatchlistRefresher(quotes *usecase.QuoteUseCase, wl *usecase.WatchlistUseCase, cfg *config.Config, l *applogger.Logger) *usecase.WatchlistRefresher {
	return usecase.NewWatchlistRefresher(quotes, wl, repository.NormalizePeriod(cfg.Refresh.Period), l)
}

// ProvideRateLimiter creates the per-client quote limiter.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Quotes.RateLimit.RPS, cfg.Quotes.RateLimit.Burst)
}

// ProvideLivePrices creates the Finnhub live price feed.
func ProvideLivePrices(cfg *config.Config, wl *usecase.WatchlistUseCase, m repository.Metrics, l *applogger.Logger) *usecase.LivePrices {
	if !cfg.Live.Enabled {
		return nil
	}
	stream := finnhub.New(cfg.Live.APIKey, cfg.Live.WebSocketURL, cfg.Live.ReconnectDelay, cfg.Live.PingInterval, l)
	return usecase.NewLivePrices(stream, wl, m, l,
		mid.WithMinInterval(cfg.Live.MinInterval),
		mid.WithBufferSize(256),
	)
}

// ProvideKafkaConsumer creates a Kafka consumer when the archive is drained into ClickHouse.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Archive.Consume {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaQuotesHandler creates the archive consumer handler.
func ProvideKafkaQuotesHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaQuotesHandler {
	if !cfg.Archive.Consume || store == nil {
		return nil
	}
	return usecase.NewKafkaQuotesHandler(cfg.Kafka.Topic, store, m)
}

// ProvideScheduler creates the job scheduler, locking through the shared cache.
func ProvideScheduler(c cache.Service, l *applogger.Logger) *scheduler.Scheduler {
	return scheduler.New(l, c)
}

// ProvideHandlers builds every HTTP handler.
func ProvideHandlers(
	l *applogger.Logger,
	quotes *usecase.QuoteUseCase,
	analysis *usecase.AnalysisUseCase,
	archive repository.Storage,
	rl *ratelimit.Limiter,
	wl *usecase.WatchlistUseCase,
	refresher *usecase.WatchlistRefresher,
) []xhttp.Handler {
	return []xhttp.Handler{
		api.NewQuotesEchoHandler(l, quotes, analysis, archive, rl),
		api.NewWatchlistEchoHandler(l, wl, refresher),
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	sched *scheduler.Scheduler,
	refresher *usecase.WatchlistRefresher,
	rl *ratelimit.Limiter,
	live *usecase.LivePrices,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaQuotesHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.HookFuncs{
			After: func(_ context.Context, topic string, _ kafkago.Message, _ []byte, err error) {
				if err != nil {
					l.Debug("archive message failed", applogger.String("topic", topic), applogger.Error(err))
				}
			},
		})
	}
	return server.New(cfg, l, srv, sched, refresher, rl, live, consumer, kh)
}
