package repository

import (
	"context"
	"time"

	"QuoteLens/internal/domain/models"
)

// QuoteSource is a remote provider of company names and daily closes.
type QuoteSource interface {
	// CompanyName may return an empty string when the provider has no name.
	CompanyName(ctx context.Context, symbol string) (string, error)
	// DailySeries returns the full daily close history ascending by date.
	DailySeries(ctx context.Context, symbol string) (models.PriceSeries, error)
}

// KVStore is a string key-value store holding whole blobs.
type KVStore interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// PriceStream delivers live trade prices for a set of symbols.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, e *models.QuoteEvent) error
	PublishBatch(ctx context.Context, events []*models.QuoteEvent) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, e *models.QuoteEvent) error
	StoreBatch(ctx context.Context, events []*models.QuoteEvent) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.ArchivedClose, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordQuote(source, symbol string)
	RecordFallback(reason string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
