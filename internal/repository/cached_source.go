package repository

import (
	"context"
	"encoding/json"
	"time"

	"QuoteLens/internal/domain/models"
	domrepo "QuoteLens/internal/domain/repository"
	svccache "QuoteLens/internal/service/cache"
	"QuoteLens/pkg/cache"
	applogger "QuoteLens/pkg/logger"
)

const (
	nameKeyPrefix   = "av:name"
	seriesKeyPrefix = "av:series"
)

// CachedQuoteSource memoises successful lookups of an upstream QuoteSource.
// Errors are never cached so a rate-limited lookup is retried on the next call.
type CachedQuoteSource struct {
	src   domrepo.QuoteSource
	cache svccache.BytesCache
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedQuoteSource(src domrepo.QuoteSource, c svccache.BytesCache, ttl time.Duration, l *applogger.Logger) *CachedQuoteSource {
	return &CachedQuoteSource{src: src, cache: c, ttl: ttl, l: l}
}

func (s *CachedQuoteSource) CompanyName(ctx context.Context, symbol string) (string, error) {
	key := cache.GenerateKey(nameKeyPrefix, symbol)
	if b, ok := s.lookup(ctx, key); ok {
		return string(b), nil
	}

	name, err := s.src.CompanyName(ctx, symbol)
	if err != nil {
		return "", err
	}
	s.store(ctx, key, []byte(name))
	return name, nil
}

func (s *CachedQuoteSource) DailySeries(ctx context.Context, symbol string) (models.PriceSeries, error) {
	key := cache.GenerateKey(seriesKeyPrefix, symbol)
	if b, ok := s.lookup(ctx, key); ok {
		var series models.PriceSeries
		if err := json.Unmarshal(b, &series); err == nil && len(series) > 0 {
			return series, nil
		}
	}

	series, err := s.src.DailySeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(series); err == nil {
		s.store(ctx, key, b)
	}
	return series, nil
}

func (s *CachedQuoteSource) lookup(ctx context.Context, key string) ([]byte, bool) {
	b, ok, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		s.l.Warn("quote cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	return b, ok
}

func (s *CachedQuoteSource) store(ctx context.Context, key string, b []byte) {
	if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
		s.l.Warn("quote cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

var _ domrepo.QuoteSource = (*CachedQuoteSource)(nil)
