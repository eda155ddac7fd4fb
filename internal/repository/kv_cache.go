package repository

import (
	"context"
	"errors"

	domrepo "QuoteLens/internal/domain/repository"
	"QuoteLens/pkg/cache"
)

// CacheKV adapts a cache.Service into a KVStore. Values never expire.
type CacheKV struct {
	c cache.Service
}

func NewCacheKV(c cache.Service) *CacheKV {
	return &CacheKV{c: c}
}

func (s *CacheKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	if err := s.c.Get(ctx, key, &v); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *CacheKV) Set(ctx context.Context, key, value string) error {
	return s.c.Set(ctx, key, value, 0)
}

func (s *CacheKV) Close() error {
	return s.c.Close()
}

var _ domrepo.KVStore = (*CacheKV)(nil)
