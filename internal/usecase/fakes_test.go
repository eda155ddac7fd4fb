package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"QuoteLens/internal/domain/models"
	drepo "QuoteLens/internal/domain/repository"
)

var testNow = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC) // a Friday

// fakeSource answers by symbol: INVALID, RATELIMIT, NETERR, EMPTY and STALE simulate failures.
type fakeSource struct {
	mu      sync.Mutex
	queried []string
	name    string
}

func (f *fakeSource) CompanyName(_ context.Context, symbol string) (string, error) {
	f.mu.Lock()
	f.queried = append(f.queried, symbol)
	f.mu.Unlock()
	switch symbol {
	case "INVALID":
		return "", drepo.ErrInvalidSymbol
	case "RATELIMIT":
		return "", drepo.ErrRateLimited
	}
	return f.name, nil
}

func (f *fakeSource) DailySeries(_ context.Context, symbol string) (models.PriceSeries, error) {
	switch symbol {
	case "INVALID":
		return nil, drepo.ErrInvalidSymbol
	case "RATELIMIT":
		return nil, drepo.ErrRateLimited
	case "NETERR":
		return nil, errors.New("dial tcp: connection refused")
	case "EMPTY":
		return models.PriceSeries{}, nil
	case "STALE":
		return models.PriceSeries{{Date: testNow.AddDate(-5, 0, 0), Price: 10}}, nil
	case "SINGLE":
		return models.PriceSeries{{Date: testNow.AddDate(0, 0, -1), Price: 42}}, nil
	}
	var out models.PriceSeries
	for i := 90; i >= 1; i-- {
		out = append(out, models.PricePoint{Date: testNow.AddDate(0, 0, -i).Truncate(24 * time.Hour), Price: float64(200 - i)})
	}
	return out, nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	quotes    map[string]int
	fallbacks map[string]int
	errs      map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{quotes: map[string]int{}, fallbacks: map[string]int{}, errs: map[string]int{}}
}

func (m *fakeMetrics) RecordQuote(source, _ string) {
	m.mu.Lock()
	m.quotes[source]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordFallback(reason string) {
	m.mu.Lock()
	m.fallbacks[reason]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLastPrice(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64) {}

// memKV counts writes so tests can assert whole-blob persistence.
type memKV struct {
	mu     sync.Mutex
	data   map[string]string
	writes int
	getErr error
	setErr error
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.writes++
	m.data[key] = value
	return nil
}

func (m *memKV) Close() error { return nil }

type fakeArchive struct {
	mu        sync.Mutex
	published []*models.QuoteEvent
	stored    []*models.QuoteEvent
	err       error
}

func (a *fakeArchive) Publish(ctx context.Context, e *models.QuoteEvent) error {
	return a.PublishBatch(ctx, []*models.QuoteEvent{e})
}

func (a *fakeArchive) PublishBatch(_ context.Context, events []*models.QuoteEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.published = append(a.published, events...)
	return nil
}

func (a *fakeArchive) Init(context.Context) error { return nil }

func (a *fakeArchive) Store(ctx context.Context, e *models.QuoteEvent) error {
	return a.StoreBatch(ctx, []*models.QuoteEvent{e})
}

func (a *fakeArchive) StoreBatch(_ context.Context, events []*models.QuoteEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.stored = append(a.stored, events...)
	return nil
}

func (a *fakeArchive) Query(context.Context, string, time.Time, time.Time, int) ([]models.ArchivedClose, error) {
	return nil, nil
}

func (a *fakeArchive) Health(context.Context) error { return nil }
func (a *fakeArchive) Close() error { return nil }
