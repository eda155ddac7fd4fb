package fallback

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"QuoteLens/internal/domain/models"
	"QuoteLens/internal/domain/repository"
	"QuoteLens/internal/services/features"
	"QuoteLens/pkg/util"
)

const (
	// maxDailyMove bounds the per-day relative move in either direction.
	maxDailyMove   = 0.025
	unknownBaseMin = 100.0
	unknownBaseMax = 300.0
)

// Generate builds a synthetic weekday-only random walk covering the period window.
// It never fails and always yields at least one point.
func Generate(symbol string, period repository.Period, now time.Time, rng *rand.Rand) models.QuoteResult {
	symbol = models.NormalizeSymbol(symbol)
	start, end := features.Window(period, now)

	price, ok := BasePrice(symbol)
	if !ok {
		price = unknownBaseMin + rng.Float64()*(unknownBaseMax-unknownBaseMin)
	}

	var prices models.PriceSeries
	for d := util.Day(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if util.IsWeekend(d) {
			continue
		}
		delta := (rng.Float64()*2 - 1) * maxDailyMove
		price = round2(price * (1 + delta))
		prices = append(prices, models.PricePoint{Date: d, Price: price})
	}

	// Only reachable for windows made of a single weekend day.
	if len(prices) == 0 {
		prices = append(prices, models.PricePoint{Date: util.Day(end), Price: round2(price)})
	}

	return models.NewQuoteResult(symbol, CompanyName(symbol), prices, true)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Generator is a concurrency-safe wrapper around Generate with its own clock and RNG.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

type Option func(*Generator)

// WithSeed makes the generated walks reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) Generate(symbol string, period repository.Period) models.QuoteResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Generate(symbol, period, g.now(), g.rng)
}
