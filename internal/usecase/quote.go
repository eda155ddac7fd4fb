package usecase

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"QuoteLens/internal/domain/models"
	drepo "QuoteLens/internal/domain/repository"
	"QuoteLens/internal/services/fallback"
	"QuoteLens/internal/services/features"
	applogger "QuoteLens/pkg/logger"
)

// RegionalSuffix is appended to four-digit symbols before querying the source.
const RegionalSuffix = ".T"

var fourDigits = regexp.MustCompile(`^[0-9]{4}$`)

// QuerySymbol normalises user input into the symbol sent to the quote source.
func QuerySymbol(input string) string {
	s := models.NormalizeSymbol(input)
	if fourDigits.MatchString(s) {
		return s + RegionalSuffix
	}
	return s
}

// QuoteUseCase resolves quotes from the remote source and degrades to synthetic data on any failure.
type QuoteUseCase struct {
	src      drepo.QuoteSource
	gen      *fallback.Generator
	metrics  drepo.Metrics
	recorder *QuoteRecorder
	l        *applogger.Logger
	demo     bool
	now      func() time.Time
}

type QuoteOption func(*QuoteUseCase)

// WithRecorder archives every successful remote quote.
func WithRecorder(r *QuoteRecorder) QuoteOption {
	return func(u *QuoteUseCase) { u.recorder = r }
}

// WithDemoKey marks the source as running on the public demo credential.
func WithDemoKey(demo bool) QuoteOption {
	return func(u *QuoteUseCase) { u.demo = demo }
}

// WithNow overrides the clock used for period filtering.
func WithNow(now func() time.Time) QuoteOption {
	return func(u *QuoteUseCase) { u.now = now }
}

func NewQuoteUseCase(src drepo.QuoteSource, gen *fallback.Generator, metrics drepo.Metrics, l *applogger.Logger, opts ...QuoteOption) *QuoteUseCase {
	u := &QuoteUseCase{src: src, gen: gen, metrics: metrics, l: l, now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

// FetchQuote never fails. Remote failures of any kind yield fallback data with IsFallback set.
// The returned Symbol is the caller's input as given.
func (u *QuoteUseCase) FetchQuote(ctx context.Context, symbol string, period drepo.Period) models.QuoteResult {
	start := time.Now()
	query := QuerySymbol(symbol)

	if u.demo {
		u.l.Warn("quote source is using the demo API key, results are limited", applogger.String("symbol", query))
	}

	res, err := u.fetchRemote(ctx, query, period)
	u.metrics.RecordLatency("fetch_quote", time.Since(start).Seconds())
	if err != nil {
		reason := drepo.FailureReason(err)
		u.l.Warn("using fallback quote data",
			applogger.String("symbol", query),
			applogger.String("period", string(period)),
			applogger.String("reason", reason),
			applogger.Error(err),
		)
		u.metrics.RecordFallback(reason)
		u.metrics.RecordQuote("fallback", query)

		res = u.gen.Generate(query, period)
		res.Symbol = symbol
		return res
	}

	u.metrics.RecordQuote("remote", query)
	u.metrics.RecordLastPrice(query, res.CurrentPrice)
	if u.recorder != nil {
		u.recorder.Record(ctx, &models.QuoteEvent{
			Symbol:      models.NormalizeSymbol(symbol),
			QuerySymbol: query,
			Period:      string(period),
			CompanyName: res.CompanyName,
			Prices:      res.Prices,
			FetchedAt:   time.Now().UTC(),
		})
	}
	res.Symbol = symbol
	return res
}

// fetchRemote runs both lookups concurrently and fails if either fails.
func (u *QuoteUseCase) fetchRemote(ctx context.Context, query string, period drepo.Period) (models.QuoteResult, error) {
	var (
		name   string
		series models.PriceSeries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := u.src.CompanyName(gctx, query)
		if err != nil {
			return fmt.Errorf("company name: %w", err)
		}
		name = n
		return nil
	})
	g.Go(func() error {
		s, err := u.src.DailySeries(gctx, query)
		if err != nil {
			return fmt.Errorf("daily series: %w", err)
		}
		series = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.QuoteResult{}, err
	}

	filtered := features.FilterByPeriod(series, period, u.now())
	if len(filtered) == 0 {
		return models.QuoteResult{}, fmt.Errorf("%s %s: %w", query, period, drepo.ErrNoData)
	}
	if name == "" {
		name = fallback.CompanyName(query)
	}
	return models.NewQuoteResult(query, name, filtered, false), nil
}
