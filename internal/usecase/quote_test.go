package usecase

import (
	"context"
	"testing"
	"time"

	drepo "QuoteLens/internal/domain/repository"
	"QuoteLens/internal/services/fallback"
	applogger "QuoteLens/pkg/logger"
)

func newQuoteUseCase(src *fakeSource, m *fakeMetrics, opts ...QuoteOption) *QuoteUseCase {
	gen := fallback.NewGenerator(fallback.WithSeed(1), fallback.WithClock(func() time.Time { return testNow }))
	opts = append([]QuoteOption{WithNow(func() time.Time { return testNow })}, opts...)
	return NewQuoteUseCase(src, gen, m, applogger.NewNop(), opts...)
}

func TestFetchQuoteSuccess(t *testing.T) {
	m := newFakeMetrics()
	u := newQuoteUseCase(&fakeSource{name: "Apple Inc."}, m)

	q := u.FetchQuote(context.Background(), " aapl ", drepo.Period1Mo)
	if q.IsFallback {
		t.Fatalf("expected remote quote")
	}
	if q.Symbol != " aapl " {
		t.Fatalf("symbol must echo caller input, got %q", q.Symbol)
	}
	if q.CompanyName != "Apple Inc." {
		t.Fatalf("company = %q", q.CompanyName)
	}
	start := testNow.AddDate(0, -1, 0)
	for _, p := range q.Prices {
		if p.Date.Before(start) || p.Date.After(testNow) {
			t.Fatalf("point %v outside 1mo window", p.Date)
		}
	}
	n := len(q.Prices)
	if q.CurrentPrice != q.Prices[n-1].Price || q.PreviousPrice != q.Prices[n-2].Price {
		t.Fatalf("current/previous not derived from the series")
	}
	if m.quotes["remote"] != 1 {
		t.Fatalf("expected remote metric, got %v", m.quotes)
	}
}

func TestFetchQuoteNeverFails(t *testing.T) {
	cases := map[string]string{
		"INVALID":   "invalid_symbol",
		"RATELIMIT": "rate_limited",
		"NETERR":    "source_error",
		"EMPTY":     "no_data",
		"STALE":     "no_data",
	}
	for sym, reason := range cases {
		m := newFakeMetrics()
		u := newQuoteUseCase(&fakeSource{}, m)
		q := u.FetchQuote(context.Background(), sym, drepo.Period3Mo)
		if !q.IsFallback {
			t.Fatalf("%s: expected fallback", sym)
		}
		if len(q.Prices) == 0 {
			t.Fatalf("%s: fallback must not be empty", sym)
		}
		if q.Symbol != sym {
			t.Fatalf("%s: symbol = %q", sym, q.Symbol)
		}
		if q.CompanyName != sym+" Corporation" {
			t.Fatalf("%s: company = %q", sym, q.CompanyName)
		}
		if m.fallbacks[reason] != 1 {
			t.Fatalf("%s: expected fallback reason %s, got %v", sym, reason, m.fallbacks)
		}
	}
}

func TestFetchQuoteFourDigitSymbol(t *testing.T) {
	src := &fakeSource{name: "Toyota Motor Corp"}
	u := newQuoteUseCase(src, newFakeMetrics())

	q := u.FetchQuote(context.Background(), "7203", drepo.Period1Mo)
	if q.Symbol != "7203" {
		t.Fatalf("returned symbol must stay un-suffixed, got %q", q.Symbol)
	}
	if len(src.queried) != 1 || src.queried[0] != "7203.T" {
		t.Fatalf("source must be queried with suffix, got %v", src.queried)
	}
}

func TestQuerySymbol(t *testing.T) {
	cases := map[string]string{
		"aapl":   "AAPL",
		" 7203 ": "7203.T",
		"72031":  "72031",
		"720A":   "720A",
		"BRK.B":  "BRK.B",
	}
	for in, want := range cases {
		if got := QuerySymbol(in); got != want {
			t.Fatalf("QuerySymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetchQuoteSinglePoint(t *testing.T) {
	u := newQuoteUseCase(&fakeSource{name: "Single"}, newFakeMetrics())
	q := u.FetchQuote(context.Background(), "SINGLE", drepo.Period1Mo)
	if q.IsFallback || len(q.Prices) != 1 {
		t.Fatalf("expected one remote point, got %+v", q)
	}
	if q.PreviousPrice != q.CurrentPrice || q.Change() != 0 {
		t.Fatalf("previous must equal current for a single point")
	}
}

func TestFetchQuoteEmptyNameUsesTable(t *testing.T) {
	u := newQuoteUseCase(&fakeSource{}, newFakeMetrics())
	q := u.FetchQuote(context.Background(), "MSFT", drepo.Period1Mo)
	if q.IsFallback {
		t.Fatalf("expected remote quote")
	}
	if q.CompanyName != fallback.CompanyName("MSFT") {
		t.Fatalf("company = %q", q.CompanyName)
	}
}

func TestFetchQuoteRecordsArchive(t *testing.T) {
	arch := &fakeArchive{}
	m := newFakeMetrics()
	rec := NewQuoteRecorder(arch, arch, m, ArchiveKafka, applogger.NewNop())
	u := newQuoteUseCase(&fakeSource{name: "Apple"}, m, WithRecorder(rec))

	u.FetchQuote(context.Background(), "aapl", drepo.Period1Mo)
	u.FetchQuote(context.Background(), "INVALID", drepo.Period1Mo)

	if len(arch.published) != 1 {
		t.Fatalf("only the remote quote is archived, got %d", len(arch.published))
	}
	e := arch.published[0]
	if e.Symbol != "AAPL" || e.Period != "1mo" || e.IsFallback || len(e.Prices) == 0 {
		t.Fatalf("unexpected event %+v", e)
	}
}
