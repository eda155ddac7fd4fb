package fallback

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"QuoteLens/internal/domain/repository"
)

var fixedNow = time.Date(2024, 6, 14, 15, 30, 0, 0, time.UTC) // Friday

func TestGenerateWeekdaysOnly(t *testing.T) {
	for _, p := range repository.Periods {
		q := Generate("AAPL", p, fixedNow, rand.New(rand.NewSource(7)))
		if len(q.Prices) == 0 {
			t.Fatalf("%s: expected prices", p)
		}
		for _, pt := range q.Prices {
			if wd := pt.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Fatalf("%s: weekend date %v", p, pt.Date)
			}
		}
		for i := 1; i < len(q.Prices); i++ {
			if !q.Prices[i].Date.After(q.Prices[i-1].Date) {
				t.Fatalf("%s: dates not strictly ascending at %d", p, i)
			}
		}
	}
}

func TestGenerateBoundedMoves(t *testing.T) {
	q := Generate("ZZZZ", repository.Period2Y, fixedNow, rand.New(rand.NewSource(42)))
	for i := 1; i < len(q.Prices); i++ {
		prev, cur := q.Prices[i-1].Price, q.Prices[i].Price
		if math.Abs(cur-prev)/prev > 0.05 {
			t.Fatalf("move too large at %d: %v -> %v", i, prev, cur)
		}
	}
}

func TestGenerateRoundsToCents(t *testing.T) {
	q := Generate("MSFT", repository.Period3Mo, fixedNow, rand.New(rand.NewSource(3)))
	for _, pt := range q.Prices {
		cents := pt.Price * 100
		if math.Abs(cents-math.Round(cents)) > 1e-6 {
			t.Fatalf("price %v not rounded to 2 decimals", pt.Price)
		}
	}
}

func TestGenerateKnownSymbol(t *testing.T) {
	q := Generate("aapl", repository.Period1Mo, fixedNow, rand.New(rand.NewSource(1)))
	if q.Symbol != "AAPL" || q.CompanyName != "Apple Inc." {
		t.Fatalf("unexpected identity %q / %q", q.Symbol, q.CompanyName)
	}
	if !q.IsFallback {
		t.Fatalf("expected fallback flag")
	}
	first := q.Prices[0].Price
	if math.Abs(first-150)/150 > maxDailyMove+0.001 {
		t.Fatalf("first price %v too far from base", first)
	}
	n := len(q.Prices)
	if q.CurrentPrice != q.Prices[n-1].Price || q.PreviousPrice != q.Prices[n-2].Price {
		t.Fatalf("current/previous price mismatch: %+v", q)
	}
}

func TestGenerateUnknownSymbol(t *testing.T) {
	q := Generate("7203.T", repository.Period1Mo, fixedNow, rand.New(rand.NewSource(9)))
	if q.CompanyName != "7203.T Corporation" {
		t.Fatalf("unexpected company name %q", q.CompanyName)
	}
	first := q.Prices[0].Price
	if first < unknownBaseMin*(1-maxDailyMove)-0.01 || first > unknownBaseMax*(1+maxDailyMove)+0.01 {
		t.Fatalf("first price %v outside base range", first)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	clock := func() time.Time { return fixedNow }
	a := NewGenerator(WithSeed(11), WithClock(clock)).Generate("TSLA", repository.Period6Mo)
	b := NewGenerator(WithSeed(11), WithClock(clock)).Generate("TSLA", repository.Period6Mo)
	if len(a.Prices) != len(b.Prices) {
		t.Fatalf("length mismatch")
	}
	for i := range a.Prices {
		if a.Prices[i] != b.Prices[i] {
			t.Fatalf("mismatch at %d", i)
		}
	}
}

func TestCompanyName(t *testing.T) {
	if got := CompanyName(" goog "); got != "Alphabet Inc." {
		t.Fatalf("unexpected %q", got)
	}
	if got := CompanyName("xyz"); !strings.HasSuffix(got, " Corporation") || !strings.HasPrefix(got, "XYZ") {
		t.Fatalf("unexpected %q", got)
	}
}
