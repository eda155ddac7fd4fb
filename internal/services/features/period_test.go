package features

import (
	"testing"
	"time"

	"QuoteLens/internal/domain/models"
	"QuoteLens/internal/domain/repository"
)

func daily(from time.Time, days int) models.PriceSeries {
	out := make(models.PriceSeries, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, models.PricePoint{Date: from.AddDate(0, 0, i), Price: float64(100 + i)})
	}
	return out
}

func TestWindowOffsets(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := map[repository.Period]time.Time{
		repository.Period1Mo: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
		repository.Period3Mo: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		repository.Period6Mo: time.Date(2023, 12, 15, 12, 0, 0, 0, time.UTC),
		repository.Period1Y:  time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC),
		repository.Period2Y:  time.Date(2022, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	for p, want := range cases {
		start, end := Window(p, now)
		if !start.Equal(want) {
			t.Fatalf("%s: start = %v, want %v", p, start, want)
		}
		if !end.Equal(now) {
			t.Fatalf("%s: end = %v, want now", p, end)
		}
	}
}

func TestWindowMonthOverflow(t *testing.T) {
	now := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)
	start, _ := Window(repository.Period1Mo, now)
	want := time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("start = %v, want %v", start, want)
	}
}

func TestFilterByPeriodInclusive(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	s := daily(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 200)

	got := FilterByPeriod(s, repository.Period1Mo, now)
	if len(got) == 0 {
		t.Fatalf("expected points")
	}
	first, last := got[0].Date, got[len(got)-1].Date
	if !first.Equal(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first = %v, want start of window", first)
	}
	if !last.Equal(now) {
		t.Fatalf("last = %v, want now", last)
	}
	if len(got) != 32 {
		t.Fatalf("len = %d, want 32", len(got))
	}
}

func TestFilterByPeriodIdempotent(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	s := daily(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 1000)
	once := FilterByPeriod(s, repository.Period3Mo, now)
	twice := FilterByPeriod(once, repository.Period3Mo, now)
	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("mismatch at %d", i)
		}
	}
}

func TestFilterByPeriodKeepsOrderAndEmpty(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	s := models.PriceSeries{
		{Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), Price: 2},
		{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Price: 1},
	}
	got := FilterByPeriod(s, repository.Period1Mo, now)
	if len(got) != 2 || got[0].Price != 2 || got[1].Price != 1 {
		t.Fatalf("expected input order preserved, got %+v", got)
	}

	old := daily(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if out := FilterByPeriod(old, repository.Period2Y, now); len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}
