package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"QuoteLens/internal/domain/models"
)

func series(prices ...float64) models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.PriceSeries, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Price: p}
	}
	return out
}

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestAnalyzeEmpty(t *testing.T) {
	_, err := Analyze(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestAnalyzeThreePoints(t *testing.T) {
	got, err := Analyze(series(100, 110, 121))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Max != 121 || got.Min != 100 {
		t.Fatalf("unexpected max/min: %+v", got)
	}
	if !approx(got.Average, 110.333333, 1e-5) {
		t.Fatalf("unexpected average %v", got.Average)
	}
	// Both returns are 0.1 so the variance is zero.
	if !approx(got.Volatility, 0, 1e-9) {
		t.Fatalf("expected zero volatility, got %v", got.Volatility)
	}
	if !approx(got.TotalReturn, 21, 1e-9) {
		t.Fatalf("unexpected total return %v", got.TotalReturn)
	}
}

func TestAnalyzeVolatility(t *testing.T) {
	// returns: +0.1, -0.1; mean 0; population variance 0.01
	got, err := Analyze(series(100, 110, 99))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Sqrt(0.01*252) * 100
	if !approx(got.Volatility, want, 1e-6) {
		t.Fatalf("volatility = %v, want %v", got.Volatility, want)
	}
	if !approx(got.TotalReturn, -1, 1e-9) {
		t.Fatalf("unexpected total return %v", got.TotalReturn)
	}
}

func TestAnalyzeSinglePoint(t *testing.T) {
	got, err := Analyze(series(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.AnalysisSummary{Max: 42, Min: 42, Average: 42}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestAnalyzeConstantSeries(t *testing.T) {
	got, err := Analyze(series(50, 50, 50, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Volatility != 0 || got.TotalReturn != 0 {
		t.Fatalf("expected flat statistics, got %+v", got)
	}
}

func TestAnalyzeOrdering(t *testing.T) {
	got, err := Analyze(series(3, 9, 1, 7, 4, 12, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(got.Max >= got.Average && got.Average >= got.Min) {
		t.Fatalf("expected max >= average >= min, got %+v", got)
	}
	if got.Volatility < 0 {
		t.Fatalf("volatility must be non-negative")
	}
}

func TestReturns(t *testing.T) {
	if r := Returns([]float64{1}); r != nil {
		t.Fatalf("expected nil returns, got %v", r)
	}
	r := Returns([]float64{100, 50, 75})
	if len(r) != 2 || !approx(r[0], -0.5, 1e-12) || !approx(r[1], 0.5, 1e-12) {
		t.Fatalf("unexpected returns %v", r)
	}
}
