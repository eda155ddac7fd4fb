package analytics

import (
	"errors"
	"math"

	"QuoteLens/internal/domain/models"
)

// TradingDaysPerYear annualises daily return variance.
const TradingDaysPerYear = 252

// ErrEmptySeries is returned when statistics are requested for no data.
var ErrEmptySeries = errors.New("cannot analyze empty price series")

// Returns computes simple returns r_i = (p_i - p_{i-1}) / p_{i-1}.
// It returns a slice of length len(prices)-1, or nil if insufficient data.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// AnnualizedVolatility is sqrt(populationVariance(returns) * 252) * 100, or 0 without returns.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	n := float64(len(returns))
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= n

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= n

	return math.Sqrt(variance*TradingDaysPerYear) * 100
}

// Analyze summarises a series ordered ascending by date.
func Analyze(series models.PriceSeries) (models.AnalysisSummary, error) {
	if len(series) == 0 {
		return models.AnalysisSummary{}, ErrEmptySeries
	}
	return AnalyzePrices(series.Prices())
}

// AnalyzePrices is Analyze over a bare price vector.
func AnalyzePrices(prices []float64) (models.AnalysisSummary, error) {
	n := len(prices)
	if n == 0 {
		return models.AnalysisSummary{}, ErrEmptySeries
	}

	maxP, minP, sum := prices[0], prices[0], 0.0
	for _, p := range prices {
		maxP = math.Max(maxP, p)
		minP = math.Min(minP, p)
		sum += p
	}

	var totalReturn float64
	if n > 1 {
		totalReturn = (prices[n-1] - prices[0]) / prices[0] * 100
	}

	return models.AnalysisSummary{
		Max:         maxP,
		Min:         minP,
		Average:     sum / float64(n),
		Volatility:  AnnualizedVolatility(Returns(prices)),
		TotalReturn: totalReturn,
	}, nil
}
