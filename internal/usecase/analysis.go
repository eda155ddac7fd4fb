package usecase

import (
	"context"

	"QuoteLens/internal/domain/models"
	drepo "QuoteLens/internal/domain/repository"
	"QuoteLens/internal/services/analytics"
)

// AnalysisUseCase combines a quote lookup with its summary statistics.
type AnalysisUseCase struct {
	quotes *QuoteUseCase
}

func NewAnalysisUseCase(quotes *QuoteUseCase) *AnalysisUseCase {
	return &AnalysisUseCase{quotes: quotes}
}

// Analyze returns analytics.ErrEmptySeries for an empty series.
func (u *AnalysisUseCase) Analyze(series models.PriceSeries) (models.AnalysisSummary, error) {
	return analytics.Analyze(series)
}

// QuoteWithAnalysis fetches a quote and summarises it. Quotes are never empty,
// so the error is only reported for a broken source contract.
func (u *AnalysisUseCase) QuoteWithAnalysis(ctx context.Context, symbol string, period drepo.Period) (models.QuoteAnalysis, error) {
	q := u.quotes.FetchQuote(ctx, symbol, period)
	a, err := analytics.Analyze(q.Prices)
	if err != nil {
		return models.QuoteAnalysis{}, err
	}
	return models.QuoteAnalysis{Quote: q, Analysis: a}, nil
}
