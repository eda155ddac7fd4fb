package models

// Requests for the HTTP endpoints. Defaults are applied before validation.

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,symbol"`
	Period string `query:"period" json:"period" default:"1mo" validate:"oneof=1mo 3mo 6mo 1y 2y"`
}

type AnalyzeRequest struct {
	Prices PriceSeries `json:"prices" validate:"required"`
}

type AddWatchlistRequest struct {
	Symbol      string `json:"symbol" validate:"required,symbol"`
	CompanyName string `json:"companyName" validate:"max=128"`
}

type UpdatePriceRequest struct {
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

type ArchiveRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,symbol"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=5000"`
}

// QuoteAnalysis pairs a quote with its statistics.
type QuoteAnalysis struct {
	Quote    QuoteResult     `json:"quote"`
	Analysis AnalysisSummary `json:"analysis"`
}
