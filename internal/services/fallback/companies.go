package fallback

import "QuoteLens/internal/domain/models"

var companyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"GOOGL": "Alphabet Inc.",
	"GOOG":  "Alphabet Inc.",
	"TSLA":  "Tesla Inc.",
	"MSFT":  "Microsoft Corporation",
	"AMZN":  "Amazon.com Inc.",
	"NVDA":  "NVIDIA Corporation",
	"META":  "Meta Platforms Inc.",
	"NFLX":  "Netflix Inc.",
	"ADBE":  "Adobe Inc.",
}

var basePrices = map[string]float64{
	"AAPL":  150,
	"GOOGL": 2800,
	"TSLA":  800,
	"MSFT":  330,
	"AMZN":  3300,
	"NVDA":  220,
	"META":  320,
}

// CompanyName returns the known name for symbol or "{SYMBOL} Corporation".
func CompanyName(symbol string) string {
	symbol = models.NormalizeSymbol(symbol)
	if name, ok := companyNames[symbol]; ok {
		return name
	}
	return symbol + " Corporation"
}

// BasePrice returns the seed price for a known symbol.
func BasePrice(symbol string) (float64, bool) {
	p, ok := basePrices[models.NormalizeSymbol(symbol)]
	return p, ok
}
