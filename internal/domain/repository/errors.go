package repository

import "errors"

// Failure classes reported by a QuoteSource. Wrapped errors are matched with errors.Is.
var (
	ErrRateLimited       = errors.New("quote source rate limit reached")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrNoData            = errors.New("no price data")
	ErrMalformedResponse = errors.New("malformed quote source response")
)

// FailureReason maps an error to a short label for logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "source_error"
	}
}
