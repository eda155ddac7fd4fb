package models

import (
	"strings"
	"time"
)

// WatchlistItem is keyed by its upper-cased symbol.
type WatchlistItem struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"companyName"`
	AddedAt     time.Time `json:"addedAt"`
	LastPrice   *float64  `json:"lastPrice,omitempty"`
	PriceChange *float64  `json:"priceChange,omitempty"`
}

// Watchlist is persisted as a single blob.
type Watchlist struct {
	Items       []WatchlistItem `json:"items"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Index returns the position of symbol in the list or -1.
func (w Watchlist) Index(symbol string) int {
	symbol = NormalizeSymbol(symbol)
	for i, it := range w.Items {
		if it.Symbol == symbol {
			return i
		}
	}
	return -1
}

// Symbols lists the symbols in insertion order.
func (w Watchlist) Symbols() []string {
	out := make([]string, 0, len(w.Items))
	for _, it := range w.Items {
		out = append(out, it.Symbol)
	}
	return out
}
