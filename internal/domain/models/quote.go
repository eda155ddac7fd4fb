package models

import (
	"encoding/json"
	"fmt"
	"time"

	"QuoteLens/pkg/util"
)

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time
	Price float64
}

type pricePointJSON struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// MarshalJSON encodes the date as YYYY-MM-DD.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(pricePointJSON{Date: p.Date.Format(util.DateLayout), Price: p.Price})
}

func (p *PricePoint) UnmarshalJSON(b []byte) error {
	var raw pricePointJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d, ok := util.ParseTime(raw.Date)
	if !ok {
		return fmt.Errorf("invalid price point date %q", raw.Date)
	}
	p.Date = util.Day(d)
	p.Price = raw.Price
	return nil
}

// PriceSeries is ordered ascending by date.
type PriceSeries []PricePoint

// Prices returns the bare price vector.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// QuoteResult is the outcome of a quote lookup, remote or synthetic.
type QuoteResult struct {
	Symbol        string      `json:"symbol"`
	CompanyName   string      `json:"companyName"`
	Prices        PriceSeries `json:"prices"`
	CurrentPrice  float64     `json:"currentPrice"`
	PreviousPrice float64     `json:"previousPrice"`
	IsFallback    bool        `json:"isFallback"`
}

// NewQuoteResult derives current and previous price from a non-empty series.
// previousPrice equals currentPrice when the series holds a single point.
func NewQuoteResult(symbol, companyName string, prices PriceSeries, fallback bool) QuoteResult {
	r := QuoteResult{
		Symbol:      symbol,
		CompanyName: companyName,
		Prices:      prices,
		IsFallback:  fallback,
	}
	if n := len(prices); n > 0 {
		r.CurrentPrice = prices[n-1].Price
		r.PreviousPrice = r.CurrentPrice
		if n > 1 {
			r.PreviousPrice = prices[n-2].Price
		}
	}
	return r
}

// Change is currentPrice minus previousPrice.
func (r QuoteResult) Change() float64 {
	return r.CurrentPrice - r.PreviousPrice
}

// AnalysisSummary holds descriptive statistics of a price series.
// Volatility and TotalReturn are percentages.
type AnalysisSummary struct {
	Max         float64 `json:"max"`
	Min         float64 `json:"min"`
	Average     float64 `json:"average"`
	Volatility  float64 `json:"volatility"`
	TotalReturn float64 `json:"totalReturn"`
}

// QuoteEvent is the archival record of a successful remote fetch.
type QuoteEvent struct {
	Symbol      string      `json:"symbol"`
	QuerySymbol string      `json:"querySymbol"`
	Period      string      `json:"period"`
	CompanyName string      `json:"companyName"`
	Prices      PriceSeries `json:"prices"`
	IsFallback  bool        `json:"isFallback"`
	FetchedAt   time.Time   `json:"fetchedAt"`
}

// ArchivedClose is one stored daily close read back from the archive.
type ArchivedClose struct {
	Symbol    string    `json:"symbol"`
	Date      time.Time `json:"date"`
	Close     float64   `json:"close"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// PriceTick is a single live trade price.
type PriceTick struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}
