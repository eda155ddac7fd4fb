package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"QuoteLens/internal/domain/models"
	"QuoteLens/internal/domain/repository"
	xhttp "QuoteLens/pkg/http"
	"QuoteLens/pkg/util"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"
	DemoKey        = "demo"

	fnOverview    = "OVERVIEW"
	fnDailySeries = "TIME_SERIES_DAILY"
	seriesKey     = "Time Series (Daily)"
)

type overviewResponse struct {
	Symbol string `json:"Symbol"`
	Name   string `json:"Name"`
}

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// Client is a QuoteSource backed by the Alpha Vantage query API.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithHTTPClient(hc *xhttp.Client) Option { return func(c *Client) { c.http = hc } }

func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	if apiKey == "" {
		apiKey = DemoKey
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("quotelens/1.0")),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// IsDemo reports whether the public demo credential is in use.
func (c *Client) IsDemo() bool { return c.apiKey == DemoKey }

// CompanyName returns the overview "Name" field, possibly empty.
func (c *Client) CompanyName(ctx context.Context, symbol string) (string, error) {
	body, err := c.query(ctx, fnOverview, symbol, nil)
	if err != nil {
		return "", err
	}
	var ov overviewResponse
	if err := json.Unmarshal(body, &ov); err != nil {
		return "", fmt.Errorf("decode overview: %w: %v", repository.ErrMalformedResponse, err)
	}
	return strings.TrimSpace(ov.Name), nil
}

// DailySeries returns the full daily close history ascending by date.
// Bars whose date or close does not parse are skipped.
func (c *Client) DailySeries(ctx context.Context, symbol string) (models.PriceSeries, error) {
	body, err := c.query(ctx, fnDailySeries, symbol, map[string]string{"outputsize": "full"})
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode daily series: %w: %v", repository.ErrMalformedResponse, err)
	}
	tsRaw, ok := raw[seriesKey]
	if !ok {
		return nil, fmt.Errorf("daily series for %s: %w: missing %q", symbol, repository.ErrMalformedResponse, seriesKey)
	}
	var bars map[string]dailyBar
	if err := json.Unmarshal(tsRaw, &bars); err != nil {
		return nil, fmt.Errorf("decode %q: %w: %v", seriesKey, repository.ErrMalformedResponse, err)
	}

	series := make(models.PriceSeries, 0, len(bars))
	for day, bar := range bars {
		d, ok := util.ParseDate(day)
		if !ok {
			continue
		}
		px, err := strconv.ParseFloat(strings.TrimSpace(bar.Close), 64)
		if err != nil {
			continue
		}
		series = append(series, models.PricePoint{Date: d, Price: px})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("daily series for %s: %w", symbol, repository.ErrNoData)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

// query performs one API call and classifies the provider's in-band error envelopes.
func (c *Client) query(ctx context.Context, function, symbol string, extra map[string]string) ([]byte, error) {
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)
	for k, v := range extra {
		q.Set(k, v)
	}

	var body []byte
	if err := c.http.GetJSON(ctx, c.baseURL, q, &body); err != nil {
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(function), symbol, err)
	}
	if err := classify(body); err != nil {
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(function), symbol, err)
	}
	return body, nil
}

// classify maps the top-level "Error Message", "Note" and "Information" keys to domain errors.
func classify(body []byte) error {
	var envelope struct {
		ErrorMessage string `json:"Error Message"`
		Note         string `json:"Note"`
		Information  string `json:"Information"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrMalformedResponse, err)
	}
	switch {
	case envelope.ErrorMessage != "":
		return fmt.Errorf("%w: %s", repository.ErrInvalidSymbol, envelope.ErrorMessage)
	case envelope.Note != "":
		return fmt.Errorf("%w: %s", repository.ErrRateLimited, envelope.Note)
	case envelope.Information != "":
		return fmt.Errorf("%w: %s", repository.ErrRateLimited, envelope.Information)
	}
	return nil
}

var _ repository.QuoteSource = (*Client)(nil)
