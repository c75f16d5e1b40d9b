// Package fugle provides a client for the Fugle intraday quote API, the
// primary realtime source for Taiwan listings when an API key is configured.
package fugle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"finance_linebot/internal/shared/fetcherr"
	"finance_linebot/internal/shared/ratelimiter"
)

// Config holds configuration for the Fugle client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// LoadConfig loads Fugle configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("FUGLE_BASE_URL")
	if base == "" {
		base = "https://api.fugle.tw"
	}
	return Config{
		APIKey:  os.Getenv("FUGLE_API_KEY"),
		BaseURL: base,
		Timeout: 5 * time.Second,
	}
}

// Quote mirrors the subset of the Fugle intraday quote payload the bot uses.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Market        string  `json:"market"` // "TSE" or "OTC"
	PreviousClose float64 `json:"previousClose"`
	LastPrice     float64 `json:"lastPrice"`
	HighPrice     float64 `json:"highPrice"`
	LowPrice      float64 `json:"lowPrice"`
	Total         struct {
		TradeVolume int64 `json:"tradeVolume"`
	} `json:"total"`
}

// Client fetches realtime Taiwan quotes from the Fugle market-data API. The
// free tier allows 60 calls a minute, so every call first consumes a slot
// from the fail-fast limiter; an exhausted budget reads as quota exceeded and
// lets the caller fall back to the Yahoo source.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// NewClient creates a Client guarded by the given rate limiter.
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// IntradayQuote returns the realtime quote for one Taiwan symbol.
func (c *Client) IntradayQuote(ctx context.Context, symbol string) (*Quote, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("fugle api key not set: %w", fetcherr.ErrConfigMissing)
	}
	if !c.limiter.Allow() {
		return nil, fmt.Errorf("fugle minute budget spent: %w", fetcherr.ErrQuotaExceeded)
	}

	u := fmt.Sprintf("%s/marketdata/v1.0/stock/intraday/quote/%s", c.cfg.BaseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fugle quote %s: %w", symbol, fetcherr.ErrUpstreamUnavailable)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fugle quote %s: %w", symbol, fetcherr.ErrUpstreamEmpty)
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("fugle quote %s: %w", symbol, fetcherr.ErrQuotaExceeded)
	case res.StatusCode >= 400:
		return nil, fmt.Errorf("fugle quote %s http %d: %w", symbol, res.StatusCode, fetcherr.ErrUpstreamUnavailable)
	}

	var q Quote
	if err := json.NewDecoder(res.Body).Decode(&q); err != nil {
		return nil, fmt.Errorf("fugle quote %s decode: %w", symbol, fetcherr.ErrParseFailure)
	}
	if q.LastPrice == 0 && q.PreviousClose == 0 {
		return nil, fmt.Errorf("fugle quote %s has no prices: %w", symbol, fetcherr.ErrUpstreamEmpty)
	}
	return &q, nil
}
