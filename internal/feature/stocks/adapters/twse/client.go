// Package twse talks to the Taiwan Stock Exchange public endpoints: the MIS
// realtime feed for display names and the OpenAPI feed for valuation stats.
package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"finance_linebot/internal/shared/fetcherr"
)

// Config holds configuration for the TWSE clients.
type Config struct {
	MISBaseURL     string
	OpenAPIBaseURL string
	Timeout        time.Duration
}

// LoadConfig loads TWSE endpoint configuration from environment variables.
func LoadConfig() Config {
	mis := os.Getenv("TWSE_MIS_BASE_URL")
	if mis == "" {
		mis = "https://mis.twse.com.tw"
	}
	open := os.Getenv("TWSE_OPENAPI_BASE_URL")
	if open == "" {
		open = "https://openapi.twse.com.tw"
	}
	return Config{MISBaseURL: mis, OpenAPIBaseURL: open, Timeout: 5 * time.Second}
}

// ValuationStats carries the exchange-published PE / PB / dividend yield for
// one listed symbol. Values are the feed's raw strings, "-" when unpublished.
type ValuationStats struct {
	PERatio string `json:"pe"`
	PBRatio string `json:"pb"`
	Yield   string `json:"yield"`
}

// Client fetches names and valuation stats from the exchange endpoints.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a Client with the given configuration and HTTP client.
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// misStockInfoResponse mirrors the MIS getStockInfo payload.
type misStockInfoResponse struct {
	MsgArray []struct {
		Code string `json:"c"`
		Name string `json:"n"`
	} `json:"msgArray"`
}

// StockName resolves the Chinese display name of a Taiwan symbol, probing the
// listed (tse), OTC (otc) and emerging (emg) channels in one request. Falls
// back to the bare symbol when the exchange does not know it.
func (c *Client) StockName(ctx context.Context, symbol string) (string, error) {
	channels := []string{
		fmt.Sprintf("tse_%s.tw", symbol),
		fmt.Sprintf("otc_%s.tw", symbol),
		fmt.Sprintf("emg_%s.tw", symbol),
	}
	q := url.Values{}
	q.Set("ex_ch", strings.Join(channels, "|"))
	q.Set("json", "1")
	q.Set("delay", "0")

	u := fmt.Sprintf("%s/stock/api/getStockInfo.jsp?%s", c.cfg.MISBaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twse stock name %s: %w", symbol, fetcherr.ErrUpstreamUnavailable)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return "", fmt.Errorf("twse stock name %s http %d: %w", symbol, res.StatusCode, fetcherr.ErrUpstreamUnavailable)
	}

	var body misStockInfoResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("twse stock name %s decode: %w", symbol, fetcherr.ErrParseFailure)
	}
	for _, item := range body.MsgArray {
		if item.Code == symbol && item.Name != "" {
			return item.Name, nil
		}
	}
	return symbol, nil
}

// bwibbuRow mirrors one row of the BWIBBU_ALL valuation report.
type bwibbuRow struct {
	Code          string `json:"Code"`
	PERatio       string `json:"PEratio"`
	DividendYield string `json:"DividendYield"`
	PBRatio       string `json:"PBratio"`
}

// ValuationStats downloads the whole-market valuation report and returns it
// keyed by symbol. The report covers main-board listings only.
func (c *Client) ValuationStats(ctx context.Context) (map[string]ValuationStats, error) {
	u := fmt.Sprintf("%s/v1/exchangeReport/BWIBBU_ALL", c.cfg.OpenAPIBaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twse valuation: %w", fetcherr.ErrUpstreamUnavailable)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twse valuation http %d: %w", res.StatusCode, fetcherr.ErrUpstreamUnavailable)
	}

	var rows []bwibbuRow
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("twse valuation decode: %w", fetcherr.ErrParseFailure)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("twse valuation: %w", fetcherr.ErrUpstreamEmpty)
	}

	stats := make(map[string]ValuationStats, len(rows))
	for _, r := range rows {
		stats[r.Code] = ValuationStats{
			PERatio: orDash(r.PERatio),
			PBRatio: orDash(r.PBRatio),
			Yield:   orDash(r.DividendYield),
		}
	}
	return stats, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
