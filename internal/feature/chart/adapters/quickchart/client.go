// Package quickchart renders Chart.js configurations into hosted images via
// the QuickChart create endpoint.
package quickchart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"finance_linebot/internal/shared/fetcherr"
)

// Config holds configuration for the QuickChart client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// LoadConfig loads QuickChart configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("QUICKCHART_BASE_URL")
	if base == "" {
		base = "https://quickchart.io"
	}
	return Config{BaseURL: base, Timeout: 15 * time.Second}
}

// Client posts chart configurations and returns short render URLs.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a Client with the given configuration and HTTP client.
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// createRequest is the /chart/create payload.
type createRequest struct {
	Chart           map[string]any `json:"chart"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	BackgroundColor string         `json:"backgroundColor"`
	Version         string         `json:"version"`
}

// createResponse is the /chart/create result.
type createResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// Create renders the chart configuration and returns the hosted image URL.
// version selects the Chart.js major ("2.9.4" for line and bar charts,
// "3" for candlesticks, which only render on the financial plugin build).
func (c *Client) Create(ctx context.Context, chart map[string]any, version string) (string, error) {
	payload := createRequest{
		Chart:           chart,
		Width:           800,
		Height:          600,
		BackgroundColor: "white",
		Version:         version,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/chart/create", c.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("quickchart create: %w", fetcherr.ErrUpstreamUnavailable)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return "", fmt.Errorf("quickchart create http %d: %w", res.StatusCode, fetcherr.ErrUpstreamUnavailable)
	}

	var out createResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("quickchart create decode: %w", fetcherr.ErrParseFailure)
	}
	if out.URL == "" {
		return "", fmt.Errorf("quickchart create returned no url: %w", fetcherr.ErrUpstreamEmpty)
	}
	return out.URL, nil
}
