// Package yahoo provides a client for the Yahoo Finance chart API, the quote
// and history source for FX pairs, foreign equities and index tickers.
package yahoo

import (
	"os"
	"time"
)

// Config holds configuration for the Yahoo Finance client.
type Config struct {
	BaseURL string        // override for tests; defaults to the public endpoint
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Yahoo client configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("YAHOO_BASE_URL")
	if base == "" {
		base = "https://query1.finance.yahoo.com"
	}
	return Config{
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
