// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"finance_linebot/internal/feature/chart/adapters/quickchart"
	"finance_linebot/internal/feature/forex/adapters/findrate"
	"finance_linebot/internal/feature/stocks/adapters/fugle"
	"finance_linebot/internal/feature/stocks/adapters/twse"
	"finance_linebot/internal/platform/externalapi/yahoo"
	infrahttp "finance_linebot/internal/platform/http"
	"finance_linebot/internal/shared/ratelimiter"
)

// NewYahooClient creates a fully configured Yahoo chart client with HTTP client.
func NewYahooClient() *yahoo.Client {
	cfg := yahoo.LoadConfig()
	return yahoo.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
}

// fugleMinuteBudget stays under the free tier's 60 calls per minute.
const fugleMinuteBudget = 55

// NewFugleClient creates the realtime quote client guarded by its fail-fast
// minute limiter.
func NewFugleClient() *fugle.Client {
	cfg := fugle.LoadConfig()
	limiter := ratelimiter.NewRateLimiter(fugleMinuteBudget, time.Minute)
	return fugle.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout), limiter)
}

// NewTWSEClient creates the exchange metadata client.
func NewTWSEClient() *twse.Client {
	cfg := twse.LoadConfig()
	return twse.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
}

// NewRateScraper creates the bank exchange-rate scraper.
func NewRateScraper() *findrate.Scraper {
	cfg := findrate.LoadConfig()
	return findrate.NewScraper(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
}

// NewChartRenderer creates the QuickChart image renderer.
func NewChartRenderer() *quickchart.Client {
	cfg := quickchart.LoadConfig()
	return quickchart.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
}
