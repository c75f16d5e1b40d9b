// Package findrate scrapes retail bank exchange rates from the findrate.tw
// comparison tables.
package findrate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"finance_linebot/internal/feature/forex/domain/entity"
	"finance_linebot/internal/shared/fetcherr"
)

// Config holds configuration for the findrate scraper.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// LoadConfig loads scraper configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("FINDRATE_BASE_URL")
	if base == "" {
		base = "https://www.findrate.tw"
	}
	return Config{BaseURL: base, Timeout: 10 * time.Second}
}

// Scraper fetches and parses the per-currency bank rate table.
type Scraper struct {
	cfg    Config
	client *http.Client
}

// NewScraper creates a Scraper with the given configuration and HTTP client.
func NewScraper(cfg Config, client *http.Client) *Scraper {
	return &Scraper{cfg: cfg, client: client}
}

// BankRates returns every bank's selling prices for the currency, sorted
// ascending by effective sell price (cash price first, spot as fallback,
// banks with no usable price last).
func (s *Scraper) BankRates(ctx context.Context, currency string) ([]entity.RateRecord, error) {
	u := fmt.Sprintf("%s/%s/", s.cfg.BaseURL, strings.ToUpper(currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// The site blocks default Go user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("findrate %s: %w", currency, fetcherr.ErrUpstreamUnavailable)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("findrate %s http %d: %w", currency, res.StatusCode, fetcherr.ErrUpstreamUnavailable)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("findrate %s parse: %w", currency, fetcherr.ErrParseFailure)
	}

	table := findRateTable(doc)
	if table == nil {
		return nil, fmt.Errorf("findrate %s: no rate table for currency: %w", currency, fetcherr.ErrUpstreamEmpty)
	}

	records := parseRows(table)
	if len(records) == 0 {
		return nil, fmt.Errorf("findrate %s: table had no usable rows: %w", currency, fetcherr.ErrUpstreamEmpty)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SortKey < records[j].SortKey
	})
	return records, nil
}

// findRateTable picks the table carrying a 現鈔賣出 (cash sell) column, falling
// back to any wide table mentioning 銀行 in its header.
func findRateTable(doc *goquery.Document) *goquery.Selection {
	var match *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		header := t.Find("tr").First().Text()
		if strings.Contains(header, "現鈔賣出") {
			match = t
			return false
		}
		return true
	})
	if match != nil {
		return match
	}
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		header := t.Find("tr").First().Text()
		if strings.Contains(header, "銀行") && t.Find("tr").First().Children().Length() >= 5 {
			match = t
			return false
		}
		return true
	})
	return match
}

// parseRows converts table rows to records. Column layout on the source:
// 0 bank, 1 cash buy, 2 cash sell, 3 spot buy, 4 spot sell, 5 updated at.
func parseRows(table *goquery.Selection) []entity.RateRecord {
	var records []entity.RateRecord
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			return
		}
		bank := strings.TrimSpace(cells.Eq(0).Text())
		cashSell := strings.TrimSpace(cells.Eq(2).Text())
		spotSell := strings.TrimSpace(cells.Eq(4).Text())
		updatedAt := strings.TrimSpace(cells.Eq(5).Text())

		// Header echoes and decorative rows.
		if bank == "" || bank == "銀行名稱" || bank == "銀行" || bank == "幣別" {
			return
		}
		if utf8.RuneCountInString(bank) > 20 {
			return
		}
		// A bank quoting neither form carries no information.
		if cashSell == "--" && spotSell == "--" {
			return
		}

		records = append(records, entity.RateRecord{
			Bank:      bank,
			CashSell:  cashSell,
			SpotSell:  spotSell,
			UpdatedAt: updatedAt,
			SortKey:   sortKey(cashSell, spotSell),
		})
	})
	return records
}

// sortKey prefers the cash sell price, falls back to spot, and pushes banks
// with no parsable price to the end of the ranking instead of erroring.
func sortKey(cashSell, spotSell string) float64 {
	if v, err := strconv.ParseFloat(cashSell, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(spotSell, 64); err == nil {
		return v
	}
	return entity.NoRateSentinel
}
