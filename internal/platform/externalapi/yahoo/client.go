package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"finance_linebot/internal/feature/stocks/domain/entity"
	"finance_linebot/internal/platform/externalapi/yahoo/dto"
	"finance_linebot/internal/shared/fetcherr"
)

// Quote is the normalized live snapshot extracted from the chart meta.
type Quote struct {
	Symbol     string
	Name       string
	Price      float64
	PrevClose  float64
	High       float64
	Low        float64
	Volume     int64
	Week52High *float64
	Week52Low  *float64
}

// Client fetches quotes and price history from the Yahoo Finance chart API.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a Client with the given configuration and HTTP client.
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// fetchChart calls /v8/finance/chart and returns the first result, mapping
// transport and payload failures onto the shared fetcher taxonomy.
func (c *Client) fetchChart(ctx context.Context, symbol, rng, interval string) (*dto.Result, error) {
	q := url.Values{}
	q.Set("range", rng)
	q.Set("interval", interval)

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, fetcherr.ErrUpstreamUnavailable)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, fetcherr.ErrUpstreamEmpty)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo chart %s http %d: %w", symbol, res.StatusCode, fetcherr.ErrUpstreamUnavailable)
	}

	var body dto.ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("yahoo chart %s decode: %w", symbol, fetcherr.ErrParseFailure)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %v: %w", symbol, body.Chart.Error, fetcherr.ErrUpstreamEmpty)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, fetcherr.ErrUpstreamEmpty)
	}
	return &body.Chart.Result[0], nil
}

// Quote returns the live quote for symbol, derived from a 1-day chart call.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	result, err := c.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}

	meta := result.Meta
	if meta.RegularMarketPrice == nil {
		return nil, fmt.Errorf("yahoo quote %s has no price: %w", symbol, fetcherr.ErrUpstreamEmpty)
	}

	q := &Quote{
		Symbol: symbol,
		Name:   meta.ShortName,
		Price:  *meta.RegularMarketPrice,
	}
	if q.Name == "" {
		q.Name = meta.LongName
	}
	switch {
	case meta.PreviousClose != nil:
		q.PrevClose = *meta.PreviousClose
	case meta.ChartPreviousClose != nil:
		q.PrevClose = *meta.ChartPreviousClose
	default:
		q.PrevClose = q.Price
	}
	if meta.RegularMarketDayHigh != nil {
		q.High = *meta.RegularMarketDayHigh
	}
	if meta.RegularMarketDayLow != nil {
		q.Low = *meta.RegularMarketDayLow
	}
	if meta.RegularMarketVolume != nil {
		q.Volume = *meta.RegularMarketVolume
	}
	q.Week52High = meta.FiftyTwoWeekHigh
	q.Week52Low = meta.FiftyTwoWeekLow
	return q, nil
}

// History returns the OHLCV series for symbol over the given range and
// interval, oldest bar first. Bars with a null close are skipped.
func (c *Client) History(ctx context.Context, symbol, rng, interval string) ([]entity.Candle, error) {
	result, err := c.fetchChart(ctx, symbol, rng, interval)
	if err != nil {
		return nil, err
	}
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo history %s: %w", symbol, fetcherr.ErrUpstreamEmpty)
	}

	bars := result.Indicators.Quote[0]
	candles := make([]entity.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(bars.Close) || bars.Close[i] == nil {
			continue
		}
		cd := entity.Candle{
			Time:  time.Unix(ts, 0),
			Close: *bars.Close[i],
		}
		if i < len(bars.Open) && bars.Open[i] != nil {
			cd.Open = *bars.Open[i]
		}
		if i < len(bars.High) && bars.High[i] != nil {
			cd.High = *bars.High[i]
		}
		if i < len(bars.Low) && bars.Low[i] != nil {
			cd.Low = *bars.Low[i]
		}
		if i < len(bars.Volume) && bars.Volume[i] != nil {
			cd.Volume = *bars.Volume[i]
		}
		candles = append(candles, cd)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("yahoo history %s: %w", symbol, fetcherr.ErrUpstreamEmpty)
	}
	return candles, nil
}
