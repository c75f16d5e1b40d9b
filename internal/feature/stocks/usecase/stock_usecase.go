// Package usecase implements the stock feature's application logic: Taiwan
// quotes with venue fallback, foreign quotes, the greeting dashboard and the
// VIX summary.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance_linebot/internal/feature/stocks/adapters/fugle"
	"finance_linebot/internal/feature/stocks/adapters/twse"
	"finance_linebot/internal/feature/stocks/domain/entity"
	"finance_linebot/internal/platform/cache"
	"finance_linebot/internal/platform/externalapi/yahoo"
	"finance_linebot/internal/shared/fetcherr"
)

const (
	// nameCacheTTL: listing names effectively never change intraday.
	nameCacheTTL = time.Hour
	// valuationCacheTTL matches the quote-freshness window of the bot.
	valuationCacheTTL = 5 * time.Minute
	// venueCacheTTL memoizes which suffix a Taiwan symbol resolved to.
	venueCacheTTL = time.Hour
)

// MarketSource fetches quotes and price history from the market-data API.
// Following Go convention, the interface is defined on the consumer side.
type MarketSource interface {
	Quote(ctx context.Context, symbol string) (*yahoo.Quote, error)
	History(ctx context.Context, symbol, rng, interval string) ([]entity.Candle, error)
}

// RealtimeSource is the optional low-latency quote feed for Taiwan listings.
type RealtimeSource interface {
	Enabled() bool
	IntradayQuote(ctx context.Context, symbol string) (*fugle.Quote, error)
}

// ExchangeSource resolves display names and valuation stats from the
// exchange's public endpoints.
type ExchangeSource interface {
	StockName(ctx context.Context, symbol string) (string, error)
	ValuationStats(ctx context.Context) (map[string]twse.ValuationStats, error)
}

// StockUsecase serves quotes, the dashboard and the VIX summary.
type StockUsecase struct {
	market   MarketSource
	realtime RealtimeSource
	exchange ExchangeSource
	store    cache.Store
}

// NewStockUsecase creates a StockUsecase.
func NewStockUsecase(market MarketSource, realtime RealtimeSource, exchange ExchangeSource, store cache.Store) *StockUsecase {
	return &StockUsecase{market: market, realtime: realtime, exchange: exchange, store: store}
}

// TaiwanQuote returns the live quote for a Taiwan symbol (bare code, e.g.
// "2330"). The realtime feed is tried first when configured; any failure
// there degrades silently to the market-data API, probing the main board
// before the OTC board.
func (u *StockUsecase) TaiwanQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	if u.realtime.Enabled() {
		if q, err := u.realtime.IntradayQuote(ctx, symbol); err == nil {
			return u.fromRealtime(ctx, symbol, q), nil
		} else if !errors.Is(err, fetcherr.ErrUpstreamEmpty) {
			slog.Warn("realtime quote failed, falling back", "symbol", symbol, "error", err)
		}
	}

	yq, venue, err := u.taiwanYahooQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	quote := u.normalize(symbol, yq, venue)
	quote.Name = u.displayName(ctx, symbol, yq.Name)
	u.attachLimits(quote)
	u.attachValuation(ctx, quote, venue)
	return quote, nil
}

// ForeignQuote returns the live quote for a US or other foreign symbol. No
// venue fallback: an unknown symbol stays unknown.
func (u *StockUsecase) ForeignQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	yq, err := u.market.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	quote := u.normalize(symbol, yq, entity.VenueForeign)
	quote.Week52High = yq.Week52High
	quote.Week52Low = yq.Week52Low
	if quote.Name == "" {
		quote.Name = symbol
	}
	return quote, nil
}

// ResolveSymbol turns a bare Taiwan code into its suffixed market-data symbol
// ("2330" -> "2330.TW") plus a display name, for chart and analysis flows.
// The resolved venue is cached so chart taps do not re-probe both boards.
func (u *StockUsecase) ResolveSymbol(ctx context.Context, symbol string) (resolved, name string, err error) {
	key := cache.Key("venue", symbol)
	if raw, ok := u.store.Get(ctx, key); ok {
		resolved = string(raw)
		return resolved, u.displayName(ctx, symbol, symbol), nil
	}

	yq, venue, err := u.taiwanYahooQuote(ctx, symbol)
	if err != nil {
		return "", "", err
	}
	resolved = symbol + ".TW"
	if venue == entity.VenueOTC {
		resolved = symbol + ".TWO"
	}
	u.store.Set(ctx, key, []byte(resolved), venueCacheTTL)
	return resolved, u.displayName(ctx, symbol, yq.Name), nil
}

// History proxies the market-data history fetch for indicator computation.
func (u *StockUsecase) History(ctx context.Context, symbol, rng, interval string) ([]entity.Candle, error) {
	return u.market.History(ctx, symbol, rng, interval)
}

// dashboardRows names the instruments on the greeting dashboard, in display
// order. ActionText is the chat message a row tap sends back.
var dashboardRows = []struct {
	symbol     string
	name       string
	actionText string
}{
	{"^VIX", "VIX 恐慌", "^VIX"},
	{"^TWII", "加權指數", "^TWII"},
	{"0050.TW", "元大 0050", "0050"},
	{"2330.TW", "台積電", "2330"},
}

// Dashboard assembles the greeting dashboard rows. A row whose fetch fails is
// skipped rather than failing the greeting.
func (u *StockUsecase) Dashboard(ctx context.Context) []entity.DashboardItem {
	items := make([]entity.DashboardItem, 0, len(dashboardRows))
	for _, row := range dashboardRows {
		q, err := u.market.Quote(ctx, row.symbol)
		if err != nil {
			slog.Warn("dashboard row skipped", "symbol", row.symbol, "error", err)
			continue
		}
		pct := 0.0
		if q.PrevClose != 0 {
			pct = (q.Price - q.PrevClose) / q.PrevClose * 100
		}
		items = append(items, entity.DashboardItem{
			Symbol:        row.symbol,
			Name:          row.name,
			Price:         fmt.Sprintf("%.2f", q.Price),
			ChangePercent: FormatSignedPercent(pct),
			Color:         ChangeColor(pct),
			ActionText:    row.actionText,
		})
	}
	return items
}

// VIXSummary fetches the fear index and grades it into a sentiment band.
func (u *StockUsecase) VIXSummary(ctx context.Context) (*entity.VIXSummary, error) {
	q, err := u.market.Quote(ctx, "^VIX")
	if err != nil {
		return nil, err
	}
	s := &entity.VIXSummary{
		Price:  q.Price,
		Change: q.Price - q.PrevClose,
	}
	if q.PrevClose != 0 {
		s.ChangePercent = s.Change / q.PrevClose * 100
	}
	s.Sentiment, s.Description = entity.VIXLevel(q.Price)
	return s, nil
}

// VIXHistory returns the trailing n daily closes of the fear index, oldest
// first, for the 5-day report listing.
func (u *StockUsecase) VIXHistory(ctx context.Context, n int) ([]entity.Candle, error) {
	candles, err := u.market.History(ctx, "^VIX", "1mo", "1d")
	if err != nil {
		return nil, err
	}
	if len(candles) > n {
		candles = candles[len(candles)-n:]
	}
	return candles, nil
}

// taiwanYahooQuote probes the main board first, then OTC. Only a
// symbol-not-found answer triggers the second probe; an outage on the first
// must not be misread as "try the other board".
func (u *StockUsecase) taiwanYahooQuote(ctx context.Context, symbol string) (*yahoo.Quote, entity.Venue, error) {
	q, err := u.market.Quote(ctx, symbol+".TW")
	if err == nil {
		return q, entity.VenueTWSE, nil
	}
	if !errors.Is(err, fetcherr.ErrUpstreamEmpty) {
		return nil, "", err
	}
	q, err = u.market.Quote(ctx, symbol+".TWO")
	if err != nil {
		return nil, "", err
	}
	return q, entity.VenueOTC, nil
}

// fromRealtime converts a realtime feed payload into the domain quote.
func (u *StockUsecase) fromRealtime(ctx context.Context, symbol string, q *fugle.Quote) *entity.Quote {
	venue := entity.VenueTWSE
	if q.Market == "OTC" {
		venue = entity.VenueOTC
	}
	price := q.LastPrice
	if price == 0 {
		price = q.PreviousClose
	}
	quote := &entity.Quote{
		Symbol:    symbol,
		Name:      q.Name,
		Price:     price,
		PrevClose: q.PreviousClose,
		Change:    price - q.PreviousClose,
		High:      q.HighPrice,
		Low:       q.LowPrice,
		Volume:    q.Total.TradeVolume,
		Venue:     venue,
	}
	if q.PreviousClose != 0 {
		quote.ChangePercent = quote.Change / q.PreviousClose * 100
	}
	if quote.Name == "" {
		quote.Name = u.displayName(ctx, symbol, symbol)
	}
	u.attachLimits(quote)
	u.attachValuation(ctx, quote, venue)
	return quote
}

// normalize converts a market-data quote into the domain quote.
func (u *StockUsecase) normalize(symbol string, q *yahoo.Quote, venue entity.Venue) *entity.Quote {
	quote := &entity.Quote{
		Symbol:    symbol,
		Name:      q.Name,
		Price:     q.Price,
		PrevClose: q.PrevClose,
		Change:    q.Price - q.PrevClose,
		High:      q.High,
		Low:       q.Low,
		Volume:    q.Volume,
		Venue:     venue,
	}
	if q.PrevClose != 0 {
		quote.ChangePercent = quote.Change / q.PrevClose * 100
	}
	return quote
}

// attachLimits derives the regulatory daily band for Taiwan listings.
func (u *StockUsecase) attachLimits(q *entity.Quote) {
	if q.PrevClose <= 0 {
		return
	}
	up := entity.LimitUp(q.PrevClose)
	down := entity.LimitDown(q.PrevClose)
	q.LimitUp = &up
	q.LimitDown = &down
}

// displayName resolves the exchange's Chinese name for a symbol, cached for
// an hour. Failures fall back to the given default without surfacing.
func (u *StockUsecase) displayName(ctx context.Context, symbol, fallback string) string {
	key := cache.Key("stockname", symbol)
	if raw, ok := u.store.Get(ctx, key); ok {
		return string(raw)
	}
	name, err := u.exchange.StockName(ctx, symbol)
	if err != nil || name == "" {
		if fallback != "" {
			return fallback
		}
		return symbol
	}
	u.store.Set(ctx, key, []byte(name), nameCacheTTL)
	return name
}

// attachValuation fills PE / PB / yield from the exchange report. The report
// covers main-board listings only, so OTC and foreign quotes keep the dash.
func (u *StockUsecase) attachValuation(ctx context.Context, q *entity.Quote, venue entity.Venue) {
	q.PERatio, q.PBRatio, q.Yield = "-", "-", "-"
	if venue != entity.VenueTWSE {
		return
	}
	stats, err := u.valuationStats(ctx)
	if err != nil {
		slog.Warn("valuation stats unavailable", "symbol", q.Symbol, "error", err)
		return
	}
	if s, ok := stats[q.Symbol]; ok {
		q.PERatio, q.PBRatio, q.Yield = s.PERatio, s.PBRatio, s.Yield
	}
}

// valuationStats returns the whole-market valuation report, cached since a
// single report serves every symbol.
func (u *StockUsecase) valuationStats(ctx context.Context) (map[string]twse.ValuationStats, error) {
	key := cache.Key("twse", "valuation")
	if raw, ok := u.store.Get(ctx, key); ok {
		var cached map[string]twse.ValuationStats
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}
	stats, err := u.exchange.ValuationStats(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(stats); err == nil {
		u.store.Set(ctx, key, raw, valuationCacheTTL)
	}
	return stats, nil
}

// FormatSignedPercent renders a change percentage with an explicit plus on
// gains; losses already carry the minus.
func FormatSignedPercent(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatSigned renders a change value with an explicit plus on gains.
func FormatSigned(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// ChangeColor maps price movement onto the Taiwan market color convention:
// red for gains, green for losses.
func ChangeColor(change float64) string {
	switch {
	case change > 0:
		return "#eb4e3d"
	case change < 0:
		return "#27ba46"
	default:
		return "#333333"
	}
}

// IsTaiwanSymbol reports whether a chat token looks like a Taiwan stock
// code: four to six alphanumeric characters with at least one digit, which
// also covers lettered ETF series like 00878B. Pure alphabetic tickers are
// foreign and must be classified before this check runs.
func IsTaiwanSymbol(token string) bool {
	if len(token) < 4 || len(token) > 6 {
		return false
	}
	digits := 0
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return digits >= 1
}
