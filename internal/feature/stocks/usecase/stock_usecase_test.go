package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"finance_linebot/internal/feature/stocks/adapters/fugle"
	"finance_linebot/internal/feature/stocks/adapters/twse"
	"finance_linebot/internal/feature/stocks/domain/entity"
	"finance_linebot/internal/platform/cache"
	"finance_linebot/internal/platform/externalapi/yahoo"
	"finance_linebot/internal/shared/fetcherr"
)

// mockMarketSource is a func-field mock for the MarketSource interface.
type mockMarketSource struct {
	QuoteFunc   func(ctx context.Context, symbol string) (*yahoo.Quote, error)
	HistoryFunc func(ctx context.Context, symbol, rng, interval string) ([]entity.Candle, error)
}

func (m *mockMarketSource) Quote(ctx context.Context, symbol string) (*yahoo.Quote, error) {
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, symbol)
	}
	return nil, errors.New("QuoteFunc is not implemented")
}

func (m *mockMarketSource) History(ctx context.Context, symbol, rng, interval string) ([]entity.Candle, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, symbol, rng, interval)
	}
	return nil, errors.New("HistoryFunc is not implemented")
}

// mockRealtimeSource is a func-field mock for the RealtimeSource interface.
type mockRealtimeSource struct {
	EnabledFunc       func() bool
	IntradayQuoteFunc func(ctx context.Context, symbol string) (*fugle.Quote, error)
}

func (m *mockRealtimeSource) Enabled() bool {
	if m.EnabledFunc != nil {
		return m.EnabledFunc()
	}
	return false
}

func (m *mockRealtimeSource) IntradayQuote(ctx context.Context, symbol string) (*fugle.Quote, error) {
	if m.IntradayQuoteFunc != nil {
		return m.IntradayQuoteFunc(ctx, symbol)
	}
	return nil, errors.New("IntradayQuoteFunc is not implemented")
}

// mockExchangeSource is a func-field mock for the ExchangeSource interface.
type mockExchangeSource struct {
	StockNameFunc      func(ctx context.Context, symbol string) (string, error)
	ValuationStatsFunc func(ctx context.Context) (map[string]twse.ValuationStats, error)
}

func (m *mockExchangeSource) StockName(ctx context.Context, symbol string) (string, error) {
	if m.StockNameFunc != nil {
		return m.StockNameFunc(ctx, symbol)
	}
	return symbol, nil
}

func (m *mockExchangeSource) ValuationStats(ctx context.Context) (map[string]twse.ValuationStats, error) {
	if m.ValuationStatsFunc != nil {
		return m.ValuationStatsFunc(ctx)
	}
	return nil, fetcherr.ErrUpstreamUnavailable
}

func newUsecase(market *mockMarketSource, realtime *mockRealtimeSource, exchange *mockExchangeSource) *StockUsecase {
	if market == nil {
		market = &mockMarketSource{}
	}
	if realtime == nil {
		realtime = &mockRealtimeSource{}
	}
	if exchange == nil {
		exchange = &mockExchangeSource{}
	}
	return NewStockUsecase(market, realtime, exchange, cache.NewMemoryStore())
}

// TestTaiwanQuote_MainBoard covers the happy path without the realtime feed:
// .TW resolves, limits derive from the previous close, valuation attaches.
func TestTaiwanQuote_MainBoard(t *testing.T) {
	t.Parallel()

	market := &mockMarketSource{
		QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
			if symbol != "2330.TW" {
				t.Errorf("symbol = %q, want 2330.TW", symbol)
			}
			return &yahoo.Quote{Symbol: symbol, Price: 648, PrevClose: 644, Volume: 30000}, nil
		},
	}
	exchange := &mockExchangeSource{
		StockNameFunc: func(ctx context.Context, symbol string) (string, error) {
			return "台積電", nil
		},
		ValuationStatsFunc: func(ctx context.Context) (map[string]twse.ValuationStats, error) {
			return map[string]twse.ValuationStats{
				"2330": {PERatio: "25.5", PBRatio: "6.1", Yield: "1.8"},
			}, nil
		},
	}
	uc := newUsecase(market, nil, exchange)

	q, err := uc.TaiwanQuote(context.Background(), "2330")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Name != "台積電" || q.Venue != entity.VenueTWSE {
		t.Errorf("name/venue = %q/%q", q.Name, q.Venue)
	}
	if q.LimitUp == nil || *q.LimitUp != 708 {
		t.Errorf("limit up = %v, want 708", q.LimitUp)
	}
	if q.LimitDown == nil || *q.LimitDown != 580 {
		t.Errorf("limit down = %v, want 580", q.LimitDown)
	}
	if q.PERatio != "25.5" || q.Yield != "1.8" {
		t.Errorf("valuation = %q/%q", q.PERatio, q.Yield)
	}
}

// TestTaiwanQuote_OTCFallback probes .TWO only after .TW answers not-found.
func TestTaiwanQuote_OTCFallback(t *testing.T) {
	t.Parallel()

	var probed []string
	market := &mockMarketSource{
		QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
			probed = append(probed, symbol)
			if symbol == "5483.TW" {
				return nil, fmt.Errorf("unknown: %w", fetcherr.ErrUpstreamEmpty)
			}
			return &yahoo.Quote{Symbol: symbol, Price: 200, PrevClose: 195}, nil
		},
	}
	uc := newUsecase(market, nil, nil)

	q, err := uc.TaiwanQuote(context.Background(), "5483")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Venue != entity.VenueOTC {
		t.Errorf("venue = %q, want OTC", q.Venue)
	}
	if len(probed) != 2 || probed[0] != "5483.TW" || probed[1] != "5483.TWO" {
		t.Errorf("probe order = %v", probed)
	}
	// OTC is outside the main-board valuation report.
	if q.PERatio != "-" {
		t.Errorf("OTC PE = %q, want -", q.PERatio)
	}
}

// TestTaiwanQuote_OutageIsNotFallback keeps an upstream outage on .TW from
// being misread as "symbol is OTC".
func TestTaiwanQuote_OutageIsNotFallback(t *testing.T) {
	t.Parallel()

	calls := 0
	market := &mockMarketSource{
		QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
			calls++
			return nil, fmt.Errorf("boom: %w", fetcherr.ErrUpstreamUnavailable)
		},
	}
	uc := newUsecase(market, nil, nil)

	_, err := uc.TaiwanQuote(context.Background(), "2330")
	if !errors.Is(err, fetcherr.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Errorf("quote called %d times, want 1 (no OTC probe on outage)", calls)
	}
}

// TestTaiwanQuote_RealtimePrimary prefers the realtime feed and degrades to
// the market API when it fails.
func TestTaiwanQuote_RealtimePrimary(t *testing.T) {
	t.Parallel()

	t.Run("realtime answers", func(t *testing.T) {
		t.Parallel()
		realtime := &mockRealtimeSource{
			EnabledFunc: func() bool { return true },
			IntradayQuoteFunc: func(ctx context.Context, symbol string) (*fugle.Quote, error) {
				q := &fugle.Quote{Symbol: symbol, Name: "台積電", Market: "TSE", PreviousClose: 644, LastPrice: 648}
				q.Total.TradeVolume = 25000
				return q, nil
			},
		}
		market := &mockMarketSource{
			QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
				t.Error("market API must not be hit when realtime answers")
				return nil, fetcherr.ErrUpstreamUnavailable
			},
		}
		uc := newUsecase(market, realtime, nil)

		q, err := uc.TaiwanQuote(context.Background(), "2330")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Price != 648 || q.Venue != entity.VenueTWSE || q.Volume != 25000 {
			t.Errorf("unexpected quote: %+v", q)
		}
		if q.LimitUp == nil || *q.LimitUp != 708 {
			t.Errorf("limit up = %v, want 708", q.LimitUp)
		}
	})

	t.Run("realtime quota spent falls back", func(t *testing.T) {
		t.Parallel()
		realtime := &mockRealtimeSource{
			EnabledFunc: func() bool { return true },
			IntradayQuoteFunc: func(ctx context.Context, symbol string) (*fugle.Quote, error) {
				return nil, fmt.Errorf("budget: %w", fetcherr.ErrQuotaExceeded)
			},
		}
		market := &mockMarketSource{
			QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
				return &yahoo.Quote{Symbol: symbol, Price: 650, PrevClose: 644}, nil
			},
		}
		uc := newUsecase(market, realtime, nil)

		q, err := uc.TaiwanQuote(context.Background(), "2330")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Price != 650 {
			t.Errorf("price = %v, want fallback 650", q.Price)
		}
	})
}

// TestForeignQuote fills the 52-week range and never probes Taiwan suffixes.
func TestForeignQuote(t *testing.T) {
	t.Parallel()

	hi, lo := 237.23, 164.08
	market := &mockMarketSource{
		QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
			if symbol != "AAPL" {
				t.Errorf("symbol = %q, want AAPL", symbol)
			}
			return &yahoo.Quote{Symbol: symbol, Name: "Apple Inc.", Price: 230, PrevClose: 228, Week52High: &hi, Week52Low: &lo}, nil
		},
	}
	uc := newUsecase(market, nil, nil)

	q, err := uc.ForeignQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Venue != entity.VenueForeign {
		t.Errorf("venue = %q, want foreign", q.Venue)
	}
	if q.LimitUp != nil || q.LimitDown != nil {
		t.Error("foreign quotes must not carry Taiwan price limits")
	}
	if q.Week52High == nil || *q.Week52High != hi {
		t.Errorf("52w high = %v, want %v", q.Week52High, hi)
	}
}

// TestResolveSymbol_CachesVenue resolves once, then serves the suffix from
// cache.
func TestResolveSymbol_CachesVenue(t *testing.T) {
	t.Parallel()

	calls := 0
	market := &mockMarketSource{
		QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
			calls++
			if symbol == "5483.TW" {
				return nil, fmt.Errorf("unknown: %w", fetcherr.ErrUpstreamEmpty)
			}
			return &yahoo.Quote{Symbol: symbol, Price: 200, PrevClose: 195}, nil
		},
	}
	uc := newUsecase(market, nil, nil)

	resolved, _, err := uc.ResolveSymbol(context.Background(), "5483")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != "5483.TWO" {
		t.Errorf("resolved = %q, want 5483.TWO", resolved)
	}

	quoteCallsAfterFirst := calls
	resolved, _, err = uc.ResolveSymbol(context.Background(), "5483")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != "5483.TWO" {
		t.Errorf("cached resolved = %q, want 5483.TWO", resolved)
	}
	if calls != quoteCallsAfterFirst {
		t.Errorf("resolution re-probed the market API (%d -> %d calls)", quoteCallsAfterFirst, calls)
	}
}

// TestDashboard_SkipsFailedRows keeps the greeting alive when one index is
// unavailable.
func TestDashboard_SkipsFailedRows(t *testing.T) {
	t.Parallel()

	market := &mockMarketSource{
		QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
			if symbol == "^VIX" {
				return nil, fmt.Errorf("boom: %w", fetcherr.ErrUpstreamUnavailable)
			}
			return &yahoo.Quote{Symbol: symbol, Price: 100, PrevClose: 99}, nil
		},
	}
	uc := newUsecase(market, nil, nil)

	items := uc.Dashboard(context.Background())
	if len(items) != 3 {
		t.Fatalf("rows = %d, want 3 (VIX skipped)", len(items))
	}
	for _, it := range items {
		if it.ChangePercent[0] != '+' {
			t.Errorf("%s change %q should carry an explicit plus", it.Symbol, it.ChangePercent)
		}
		if it.Color != "#eb4e3d" {
			t.Errorf("%s color = %q, want up-red", it.Symbol, it.Color)
		}
	}
}

// TestVIXSummary_Bands grades the index into sentiment bands.
func TestVIXSummary_Bands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price     float64
		sentiment string
	}{
		{12, "😌 市場平靜"},
		{17, "📊 正常波動"},
		{25, "😰 市場緊張"},
		{35, "😱 高度恐慌"},
	}
	for _, tc := range tests {
		market := &mockMarketSource{
			QuoteFunc: func(ctx context.Context, symbol string) (*yahoo.Quote, error) {
				return &yahoo.Quote{Symbol: symbol, Price: tc.price, PrevClose: tc.price}, nil
			},
		}
		uc := newUsecase(market, nil, nil)
		s, err := uc.VIXSummary(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Sentiment != tc.sentiment {
			t.Errorf("VIX %v sentiment = %q, want %q", tc.price, s.Sentiment, tc.sentiment)
		}
	}
}

// TestFormatting pins the sign and color conventions used by the cards.
func TestFormatting(t *testing.T) {
	t.Parallel()

	if got := FormatSignedPercent(1.5); got != "+1.50%" {
		t.Errorf("FormatSignedPercent(1.5) = %q", got)
	}
	if got := FormatSignedPercent(-0.3); got != "-0.30%" {
		t.Errorf("FormatSignedPercent(-0.3) = %q", got)
	}
	if got := FormatSigned(0); got != "0.00" {
		t.Errorf("FormatSigned(0) = %q", got)
	}
	if ChangeColor(1) != "#eb4e3d" || ChangeColor(-1) != "#27ba46" || ChangeColor(0) != "#333333" {
		t.Error("ChangeColor mapping is wrong")
	}
}

// TestIsTaiwanSymbol separates Taiwan codes from foreign tickers.
func TestIsTaiwanSymbol(t *testing.T) {
	t.Parallel()

	valid := []string{"2330", "0050", "00878", "00878B", "5483"}
	invalid := []string{"AAPL", "TSLA", "233", "XYZQ123", "1234567", "23-30"}
	for _, s := range valid {
		if !IsTaiwanSymbol(s) {
			t.Errorf("IsTaiwanSymbol(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsTaiwanSymbol(s) {
			t.Errorf("IsTaiwanSymbol(%q) = true, want false", s)
		}
	}
}
