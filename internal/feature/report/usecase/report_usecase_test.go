package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	forexentity "finance_linebot/internal/feature/forex/domain/entity"
	stocksentity "finance_linebot/internal/feature/stocks/domain/entity"
)

// mockRateSource is a func-field mock for the RateSource interface.
type mockRateSource struct {
	BankRatesFunc func(ctx context.Context, currency string) ([]forexentity.RateRecord, error)
}

func (m *mockRateSource) BankRates(ctx context.Context, currency string) ([]forexentity.RateRecord, error) {
	if m.BankRatesFunc != nil {
		return m.BankRatesFunc(ctx, currency)
	}
	return nil, errors.New("BankRatesFunc is not implemented")
}

// mockVIXSource is a func-field mock for the VIXSource interface.
type mockVIXSource struct {
	VIXHistoryFunc func(ctx context.Context, n int) ([]stocksentity.Candle, error)
}

func (m *mockVIXSource) VIXHistory(ctx context.Context, n int) ([]stocksentity.Candle, error) {
	if m.VIXHistoryFunc != nil {
		return m.VIXHistoryFunc(ctx, n)
	}
	return nil, errors.New("VIXHistoryFunc is not implemented")
}

func rateRows(n int) []forexentity.RateRecord {
	out := make([]forexentity.RateRecord, n)
	for i := range out {
		out[i] = forexentity.RateRecord{
			Bank:     fmt.Sprintf("銀行%d", i+1),
			CashSell: fmt.Sprintf("0.0%d", 20+i),
		}
	}
	return out
}

func vixCandles(closes ...float64) []stocksentity.Candle {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	out := make([]stocksentity.Candle, len(closes))
	for i, c := range closes {
		out[i] = stocksentity.Candle{Time: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

// morning pins the greeting band so the prefix is predictable.
func morning() time.Time {
	return time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC) // 09:00 in Taipei
}

func TestForexReport(t *testing.T) {
	rates := &mockRateSource{
		BankRatesFunc: func(ctx context.Context, currency string) ([]forexentity.RateRecord, error) {
			if currency != "KRW" {
				t.Fatalf("currency = %q", currency)
			}
			return rateRows(12), nil
		},
	}
	u := NewReportUsecase(rates, &mockVIXSource{})
	u.now = morning

	got, err := u.ForexReport(context.Background(), "KRW")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "早上好 🌞！") {
		t.Fatalf("missing greeting prefix: %q", got)
	}
	if !strings.Contains(got, "📊 KRW 匯率報告 (Top 10)") {
		t.Fatalf("missing header: %q", got)
	}
	if !strings.Contains(got, "銀行10") || strings.Contains(got, "銀行11") {
		t.Fatalf("ranking not trimmed to ten rows: %q", got)
	}
}

func TestForexReport_PropagatesFailure(t *testing.T) {
	rates := &mockRateSource{
		BankRatesFunc: func(ctx context.Context, currency string) ([]forexentity.RateRecord, error) {
			return nil, errors.New("scrape down")
		},
	}
	u := NewReportUsecase(rates, &mockVIXSource{})
	u.now = morning

	if _, err := u.ForexReport(context.Background(), "KRW"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestVIXReport(t *testing.T) {
	vix := &mockVIXSource{
		VIXHistoryFunc: func(ctx context.Context, n int) ([]stocksentity.Candle, error) {
			if n != 5 {
				t.Fatalf("n = %d", n)
			}
			return vixCandles(16.1, 17.2, 18.0, 19.5, 22.3), nil
		},
	}
	u := NewReportUsecase(&mockRateSource{}, vix)
	u.now = morning

	got, err := u.VIXReport(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"📉 VIX 恐慌指數報告",
		"2025-06-02: 16.10",
		"2025-06-06: 22.30",
		"目前狀態：😰 市場緊張",
		"💡 說明：",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestVIXReport_EmptyHistory(t *testing.T) {
	vix := &mockVIXSource{
		VIXHistoryFunc: func(ctx context.Context, n int) ([]stocksentity.Candle, error) {
			return nil, nil
		},
	}
	u := NewReportUsecase(&mockRateSource{}, vix)
	u.now = morning

	if _, err := u.VIXReport(context.Background()); err == nil {
		t.Fatal("expected an error for empty history")
	}
}

func TestDailyReport(t *testing.T) {
	rates := &mockRateSource{
		BankRatesFunc: func(ctx context.Context, currency string) ([]forexentity.RateRecord, error) {
			if currency != "KRW" {
				t.Fatalf("currency = %q", currency)
			}
			return rateRows(8), nil
		},
	}
	vix := &mockVIXSource{
		VIXHistoryFunc: func(ctx context.Context, n int) ([]stocksentity.Candle, error) {
			return vixCandles(12.0, 12.5, 13.0, 13.2, 13.4), nil
		},
	}
	u := NewReportUsecase(rates, vix)
	u.now = morning

	got, err := u.DailyReport(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "📊 韓幣匯率") {
		t.Fatalf("missing rate section: %q", got)
	}
	if !strings.Contains(got, "銀行5") || strings.Contains(got, "銀行6") {
		t.Fatalf("rate section not trimmed to five rows: %q", got)
	}
	if !strings.Contains(got, "目前狀態：😌 市場平靜") {
		t.Fatalf("missing vix section: %q", got)
	}
}
