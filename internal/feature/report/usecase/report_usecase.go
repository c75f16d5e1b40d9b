// Package usecase assembles the cron-triggered push reports: per-currency
// bank rates, the VIX fear-index report and the combined daily report.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	botusecase "finance_linebot/internal/feature/bot/usecase"
	forexentity "finance_linebot/internal/feature/forex/domain/entity"
	stocksentity "finance_linebot/internal/feature/stocks/domain/entity"
)

// RateSource fetches the ranked bank-rate listing for a currency.
// Following Go convention, the interface is defined on the consumer side.
type RateSource interface {
	BankRates(ctx context.Context, currency string) ([]forexentity.RateRecord, error)
}

// VIXSource fetches the fear-index history.
type VIXSource interface {
	VIXHistory(ctx context.Context, n int) ([]stocksentity.Candle, error)
}

// ReportUsecase renders the push-report texts.
type ReportUsecase struct {
	rates RateSource
	vix   VIXSource
	now   func() time.Time
}

// NewReportUsecase creates a ReportUsecase.
func NewReportUsecase(rates RateSource, vix VIXSource) *ReportUsecase {
	return &ReportUsecase{rates: rates, vix: vix, now: time.Now}
}

// ForexReport renders the top-10 bank ranking for one currency, prefixed
// with the time-of-day greeting.
func (u *ReportUsecase) ForexReport(ctx context.Context, currency string) (string, error) {
	records, err := u.rates.BankRates(ctx, currency)
	if err != nil {
		return "", fmt.Errorf("forex report %s: %w", currency, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s！\n\n", botusecase.Greeting(u.now()))
	fmt.Fprintf(&b, "📊 %s 匯率報告 (Top 10)\n%s\n", currency, strings.Repeat("-", 20))
	for i, r := range records {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "%s: %s\n", r.Bank, r.CashSell)
	}
	return b.String(), nil
}

// VIXReport renders the 5-day fear-index listing with its sentiment band.
func (u *ReportUsecase) VIXReport(ctx context.Context) (string, error) {
	body, err := u.vixBody(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s！\n\n%s", botusecase.Greeting(u.now()), body), nil
}

// DailyReport combines the KRW top-5 ranking and the VIX report into the
// single legacy push payload.
func (u *ReportUsecase) DailyReport(ctx context.Context) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s！\n\n", botusecase.Greeting(u.now()))

	records, err := u.rates.BankRates(ctx, "KRW")
	if err != nil {
		return "", fmt.Errorf("daily report rates: %w", err)
	}
	b.WriteString("📊 韓幣匯率\n")
	for i, r := range records {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "%s: %s\n", r.Bank, r.CashSell)
	}

	body, err := u.vixBody(ctx)
	if err != nil {
		return "", fmt.Errorf("daily report vix: %w", err)
	}
	b.WriteString("\n")
	b.WriteString(body)
	return b.String(), nil
}

// vixBody renders the report trunk shared by VIXReport and DailyReport.
func (u *ReportUsecase) vixBody(ctx context.Context) (string, error) {
	candles, err := u.vix.VIXHistory(ctx, 5)
	if err != nil {
		return "", fmt.Errorf("vix history: %w", err)
	}
	if len(candles) == 0 {
		return "", fmt.Errorf("vix history returned no bars")
	}

	latest := candles[len(candles)-1].Close
	sentiment, desc := stocksentity.VIXLevel(latest)

	sep := strings.Repeat("=", 25)
	var b strings.Builder
	fmt.Fprintf(&b, "📉 VIX 恐慌指數報告\n%s\n\n📅 過去 5 天 VIX 數值：\n\n", sep)
	for _, c := range candles {
		fmt.Fprintf(&b, "%s: %.2f\n", c.Time.Format("2006-01-02"), c.Close)
	}
	fmt.Fprintf(&b, "\n%s\n目前狀態：%s\n%s\n\n", sep, sentiment, desc)
	b.WriteString("💡 說明：\n• VIX < 15: 市場平靜\n• VIX 15-20: 正常波動\n• VIX 20-30: 市場緊張\n• VIX > 30: 高度恐慌")
	return b.String(), nil
}
