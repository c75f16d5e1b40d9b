// Package usecase implements the forex feature's application logic: cached
// bank-rate listings and live FX quotes against TWD.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finance_linebot/internal/feature/forex/domain/entity"
	"finance_linebot/internal/platform/cache"
	"finance_linebot/internal/platform/externalapi/yahoo"
)

const (
	// rateCacheTTL bounds how stale a bank-rate listing may be served.
	rateCacheTTL = 5 * time.Minute
	// maxBanks caps the listing at the cheapest sellers.
	maxBanks = 10
)

// RateSource fetches per-bank retail selling prices for a currency.
// Following Go convention, the interface is defined on the consumer side.
type RateSource interface {
	BankRates(ctx context.Context, currency string) ([]entity.RateRecord, error)
}

// QuoteSource fetches a live market quote for a symbol.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*yahoo.Quote, error)
}

// ForexUsecase serves bank-rate rankings and live FX quotes.
type ForexUsecase struct {
	rates  RateSource
	quotes QuoteSource
	store  cache.Store
}

// NewForexUsecase creates a ForexUsecase.
func NewForexUsecase(rates RateSource, quotes QuoteSource, store cache.Store) *ForexUsecase {
	return &ForexUsecase{rates: rates, quotes: quotes, store: store}
}

// BankRates returns the cheapest banks selling the currency, best price
// first, at most ten entries. Results are cached; within the TTL the scrape
// is not repeated and callers see identical listings.
func (u *ForexUsecase) BankRates(ctx context.Context, currency string) ([]entity.RateRecord, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	key := cache.Key("rates", currency)

	if raw, ok := u.store.Get(ctx, key); ok {
		var cached []entity.RateRecord
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		slog.Warn("discarding undecodable rate cache entry", "key", key)
	}

	records, err := u.rates.BankRates(ctx, currency)
	if err != nil {
		return nil, err
	}
	if len(records) > maxBanks {
		records = records[:maxBanks]
	}

	if raw, err := json.Marshal(records); err == nil {
		u.store.Set(ctx, key, raw, rateCacheTTL)
	}
	return records, nil
}

// Quote returns the live mid-market rate for currency against TWD, with the
// change figures derived from the previous close.
func (u *ForexUsecase) Quote(ctx context.Context, currency string) (*entity.FxQuote, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	q, err := u.quotes.Quote(ctx, fmt.Sprintf("%sTWD=X", currency))
	if err != nil {
		return nil, err
	}

	fx := &entity.FxQuote{
		Currency:  currency,
		Price:     q.Price,
		PrevClose: q.PrevClose,
		Change:    q.Price - q.PrevClose,
	}
	if q.PrevClose != 0 {
		fx.ChangePercent = fx.Change / q.PrevClose * 100
	}
	return fx, nil
}
