// Package entity defines the forex feature's domain records.
package entity

// NoRateSentinel sorts banks without a usable numeric price after every bank
// that quotes one, instead of failing the whole listing.
const NoRateSentinel = 9999.0

// RateRecord is one bank's retail selling prices for a currency, as scraped
// from the rate-comparison site. CashSell and SpotSell keep the source's raw
// cell text ("--" when the bank does not trade that form).
type RateRecord struct {
	Bank      string  `json:"bank"`
	CashSell  string  `json:"cash_sell"`
	SpotSell  string  `json:"spot_sell"`
	UpdatedAt string  `json:"updated_at"`
	SortKey   float64 `json:"sort_key"` // cash price, else spot price, else NoRateSentinel
}

// FxQuote is a live exchange-rate snapshot for one currency against TWD.
type FxQuote struct {
	Currency      string  `json:"currency"`
	Price         float64 `json:"price"`
	PrevClose     float64 `json:"prev_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}
