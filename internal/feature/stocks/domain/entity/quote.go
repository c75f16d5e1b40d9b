// Package entity defines the stock feature's domain records.
package entity

import "time"

// Venue is the listing venue of an instrument.
type Venue string

const (
	VenueTWSE    Venue = "上市" // Taiwan main board
	VenueOTC     Venue = "上櫃" // Taiwan over-the-counter
	VenueForeign Venue = "海外"
)

// Candle is one aggregated price bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote is a normalized live quote for one instrument. Optional numerics are
// pointers so that formatting can branch on presence instead of relying on
// zero values that may be legitimate prices.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PrevClose     float64 `json:"prev_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	Venue         Venue   `json:"venue"`

	// Taiwan listings only: regulatory daily price band.
	LimitUp   *float64 `json:"limit_up,omitempty"`
	LimitDown *float64 `json:"limit_down,omitempty"`

	// Valuation stats from the exchange open-data feed; "-" when unpublished.
	PERatio  string `json:"pe_ratio,omitempty"`
	PBRatio  string `json:"pb_ratio,omitempty"`
	Yield    string `json:"yield,omitempty"`

	// Foreign listings only: trailing 52-week range.
	Week52High *float64 `json:"week_52_high,omitempty"`
	Week52Low  *float64 `json:"week_52_low,omitempty"`
}

// DashboardItem is one row of the greeting dashboard (index or benchmark
// snapshot with preformatted display strings).
type DashboardItem struct {
	Symbol        string
	Name          string
	Price         string
	ChangePercent string
	Color         string
	ActionText    string // message sent when the row is tapped
}
