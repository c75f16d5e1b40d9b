// Package entity defines the advisor feature's domain records.
package entity

// Advisory is the structured recommendation parsed from the model response.
// When the model answers with prose instead of the requested JSON, only
// FormattedText is populated and the price levels stay nil.
type Advisory struct {
	Sentiment       string   `json:"sentiment"`
	SupportPrice    *float64 `json:"support_price"`
	ResistancePrice *float64 `json:"resistance_price"`
	Action          string   `json:"action"`
	Reason          string   `json:"reason"`
	FormattedText   string   `json:"formatted_text"`
}
