package entity

// VIXSummary is the fear-index snapshot used by the daily report.
type VIXSummary struct {
	Price         float64
	Change        float64
	ChangePercent float64
	Sentiment     string // banded market mood, e.g. "😰 市場緊張"
	Description   string
}

// VIXLevel maps an index value onto its sentiment band.
func VIXLevel(price float64) (sentiment, description string) {
	switch {
	case price < 15:
		return "😌 市場平靜", "投資人情緒穩定"
	case price < 20:
		return "📊 正常波動", "市場處於正常狀態"
	case price < 30:
		return "😰 市場緊張", "投資人開始擔憂"
	default:
		return "😱 高度恐慌", "市場處於恐慌狀態"
	}
}
