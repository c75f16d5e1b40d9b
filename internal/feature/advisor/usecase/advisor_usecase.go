// Package usecase implements the AI advisory flow: turn an indicator
// snapshot into a prompt, call the model, and parse the structured answer.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"finance_linebot/internal/feature/advisor/domain/entity"
	"finance_linebot/internal/feature/indicators"
)

// Analyzer generates a completion for a prompt.
// Following Go convention, the interface is defined on the consumer side.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// AdvisorUsecase builds prompts and normalizes model answers.
type AdvisorUsecase struct {
	analyzer Analyzer
}

// NewAdvisorUsecase creates an AdvisorUsecase.
func NewAdvisorUsecase(analyzer Analyzer) *AdvisorUsecase {
	return &AdvisorUsecase{analyzer: analyzer}
}

// Analyze asks the model for a trading read on one instrument. A JSON answer
// is parsed into the full Advisory; prose answers degrade to a raw-text-only
// result rather than failing the command.
func (u *AdvisorUsecase) Analyze(ctx context.Context, symbol, name string, snap *indicators.Snapshot) (*entity.Advisory, error) {
	text, err := u.analyzer.Analyze(ctx, BuildPrompt(symbol, name, snap))
	if err != nil {
		return nil, err
	}
	return ParseAdvisory(text), nil
}

// BuildPrompt renders the indicator snapshot into the analysis prompt.
// Indicators whose window did not fill are listed as 無資料 so the model does
// not mistake a missing value for zero.
func BuildPrompt(symbol, name string, snap *indicators.Snapshot) string {
	volumeTrend := "無資料"
	if snap.VolumeDelta != nil {
		if *snap.VolumeDelta > 0 {
			volumeTrend = "量增"
		} else {
			volumeTrend = "量縮"
		}
	}

	maPosition := "無資料"
	if snap.SMA20 != nil {
		if snap.Close > *snap.SMA20 {
			maPosition = "高於月線"
		} else {
			maPosition = "低於月線"
		}
	}

	macdTrend := "無資料"
	if snap.MACDHist != nil {
		if *snap.MACDHist > 0 {
			macdTrend = fmt.Sprintf("%.2f (多頭增強)", *snap.MACDHist)
		} else {
			macdTrend = fmt.Sprintf("%.2f (空頭增強)", *snap.MACDHist)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "你是一位華爾街資深操盤手。請根據以下數據分析 %s (%s) 的走勢。\n\n", name, symbol)
	b.WriteString("【市場數據】\n")
	fmt.Fprintf(&b, "- 現價: %.2f\n", snap.Close)
	fmt.Fprintf(&b, "- 漲跌幅: %.2f%%\n", snap.ChangePercent)
	fmt.Fprintf(&b, "- 成交量變化: %s\n\n", volumeTrend)
	b.WriteString("【技術指標】\n")
	fmt.Fprintf(&b, "- RSI (14): %s (強弱指標，>70超買, <30超賣)\n", formatOpt(snap.RSI))
	fmt.Fprintf(&b, "- MACD 柱狀圖: %s\n", macdTrend)
	fmt.Fprintf(&b, "- 收盤 vs MA20: %s\n", maPosition)
	fmt.Fprintf(&b, "- 布林通道: 上軌 %s, 下軌 %s\n\n", formatOpt(snap.BBUpper), formatOpt(snap.BBLower))
	b.WriteString("【輸出要求】\n")
	b.WriteString("請直接回傳一個合法的 JSON 物件 (不要有 markdown code block)，格式如下：\n")
	b.WriteString(`{
  "sentiment": "看多/看空/盤整",
  "support_price": <數值，下方支撐位，若無請填 null>,
  "resistance_price": <數值，上方壓力位，若無請填 null>,
  "action": "建議的操作",
  "reason": "簡短分析理由 (100字內)",
  "formatted_text": "完整分析報告 (條列式，包含市場情緒、關鍵價位、趨勢分析、操作建議，300字內)"
}`)
	return b.String()
}

func formatOpt(v *float64) string {
	if v == nil {
		return "無資料"
	}
	return fmt.Sprintf("%.2f", *v)
}

// ParseAdvisory decodes the model answer. Code fences around the JSON are
// stripped first; if decoding still fails the raw text becomes the report
// body with every structured field left empty.
func ParseAdvisory(text string) *entity.Advisory {
	cleaned := StripCodeFence(text)

	var adv entity.Advisory
	if err := json.Unmarshal([]byte(cleaned), &adv); err == nil && adv.FormattedText != "" {
		return &adv
	}
	return &entity.Advisory{
		Sentiment:     "未知",
		FormattedText: strings.TrimSpace(text),
	}
}

// StripCodeFence removes a surrounding markdown code fence, with or without
// a language tag, leaving other text untouched.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
