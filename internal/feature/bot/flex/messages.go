// Package flex builds the bot's reply payloads: Flex cards, image messages
// and the plain-text fallbacks. All color and sign conventions live here.
package flex

import (
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	forexentity "finance_linebot/internal/feature/forex/domain/entity"
	stocksentity "finance_linebot/internal/feature/stocks/domain/entity"
)

// Taiwan market convention: red up, green down.
const (
	colorUp      = "#eb4e3d"
	colorDown    = "#27ba46"
	colorNeutral = "#333333"
	colorAccent  = "#1DB446"
	colorMuted   = "#aaaaaa"
)

// maxTextLen is the platform ceiling for one text message.
const maxTextLen = 5000

// Text wraps a string into a text message, truncated to the platform limit.
func Text(s string) messaging_api.TextMessage {
	return messaging_api.TextMessage{Text: Truncate(s)}
}

// Image wraps a hosted chart URL into an image message.
func Image(url string) messaging_api.ImageMessage {
	return messaging_api.ImageMessage{
		OriginalContentUrl: url,
		PreviewImageUrl:    url,
	}
}

// Truncate caps s at the outbound message-size ceiling, appending a marker
// when content was dropped.
func Truncate(s string) string {
	const marker = "…(內容過長已截斷)"
	runes := []rune(s)
	if len(runes) <= maxTextLen {
		return s
	}
	return string(runes[:maxTextLen-len([]rune(marker))]) + marker
}

// changeStyle returns the accent color and sign prefix for a price movement.
func changeStyle(change float64) (color, sign string) {
	switch {
	case change > 0:
		return colorUp, "+"
	case change < 0:
		return colorDown, ""
	default:
		return colorNeutral, ""
	}
}

// CurrencyCard is the FX quote card: live price, top-5 bank ranking and
// chart shortcut buttons. banks may be empty when the scrape failed; the
// card then shows a placeholder row instead of omitting the section.
func CurrencyCard(q *forexentity.FxQuote, banks []forexentity.RateRecord) messaging_api.FlexMessage {
	color, sign := changeStyle(q.Change)

	bankRows := []messaging_api.FlexComponentInterface{
		messaging_api.FlexBox{
			Layout: "horizontal",
			Contents: []messaging_api.FlexComponentInterface{
				messaging_api.FlexText{Text: "銀行", Size: "xxs", Color: colorMuted, Flex: 3},
				messaging_api.FlexText{Text: "現鈔賣出", Size: "xxs", Color: colorMuted, Align: "end", Flex: 2},
				messaging_api.FlexText{Text: "即期賣出", Size: "xxs", Color: colorMuted, Align: "end", Flex: 2},
			},
		},
	}
	if len(banks) == 0 {
		bankRows = append(bankRows, messaging_api.FlexText{Text: "暫無銀行報價", Size: "xs", Color: "#999999"})
	}
	for i, b := range banks {
		if i >= 5 {
			break
		}
		rowColor := colorNeutral
		weight := ""
		if i == 0 {
			rowColor = colorUp
			weight = "bold"
		}
		bankRows = append(bankRows, messaging_api.FlexBox{
			Layout: "horizontal",
			Margin: "xs",
			Contents: []messaging_api.FlexComponentInterface{
				messaging_api.FlexText{Text: b.Bank, Size: "xs", Color: rowColor, Flex: 3, Weight: messaging_api.FlexTextWEIGHT(weight)},
				messaging_api.FlexText{Text: b.CashSell, Size: "xs", Color: rowColor, Align: "end", Flex: 2},
				messaging_api.FlexText{Text: b.SpotSell, Size: "xs", Color: "#555555", Align: "end", Flex: 2},
			},
		})
	}

	body := messaging_api.FlexBox{
		Layout: "vertical",
		Contents: []messaging_api.FlexComponentInterface{
			messaging_api.FlexText{Text: fmt.Sprintf("%s/TWD 匯率", q.Currency), Weight: "bold", Size: "xl", Color: "#555555"},
			messaging_api.FlexText{Text: "台灣時間即時行情 (Yahoo)", Size: "xxs", Color: colorMuted},
			messaging_api.FlexBox{
				Layout: "baseline",
				Margin: "md",
				Contents: []messaging_api.FlexComponentInterface{
					messaging_api.FlexText{Text: fmt.Sprintf("%.4f", q.Price), Weight: "bold", Size: "3xl", Color: color},
					messaging_api.FlexText{
						Text:   fmt.Sprintf("%s%.4f (%s%.2f%%)", sign, q.Change, sign, q.ChangePercent),
						Size:   "xs",
						Color:  color,
						Margin: "md",
						Flex:   0,
					},
				},
			},
			messaging_api.FlexSeparator{Margin: "lg"},
			messaging_api.FlexText{Text: "🇹🇼 台灣銀行最佳匯率 (Top 5)", Size: "sm", Weight: "bold", Color: "#555555", Margin: "lg"},
			messaging_api.FlexBox{Layout: "vertical", Margin: "md", Spacing: "xs", Contents: bankRows},
			messaging_api.FlexSeparator{Margin: "lg"},
			messaging_api.FlexText{Text: "歷史走勢圖:", Size: "xs", Color: colorMuted, Margin: "md"},
			messaging_api.FlexBox{
				Layout:  "horizontal",
				Margin:  "sm",
				Spacing: "sm",
				Contents: []messaging_api.FlexComponentInterface{
					chartButton("1日走勢", q.Currency+" 1D"),
					chartButton("5日走勢", q.Currency+" 5D"),
				},
			},
			messaging_api.FlexBox{
				Layout:  "horizontal",
				Margin:  "sm",
				Spacing: "sm",
				Contents: []messaging_api.FlexComponentInterface{
					chartButton("1月走勢", q.Currency+" 1M"),
					chartButton("1年走勢", q.Currency+" 1Y"),
				},
			},
			messaging_api.FlexButton{
				Style:  "link",
				Height: "sm",
				Action: messaging_api.MessageAction{Label: "查看完整銀行比價", Text: q.Currency + " 列表"},
			},
		},
	}

	return messaging_api.FlexMessage{
		AltText:  fmt.Sprintf("%s 匯率快報", q.Currency),
		Contents: messaging_api.FlexBubble{Body: &body},
	}
}

// DegradedRateList is the text-only fallback when the live quote is down but
// the bank scrape succeeded.
func DegradedRateList(currency string, banks []forexentity.RateRecord) messaging_api.TextMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s 匯率 (無即時盤)\n----------------\n", currency)
	for i, r := range banks {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "%s: %s\n", r.Bank, r.CashSell)
	}
	return Text(b.String())
}

// RateList is the full bank-rate listing reply.
func RateList(currency string, banks []forexentity.RateRecord) messaging_api.TextMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s 匯率總覽\n(銀行 | 現鈔賣出 | 即期賣出)\n----------------\n", currency)
	for _, r := range banks {
		fmt.Fprintf(&b, "%s: %s | %s\n", r.Bank, r.CashSell, r.SpotSell)
	}
	return Text(b.String())
}

// Dashboard is the greeting card: salutation, market rows and menu buttons.
func Dashboard(greeting, userName string, items []stocksentity.DashboardItem) messaging_api.FlexMessage {
	rows := make([]messaging_api.FlexComponentInterface, 0, len(items))
	for _, it := range items {
		rows = append(rows, messaging_api.FlexBox{
			Layout:  "baseline",
			Spacing: "sm",
			Margin:  "md",
			Action:  messaging_api.MessageAction{Label: it.Name, Text: it.ActionText},
			Contents: []messaging_api.FlexComponentInterface{
				messaging_api.FlexText{Text: it.Name, Size: "sm", Color: "#555555", Flex: 4},
				messaging_api.FlexText{Text: it.Price, Size: "sm", Weight: "bold", Align: "end", Flex: 3},
				messaging_api.FlexText{Text: it.ChangePercent, Size: "xs", Color: it.Color, Align: "end", Flex: 3},
			},
		})
	}
	if len(rows) == 0 {
		rows = append(rows, messaging_api.FlexText{Text: "📡 資料載入中...", Size: "sm", Color: "#999999", Align: "center"})
	}

	body := messaging_api.FlexBox{
		Layout: "vertical",
		Contents: []messaging_api.FlexComponentInterface{
			messaging_api.FlexText{Text: greeting, Weight: "bold", Size: "xl", Color: colorAccent},
			messaging_api.FlexText{Text: userName + " 大帥哥！", Weight: "bold", Size: "lg", Margin: "xs"},
			messaging_api.FlexText{Text: "我是您的金融小幫手 🤖", Size: "xs", Color: colorMuted, Margin: "xs"},
			messaging_api.FlexSeparator{Margin: "md"},
			messaging_api.FlexText{Text: "📊 重點行情", Size: "sm", Weight: "bold", Color: "#999999", Margin: "md"},
			messaging_api.FlexBox{Layout: "vertical", Margin: "sm", Contents: rows},
			messaging_api.FlexSeparator{Margin: "lg"},
			messaging_api.FlexBox{
				Layout:  "horizontal",
				Margin:  "md",
				Spacing: "sm",
				Contents: []messaging_api.FlexComponentInterface{
					chartButton("匯率選單", "匯率選單"),
					chartButton("使用說明", "使用說明"),
				},
			},
		},
	}

	return messaging_api.FlexMessage{
		AltText:  greeting + "！市場快訊",
		Contents: messaging_api.FlexBubble{Size: "giga", Body: &body},
	}
}

// HelpMenu is the static feature-guide card.
func HelpMenu() messaging_api.FlexMessage {
	body := messaging_api.FlexBox{
		Layout: "vertical",
		Contents: []messaging_api.FlexComponentInterface{
			messaging_api.FlexText{Text: "🤖 金融助手功能導覽", Weight: "bold", Size: "lg", Color: colorAccent},
			messaging_api.FlexText{Text: "點擊下方按鈕或輸入指令試試看！", Size: "xs", Color: colorMuted, Margin: "xs"},
			messaging_api.FlexSeparator{Margin: "md"},
			messaging_api.FlexText{Text: "🌏 外匯查詢", Weight: "bold", Size: "sm", Color: "#555555", Margin: "md"},
			messaging_api.FlexBox{
				Layout:  "horizontal",
				Spacing: "sm",
				Margin:  "sm",
				Contents: []messaging_api.FlexComponentInterface{
					chartButton("幣別選單", "幣別選單"),
					chartButton("日幣走勢", "JPY 1D"),
					chartButton("美金匯率", "USD"),
				},
			},
			messaging_api.FlexText{Text: "指令: 輸入幣別代碼 (如 USD, EUR)", Size: "xs", Color: "#999999", Margin: "xs", Wrap: true},
			messaging_api.FlexSeparator{Margin: "md"},
			messaging_api.FlexText{Text: "📈 台股資訊", Weight: "bold", Size: "sm", Color: "#555555", Margin: "md"},
			messaging_api.FlexBox{
				Layout:  "horizontal",
				Spacing: "sm",
				Margin:  "sm",
				Contents: []messaging_api.FlexComponentInterface{
					chartButton("台積電", "2330"),
					chartButton("台積電 K線", "2330 日K"),
					chartButton("0050", "0050"),
				},
			},
			messaging_api.FlexText{Text: "指令: {代號} 或 {代號} {K線/即時/交易量}", Size: "xs", Color: "#999999", Margin: "xs", Wrap: true},
			messaging_api.FlexSeparator{Margin: "md"},
			messaging_api.FlexText{Text: "🇺🇸 美股報價", Weight: "bold", Size: "sm", Color: "#555555", Margin: "md"},
			messaging_api.FlexBox{
				Layout:  "horizontal",
				Spacing: "sm",
				Margin:  "sm",
				Contents: []messaging_api.FlexComponentInterface{
					chartButton("蘋果", "AAPL"),
					chartButton("輝達", "NVDA"),
					chartButton("VIX 指數", "^VIX"),
				},
			},
			messaging_api.FlexText{Text: "指令: 輸入美股代碼 (如 TSLA, MSFT)", Size: "xs", Color: "#999999", Margin: "xs", Wrap: true},
			messaging_api.FlexSeparator{Margin: "md"},
			messaging_api.FlexButton{
				Style:  "link",
				Height: "sm",
				Margin: "sm",
				Action: messaging_api.MessageAction{Label: "查詢 ID", Text: "ID"},
			},
		},
	}
	return messaging_api.FlexMessage{
		AltText:  "功能選單",
		Contents: messaging_api.FlexBubble{Body: &body},
	}
}

// hotCurrencies is the 2x4 grid on the currency menu.
var hotCurrencies = []struct{ Code, Name string }{
	{"USD", "美金"}, {"JPY", "日圓"},
	{"EUR", "歐元"}, {"CNY", "人民幣"},
	{"KRW", "韓元"}, {"AUD", "澳幣"},
	{"GBP", "英鎊"}, {"THB", "泰銖"},
}

// CurrencyMenu is the hot-currency picker grid.
func CurrencyMenu() messaging_api.FlexMessage {
	rows := make([]messaging_api.FlexComponentInterface, 0, len(hotCurrencies)/2)
	for i := 0; i < len(hotCurrencies); i += 2 {
		row := []messaging_api.FlexComponentInterface{}
		for j := i; j < i+2 && j < len(hotCurrencies); j++ {
			c := hotCurrencies[j]
			row = append(row, messaging_api.FlexButton{
				Style:  "secondary",
				Height: "sm",
				Flex:   1,
				Action: messaging_api.MessageAction{Label: fmt.Sprintf("%s (%s)", c.Name, c.Code), Text: c.Code + " 列表"},
			})
		}
		rows = append(rows, messaging_api.FlexBox{Layout: "horizontal", Spacing: "sm", Margin: "sm", Contents: row})
	}

	header := messaging_api.FlexBox{
		Layout: "vertical",
		Contents: []messaging_api.FlexComponentInterface{
			messaging_api.FlexText{Text: "🌏 選擇幣別", Weight: "bold", Size: "lg", Color: colorAccent, Align: "center"},
		},
	}
	body := messaging_api.FlexBox{Layout: "vertical", Contents: rows}
	return messaging_api.FlexMessage{
		AltText:  "請選擇幣別",
		Contents: messaging_api.FlexBubble{Header: &header, Body: &body},
	}
}

// TWStockCard is the Taiwan quote card: price band, day range, valuation and
// chart shortcut buttons.
func TWStockCard(q *stocksentity.Quote) messaging_api.FlexMessage {
	color, sign := changeStyle(q.Change)

	stats := []messaging_api.FlexComponentInterface{
		statRow("漲停", optPrice(q.LimitUp), colorUp, "跌停", optPrice(q.LimitDown), colorDown),
		statRow("最高", fmt.Sprintf("%.2f", q.High), "", "最低", fmt.Sprintf("%.2f", q.Low), ""),
		statRow("成交(張)", thousands(q.Volume/1000), "", "總量(股)", thousands(q.Volume), ""),
		statRow("本益比", dashIfEmpty(q.PERatio), "", "殖利率", yieldText(q.Yield), ""),
	}

	body := messaging_api.FlexBox{
		Layout: "vertical",
		Contents: []messaging_api.FlexComponentInterface{
			messaging_api.FlexText{Text: fmt.Sprintf("%s (%s) %s", q.Name, q.Symbol, q.Venue), Weight: "bold", Size: "xl", Wrap: true},
			messaging_api.FlexBox{
				Layout: "baseline",
				Margin: "md",
				Contents: []messaging_api.FlexComponentInterface{
					messaging_api.FlexText{Text: fmt.Sprintf("%.2f", q.Price), Weight: "bold", Size: "3xl", Color: color},
					messaging_api.FlexText{
						Text:   fmt.Sprintf("%s%.2f (%s%.2f%%)", sign, q.Change, sign, q.ChangePercent),
						Size:   "sm",
						Color:  color,
						Margin: "md",
						Flex:   0,
					},
				},
			},
			messaging_api.FlexSeparator{Margin: "lg"},
			messaging_api.FlexBox{Layout: "vertical", Margin: "lg", Spacing: "sm", Contents: stats},
			messaging_api.FlexSeparator{Margin: "lg"},
			messaging_api.FlexBox{
				Layout:  "vertical",
				Margin:  "md",
				Spacing: "sm",
				Contents: []messaging_api.FlexComponentInterface{
					messaging_api.FlexButton{
						Style:  "primary",
						Height: "sm",
						Action: messaging_api.MessageAction{Label: "即時走勢圖", Text: q.Symbol + " 即時"},
					},
					messaging_api.FlexBox{
						Layout:  "horizontal",
						Spacing: "sm",
						Contents: []messaging_api.FlexComponentInterface{
							chartButton("日 K", q.Symbol+" 日K"),
							chartButton("週 K", q.Symbol+" 週K"),
							chartButton("月 K", q.Symbol+" 月K"),
						},
					},
					messaging_api.FlexButton{
						Style:  "link",
						Height: "sm",
						Action: messaging_api.MessageAction{Label: "近3日交易量", Text: q.Symbol + " 交易量"},
					},
				},
			},
		},
	}

	return messaging_api.FlexMessage{
		AltText:  fmt.Sprintf("%s 股價", q.Symbol),
		Contents: messaging_api.FlexBubble{Body: &body},
	}
}

// USStockCard is the foreign quote card with day range, volume and the
// 52-week band.
func USStockCard(q *stocksentity.Quote) messaging_api.FlexMessage {
	color, sign := changeStyle(q.Change)

	week52 := "-"
	if q.Week52High != nil && q.Week52Low != nil {
		week52 = fmt.Sprintf("$%.2f-$%.2f", *q.Week52Low, *q.Week52High)
	}

	stats := []messaging_api.FlexComponentInterface{
		statRow("最高", fmt.Sprintf("$%.2f", q.High), "", "最低", fmt.Sprintf("$%.2f", q.Low), ""),
		statRow("成交量", thousands(q.Volume), "", "52週區間", week52, ""),
	}

	body := messaging_api.FlexBox{
		Layout: "vertical",
		Contents: []messaging_api.FlexComponentInterface{
			messaging_api.FlexText{Text: "🇺🇸 " + q.Name, Weight: "bold", Size: "lg", Wrap: true},
			messaging_api.FlexText{Text: q.Symbol, Size: "sm", Color: "#999999", Margin: "xs"},
			messaging_api.FlexBox{
				Layout: "baseline",
				Margin: "md",
				Contents: []messaging_api.FlexComponentInterface{
					messaging_api.FlexText{Text: fmt.Sprintf("$%.2f", q.Price), Weight: "bold", Size: "3xl", Color: color},
					messaging_api.FlexText{
						Text:   fmt.Sprintf("%s%.2f (%s%.2f%%)", sign, q.Change, sign, q.ChangePercent),
						Size:   "sm",
						Color:  color,
						Margin: "md",
						Flex:   0,
					},
				},
			},
			messaging_api.FlexSeparator{Margin: "lg"},
			messaging_api.FlexBox{Layout: "vertical", Margin: "lg", Spacing: "sm", Contents: stats},
		},
	}

	return messaging_api.FlexMessage{
		AltText:  fmt.Sprintf("%s 美股", q.Symbol),
		Contents: messaging_api.FlexBubble{Body: &body},
	}
}

// chartButton is the standard secondary shortcut button.
func chartButton(label, text string) messaging_api.FlexButton {
	return messaging_api.FlexButton{
		Style:  "secondary",
		Height: "sm",
		Action: messaging_api.MessageAction{Label: label, Text: text},
	}
}

// statRow renders one two-column stat line. Value colors default to black
// when empty.
func statRow(label1, value1, color1, label2, value2, color2 string) messaging_api.FlexBox {
	if color1 == "" {
		color1 = colorNeutral
	}
	if color2 == "" {
		color2 = colorNeutral
	}
	return messaging_api.FlexBox{
		Layout: "baseline",
		Contents: []messaging_api.FlexComponentInterface{
			messaging_api.FlexText{Text: label1, Color: colorMuted, Size: "sm", Flex: 1},
			messaging_api.FlexText{Text: value1, Align: "end", Color: color1, Size: "sm", Flex: 2},
			messaging_api.FlexText{Text: label2, Color: colorMuted, Size: "sm", Flex: 1},
			messaging_api.FlexText{Text: value2, Align: "end", Color: color2, Size: "sm", Flex: 2},
		},
	}
}

// optPrice renders a nil-able price as the placeholder dash.
func optPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// yieldText appends the percent suffix only when the feed published a value.
func yieldText(s string) string {
	if s == "" || s == "-" {
		return "-"
	}
	return s + "%"
}

// thousands formats an integer with comma separators.
func thousands(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
