package usecase

import (
	"strings"

	"finance_linebot/internal/feature/bot/domain/entity"
	stocksusecase "finance_linebot/internal/feature/stocks/usecase"
	"finance_linebot/internal/platform/line"
)

// ValidCurrencies is the fixed supported-currency set; the key is the
// uppercase ISO code.
var ValidCurrencies = map[string]bool{
	"USD": true, "HKD": true, "GBP": true, "AUD": true, "CAD": true,
	"SGD": true, "CHF": true, "JPY": true, "ZAR": true, "SEK": true,
	"NZD": true, "THB": true, "PHP": true, "IDR": true, "EUR": true,
	"KRW": true, "VND": true, "MYR": true, "CNY": true, "INR": true,
	"DKK": true, "MOP": true, "MXN": true, "TRY": true,
}

// greetingKeywords trigger the greeting dashboard in direct chats.
var greetingKeywords = []string{
	"HI", "HELLO", "你好", "您好", "早安", "午安", "晚安", "嗨", "TEST", "測試",
}

// fxPeriods are the supported exchange-rate chart windows.
var fxPeriods = map[string]bool{"1D": true, "5D": true, "1M": true, "1Y": true}

// chartKeywords maps a Taiwan-stock sub-command onto a chart style.
var chartKeywords = map[string]string{
	"即時":     "intraday",
	"即時走勢":   "intraday",
	"即時走勢圖":  "intraday",
	"日K":     "daily",
	"日線":     "daily",
	"週K":     "weekly",
	"週線":     "weekly",
	"月K":     "monthly",
	"月線":     "monthly",
	"交易量":    "volume",
	"近3日交易量": "volume",
}

// analysisKeywords trigger the AI advisory flow as a second token.
var analysisKeywords = map[string]bool{"分析": true, "策略": true, "建議": true}

var helpKeywords = map[string]bool{"HELP": true, "MENU": true, "選單": true, "使用說明": true}

var currencyMenuKeywords = map[string]bool{
	"幣別選單": true, "幣別列表": true, "匯率選單": true, "匯率列表": true,
}

// Classifier maps an inbound message onto exactly one command. The bot's own
// identity is injected once at startup for mention detection.
type Classifier struct {
	bot *line.BotInfo
}

// NewClassifier creates a Classifier for the given bot identity.
func NewClassifier(bot *line.BotInfo) *Classifier {
	return &Classifier{bot: bot}
}

// Classify applies the classification rules in their contractual order;
// the first matching rule wins. Unmatched input classifies as Unrecognized,
// whose published behavior is silence.
func (c *Classifier) Classify(m entity.InboundMessage) entity.Command {
	msg := strings.TrimSpace(m.Text)
	upper := strings.ToUpper(msg)
	parts := strings.Fields(upper)

	// 1. Greeting / mention. Short-circuits everything else.
	if c.isGreeting(m, msg, upper) {
		return entity.Command{Kind: entity.CmdGreeting}
	}

	// 2. Identity query.
	if upper == "ID" || upper == "我的ID" {
		return entity.Command{Kind: entity.CmdIdentity}
	}

	// 3. Static menus.
	if helpKeywords[upper] {
		return entity.Command{Kind: entity.CmdHelpMenu}
	}
	if currencyMenuKeywords[upper] {
		return entity.Command{Kind: entity.CmdCurrencyMenu}
	}

	// 4. Currency quote card.
	if ValidCurrencies[upper] {
		return entity.Command{Kind: entity.CmdFxQuote, Symbol: upper}
	}

	// 5. Full bank-rate listing.
	if len(parts) == 2 && parts[1] == "列表" && ValidCurrencies[parts[0]] {
		return entity.Command{Kind: entity.CmdFxRateList, Symbol: parts[0]}
	}

	// 6. Currency chart. An unknown second token after a currency is not an
	// error; it falls through to the later rules.
	if len(parts) == 2 && ValidCurrencies[parts[0]] && fxPeriods[parts[1]] {
		return entity.Command{Kind: entity.CmdFxChart, Symbol: parts[0], Period: parts[1]}
	}

	// 7. Taiwan-stock chart sub-command. A code followed by an unknown token
	// (e.g. an analysis keyword) falls through.
	if len(parts) == 2 && isStockToken(parts[0]) {
		if style, ok := chartKeywords[parts[1]]; ok {
			return entity.Command{Kind: entity.CmdEquityChart, Symbol: parts[0], Chart: style}
		}
	}

	// 8. Foreign single-token quote, checked before the domestic rule so
	// short alphabetic tickers are never misread as Taiwan codes. Lowercase
	// input is deliberately not a ticker.
	if msg == upper && isForeignTicker(upper) {
		return entity.Command{Kind: entity.CmdForeignQuote, Symbol: upper}
	}

	// 9. Taiwan single-token quote: alphanumeric 4-6 with a digit.
	if len(parts) == 1 && stocksusecase.IsTaiwanSymbol(upper) {
		return entity.Command{Kind: entity.CmdDomesticQuote, Symbol: upper}
	}

	// 10. AI analysis. After the quote/chart rules so a bare symbol never
	// routes here.
	if len(parts) == 2 && analysisKeywords[parts[1]] {
		return entity.Command{Kind: entity.CmdAIAnalysis, Symbol: parts[0]}
	}

	// 11. Silence.
	return entity.Command{Kind: entity.CmdUnrecognized}
}

// isGreeting applies the three-tier mention heuristic: explicit platform
// mention first, greeting keyword in a direct chat second, "@" plus a
// bot-name token as the last resort.
func (c *Classifier) isGreeting(m entity.InboundMessage, msg, upper string) bool {
	if m.MentionsBot {
		return true
	}
	if m.Kind == entity.ConversationDirect {
		for _, g := range greetingKeywords {
			if strings.Contains(upper, g) {
				return true
			}
		}
	}
	if strings.Contains(msg, "@") {
		if strings.Contains(upper, "BOT") {
			return true
		}
		if c.bot != nil && c.bot.DisplayName != "" &&
			strings.Contains(upper, strings.ToUpper(c.bot.DisplayName)) {
			return true
		}
	}
	return false
}

// isForeignTicker matches pure-letter tickers of 1-5 characters and
// "^"-prefixed index symbols of 2-6 total characters.
func isForeignTicker(token string) bool {
	body, _ := strings.CutPrefix(token, "^")
	if len(body) < 1 || len(body) > 5 {
		return false
	}
	for _, r := range body {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// isStockToken accepts the chart sub-command's first token: a pure-digit code
// or the laxer 4-6 alphanumeric form.
func isStockToken(token string) bool {
	if stocksusecase.IsTaiwanSymbol(token) {
		return true
	}
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
