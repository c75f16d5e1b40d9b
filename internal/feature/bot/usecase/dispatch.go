package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	advisorentity "finance_linebot/internal/feature/advisor/domain/entity"
	"finance_linebot/internal/feature/bot/domain/entity"
	"finance_linebot/internal/feature/bot/flex"
	chartusecase "finance_linebot/internal/feature/chart/usecase"
	forexentity "finance_linebot/internal/feature/forex/domain/entity"
	"finance_linebot/internal/feature/indicators"
	stocksentity "finance_linebot/internal/feature/stocks/domain/entity"
	stocksusecase "finance_linebot/internal/feature/stocks/usecase"
	"finance_linebot/internal/shared/fetcherr"
)

// Messenger sends replies and pushes through the messaging platform.
// Following Go convention, the interface is defined on the consumer side.
type Messenger interface {
	Reply(replyToken string, messages []messaging_api.MessageInterface) error
	Push(to string, messages []messaging_api.MessageInterface) error
	MemberDisplayName(kind, chatID, userID string) (string, error)
}

// ForexService serves bank-rate listings and live FX quotes.
type ForexService interface {
	BankRates(ctx context.Context, currency string) ([]forexentity.RateRecord, error)
	Quote(ctx context.Context, currency string) (*forexentity.FxQuote, error)
}

// StockService serves equity quotes, history and the greeting dashboard.
type StockService interface {
	TaiwanQuote(ctx context.Context, symbol string) (*stocksentity.Quote, error)
	ForeignQuote(ctx context.Context, symbol string) (*stocksentity.Quote, error)
	ResolveSymbol(ctx context.Context, symbol string) (resolved, name string, err error)
	History(ctx context.Context, symbol, rng, interval string) ([]stocksentity.Candle, error)
	Dashboard(ctx context.Context) []stocksentity.DashboardItem
}

// ChartService renders hosted chart images.
type ChartService interface {
	FxChartURL(ctx context.Context, currency, period string) (string, error)
	StockChartURL(ctx context.Context, symbol, displayName string, style chartusecase.Style, ann *chartusecase.Annotations) (string, error)
}

// AdvisorService produces the AI trading read for one instrument.
type AdvisorService interface {
	Analyze(ctx context.Context, symbol, name string, snap *indicators.Snapshot) (*advisorentity.Advisory, error)
}

// Dispatcher executes classified commands: it runs the matching fetchers,
// picks the reply shape and sends it. One Dispatcher serves all webhooks.
type Dispatcher struct {
	classifier *Classifier
	messenger  Messenger
	forex      ForexService
	stocks     StockService
	charts     ChartService
	advisor    AdvisorService // nil when the AI key is not configured
	now        func() time.Time
}

// NewDispatcher creates a Dispatcher. advisor may be nil; the analysis
// command then answers with a feature-unavailable message.
func NewDispatcher(classifier *Classifier, messenger Messenger, forex ForexService, stocks StockService, charts ChartService, advisor AdvisorService) *Dispatcher {
	return &Dispatcher{
		classifier: classifier,
		messenger:  messenger,
		forex:      forex,
		stocks:     stocks,
		charts:     charts,
		advisor:    advisor,
		now:        time.Now,
	}
}

// Handle classifies and executes one inbound message. Errors are logged, not
// returned to the webhook: the platform expects an ack, not a result.
func (d *Dispatcher) Handle(ctx context.Context, m entity.InboundMessage) {
	cmd := d.classifier.Classify(m)
	slog.Info("dispatch", "kind", cmd.Kind, "symbol", cmd.Symbol, "chat", m.ChatID)

	var err error
	switch cmd.Kind {
	case entity.CmdGreeting:
		err = d.greet(ctx, m)
	case entity.CmdIdentity:
		err = d.reply(m, flex.Text("ID: "+m.ChatID))
	case entity.CmdHelpMenu:
		err = d.reply(m, flex.HelpMenu())
	case entity.CmdCurrencyMenu:
		err = d.reply(m, flex.CurrencyMenu())
	case entity.CmdFxQuote:
		err = d.fxQuote(ctx, m, cmd.Symbol)
	case entity.CmdFxRateList:
		err = d.fxRateList(ctx, m, cmd.Symbol)
	case entity.CmdFxChart:
		err = d.fxChart(ctx, m, cmd.Symbol, cmd.Period)
	case entity.CmdEquityChart:
		err = d.equityChart(ctx, m, cmd.Symbol, cmd.Chart)
	case entity.CmdForeignQuote:
		err = d.foreignQuote(ctx, m, cmd.Symbol)
	case entity.CmdDomesticQuote:
		err = d.domesticQuote(ctx, m, cmd.Symbol)
	case entity.CmdAIAnalysis:
		err = d.analyze(ctx, m, cmd.Symbol)
	case entity.CmdUnrecognized:
		// Contractual silence: no reply in group chats for random text.
	}
	if err != nil {
		slog.Error("dispatch failed", "kind", cmd.Kind, "error", err)
	}
}

func (d *Dispatcher) reply(m entity.InboundMessage, msgs ...messaging_api.MessageInterface) error {
	return d.messenger.Reply(m.ReplyToken, msgs)
}

// greet sends the dashboard card addressed to the sender by display name.
func (d *Dispatcher) greet(ctx context.Context, m entity.InboundMessage) error {
	name, err := d.messenger.MemberDisplayName(string(m.Kind), m.ChatID, m.UserID)
	if err != nil || name == "" {
		name = "朋友"
	}
	items := d.stocks.Dashboard(ctx)
	return d.reply(m, flex.Dashboard(Greeting(d.now()), name, items))
}

// fxQuote sends the currency card. When the live quote is down but the bank
// scrape answered, the reply degrades to a text listing instead of silence.
func (d *Dispatcher) fxQuote(ctx context.Context, m entity.InboundMessage, currency string) error {
	quote, quoteErr := d.forex.Quote(ctx, currency)
	banks, bankErr := d.forex.BankRates(ctx, currency)
	if bankErr != nil {
		slog.Warn("bank rates unavailable", "currency", currency, "error", bankErr)
	}

	switch {
	case quoteErr == nil:
		return d.reply(m, flex.CurrencyCard(quote, banks))
	case bankErr == nil:
		return d.reply(m, flex.DegradedRateList(currency, banks))
	default:
		return d.reply(m, flex.Text("查無資料 😢"))
	}
}

func (d *Dispatcher) fxRateList(ctx context.Context, m entity.InboundMessage, currency string) error {
	banks, err := d.forex.BankRates(ctx, currency)
	if err != nil {
		return d.reply(m, flex.Text("查無資料 😢"))
	}
	return d.reply(m, flex.RateList(currency, banks))
}

func (d *Dispatcher) fxChart(ctx context.Context, m entity.InboundMessage, currency, period string) error {
	url, err := d.charts.FxChartURL(ctx, currency, period)
	if err != nil {
		return d.reply(m, flex.Text("❌ 暫無該時段走勢數據 (可能為週末或資料源問題)"))
	}
	return d.reply(m, flex.Image(url))
}

// chartStyleLabels names each style in failure messages.
var chartStyleLabels = map[string]string{
	"intraday": "即時",
	"daily":    "日K",
	"weekly":   "週K",
	"monthly":  "月K",
	"volume":   "交易量",
}

func (d *Dispatcher) equityChart(ctx context.Context, m entity.InboundMessage, symbol, style string) error {
	resolved, name, err := d.stocks.ResolveSymbol(ctx, symbol)
	if err != nil {
		return d.reply(m, flex.Text(fmt.Sprintf("❌ 產生圖表失敗 (%s)", chartStyleLabels[style])))
	}
	url, err := d.charts.StockChartURL(ctx, resolved, name, chartusecase.Style(style), nil)
	if err != nil {
		return d.reply(m, flex.Text(fmt.Sprintf("❌ 產生圖表失敗 (%s)", chartStyleLabels[style])))
	}
	return d.reply(m, flex.Image(url))
}

// foreignQuote answers a single-token ticker query. A symbol the source does
// not know stays silent — the token was only a guess at a ticker, and noise
// in group chats is worse than no answer. A real outage still reports.
func (d *Dispatcher) foreignQuote(ctx context.Context, m entity.InboundMessage, symbol string) error {
	quote, err := d.stocks.ForeignQuote(ctx, symbol)
	if errors.Is(err, fetcherr.ErrUpstreamEmpty) {
		slog.Info("foreign symbol unknown, staying silent", "symbol", symbol)
		return nil
	}
	if err != nil {
		return d.reply(m, flex.Text("❌ 查無資料，請稍後再試"))
	}
	return d.reply(m, flex.USStockCard(quote))
}

func (d *Dispatcher) domesticQuote(ctx context.Context, m entity.InboundMessage, symbol string) error {
	quote, err := d.stocks.TaiwanQuote(ctx, symbol)
	if err != nil {
		return d.reply(m, flex.Text("❌ 查無資料，請確認代號是否正確"))
	}
	return d.reply(m, flex.TWStockCard(quote))
}

// analyze runs the AI advisory flow: an immediate synchronous ack, then the
// slow indicator+model round trip, pushed as image first and text second
// because the work outruns the platform's reply-token window.
func (d *Dispatcher) analyze(ctx context.Context, m entity.InboundMessage, symbol string) error {
	if d.advisor == nil {
		return d.reply(m, flex.Text("❌ AI 分析功能未啟用 (未設定 API 金鑰)"))
	}
	if err := d.reply(m, flex.Text(fmt.Sprintf("🤖 正在分析 %s 的數據並諮詢 AI 顧問，請稍候... (約 3-5 秒)", symbol))); err != nil {
		return err
	}

	resolved, name := symbol, symbol
	if stocksusecase.IsTaiwanSymbol(symbol) {
		var err error
		resolved, name, err = d.stocks.ResolveSymbol(ctx, symbol)
		if err != nil {
			return d.push(m, flex.Text(fmt.Sprintf("❌ 找不到 %s 的歷史數據，無法分析。", symbol)))
		}
	}

	candles, err := d.stocks.History(ctx, resolved, "6mo", "1d")
	if err != nil {
		return d.push(m, flex.Text(fmt.Sprintf("❌ 找不到 %s 的歷史數據，無法分析。", symbol)))
	}
	snap, err := indicators.Compute(candles)
	if err != nil {
		return d.push(m, flex.Text(fmt.Sprintf("❌ %s 的歷史數據不足，無法分析。", symbol)))
	}

	advisory, err := d.advisor.Analyze(ctx, symbol, name, snap)
	if errors.Is(err, fetcherr.ErrQuotaExceeded) {
		return d.push(m, flex.Text("🤖 AI 顧問現在忙線中，請稍後再試"))
	}
	if err != nil {
		return d.push(m, flex.Text("❌ 分析過程中發生錯誤，請稍後再試"))
	}

	msgs := []messaging_api.MessageInterface{}
	ann := &chartusecase.Annotations{Support: advisory.SupportPrice, Resistance: advisory.ResistancePrice}
	if url, err := d.charts.StockChartURL(ctx, resolved, name, chartusecase.StyleAnalysis, ann); err == nil {
		msgs = append(msgs, flex.Image(url))
	} else {
		slog.Warn("analysis chart failed", "symbol", resolved, "error", err)
	}
	msgs = append(msgs, flex.Text("🧠 AI 智能分析報告：\n\n"+advisory.FormattedText))
	return d.push(m, msgs...)
}

func (d *Dispatcher) push(m entity.InboundMessage, msgs ...messaging_api.MessageInterface) error {
	return d.messenger.Push(m.ChatID, msgs)
}
