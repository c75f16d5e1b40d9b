// Package usecase builds Chart.js configurations for the quote history the
// bot renders: FX trend lines, stock lines, candlesticks and volume bars.
package usecase

import (
	"context"
	"fmt"

	"finance_linebot/internal/feature/stocks/domain/entity"
)

// Style selects one of the supported stock chart renderings.
type Style string

const (
	StyleIntraday Style = "intraday" // 1-day line, 5-minute bars
	StyleDaily    Style = "daily"    // 1-year daily candlesticks
	StyleWeekly   Style = "weekly"   // 2-year weekly candlesticks
	StyleMonthly  Style = "monthly"  // 5-year monthly candlesticks
	StyleVolume   Style = "volume"   // 1-month daily volume bars
	StyleAnalysis Style = "analysis" // 6-month daily candlesticks for AI reports
)

// Annotations are optional horizontal support/resistance lines drawn on
// candlestick charts.
type Annotations struct {
	Support    *float64
	Resistance *float64
}

// maxPoints bounds the data points per chart; QuickChart rejects configs
// that grow past its payload limit.
const maxPoints = 60

// Price movement colors shared with the quote cards: red up, green down.
const (
	colorUp      = "#eb4e3d"
	colorDown    = "#27ba46"
	colorNeutral = "#999"
	colorFx      = "#1DB446"
)

// HistorySource supplies the OHLCV series a chart is drawn from.
// Following Go convention, the interface is defined on the consumer side.
type HistorySource interface {
	History(ctx context.Context, symbol, rng, interval string) ([]entity.Candle, error)
}

// ChartRenderer renders a Chart.js config into a hosted image URL.
type ChartRenderer interface {
	Create(ctx context.Context, chart map[string]any, version string) (string, error)
}

// ChartUsecase assembles chart configurations from price history.
type ChartUsecase struct {
	hist     HistorySource
	renderer ChartRenderer
}

// NewChartUsecase creates a ChartUsecase.
func NewChartUsecase(hist HistorySource, renderer ChartRenderer) *ChartUsecase {
	return &ChartUsecase{hist: hist, renderer: renderer}
}

// fxRange maps a chat period token onto a Yahoo range/interval pair.
var fxRange = map[string][2]string{
	"1D": {"1d", "15m"},
	"5D": {"5d", "60m"},
	"1M": {"1mo", "1d"},
	"1Y": {"1y", "1d"},
}

// FxChartURL renders the TWD exchange-rate trend for one currency over the
// given period (1D, 5D, 1M or 1Y). Thin intraday sessions fall back to a
// wider window before giving up.
func (u *ChartUsecase) FxChartURL(ctx context.Context, currency, period string) (string, error) {
	ri, ok := fxRange[period]
	if !ok {
		return "", fmt.Errorf("unsupported fx chart period %q", period)
	}
	symbol := currency + "TWD=X"

	rng, interval := ri[0], ri[1]
	candles, err := u.hist.History(ctx, symbol, rng, interval)
	if err != nil && rng == "1d" {
		// Weekend or holiday: no intraday bars, widen to five days.
		rng, interval = "5d", "60m"
		candles, err = u.hist.History(ctx, symbol, rng, interval)
	}
	if err != nil && rng == "1y" {
		rng = "6mo"
		candles, err = u.hist.History(ctx, symbol, rng, interval)
	}
	if err != nil {
		return "", err
	}

	labels, prices := lineSeries(candles, rng)
	chart := map[string]any{
		"type": "line",
		"data": map[string]any{
			"labels": labels,
			"datasets": []map[string]any{{
				"label":           fmt.Sprintf("%s/TWD (%s)", currency, rng),
				"data":            prices,
				"borderColor":     colorFx,
				"backgroundColor": "rgba(29, 180, 70, 0.1)",
				"fill":            true,
				"pointRadius":     0,
				"borderWidth":     2,
				"lineTension":     0.1,
			}},
		},
		"options": map[string]any{
			"title":  map[string]any{"display": true, "text": fmt.Sprintf("%s 匯率走勢 (%s)", currency, rng)},
			"legend": map[string]any{"display": false},
			"scales": map[string]any{
				"yAxes": []map[string]any{{"ticks": map[string]any{"beginAtZero": false}}},
				"xAxes": []map[string]any{{"ticks": map[string]any{"autoSkip": true, "maxTicksLimit": 6}}},
			},
		},
	}
	return u.renderer.Create(ctx, chart, "2.9.4")
}

// stockRange maps a chart style onto a Yahoo range/interval pair.
var stockRange = map[Style][2]string{
	StyleIntraday: {"1d", "5m"},
	StyleDaily:    {"1y", "1d"},
	StyleWeekly:   {"2y", "1wk"},
	StyleMonthly:  {"5y", "1mo"},
	StyleVolume:   {"1mo", "1d"},
	StyleAnalysis: {"6mo", "1d"},
}

// StockChartURL renders one stock chart. symbol must already carry its venue
// suffix (e.g. "2330.TW"); displayName is what the title shows.
func (u *ChartUsecase) StockChartURL(ctx context.Context, symbol, displayName string, style Style, ann *Annotations) (string, error) {
	ri, ok := stockRange[style]
	if !ok {
		return "", fmt.Errorf("unsupported stock chart style %q", style)
	}
	candles, err := u.hist.History(ctx, symbol, ri[0], ri[1])
	if err != nil {
		return "", err
	}

	switch style {
	case StyleIntraday:
		return u.renderLine(ctx, candles, displayName, ri[0])
	case StyleVolume:
		return u.renderVolume(ctx, candles, displayName, ri[0])
	default:
		return u.renderCandlestick(ctx, candles, displayName, ri[1], ann)
	}
}

// renderLine draws the intraday price line, colored by session direction.
func (u *ChartUsecase) renderLine(ctx context.Context, candles []entity.Candle, displayName, rng string) (string, error) {
	labels, prices := lineSeries(candles, rng)
	color := colorUp
	if len(prices) > 0 && prices[len(prices)-1] < prices[0] {
		color = colorDown
	}
	chart := map[string]any{
		"type": "line",
		"data": map[string]any{
			"labels": labels,
			"datasets": []map[string]any{{
				"label":           displayName,
				"data":            prices,
				"borderColor":     color,
				"backgroundColor": color + "1A",
				"fill":            true,
				"pointRadius":     0,
				"borderWidth":     2,
				"lineTension":     0.1,
			}},
		},
		"options": map[string]any{
			"title":  map[string]any{"display": true, "text": displayName + " 走勢"},
			"legend": map[string]any{"display": false},
			"scales": map[string]any{
				"yAxes": []map[string]any{{"ticks": map[string]any{"beginAtZero": false}}},
				"xAxes": []map[string]any{{"ticks": map[string]any{"autoSkip": true, "maxTicksLimit": 6}}},
			},
		},
	}
	return u.renderer.Create(ctx, chart, "2.9.4")
}

// renderCandlestick draws OHLC candles on the Chart.js v3 financial build,
// optionally with support/resistance annotation lines.
func (u *ChartUsecase) renderCandlestick(ctx context.Context, candles []entity.Candle, displayName, interval string, ann *Annotations) (string, error) {
	if len(candles) > maxPoints {
		candles = candles[len(candles)-maxPoints:]
	}

	labels := make([]string, 0, len(candles))
	ohlc := make([]map[string]any, 0, len(candles))
	for _, cd := range candles {
		date := cd.Time.Format("2006-01-02")
		labels = append(labels, date)
		ohlc = append(ohlc, map[string]any{
			"x": date,
			"o": cd.Open,
			"h": cd.High,
			"l": cd.Low,
			"c": cd.Close,
		})
	}

	kindLabel := "日K"
	switch interval {
	case "1wk":
		kindLabel = "週K"
	case "1mo":
		kindLabel = "月K"
	}

	chart := map[string]any{
		"type": "candlestick",
		"data": map[string]any{
			"labels": labels,
			"datasets": []map[string]any{{
				"label": displayName,
				"data":  ohlc,
				"color": map[string]any{
					"up":        colorUp,
					"down":      colorDown,
					"unchanged": colorNeutral,
				},
				"borderColor": map[string]any{
					"up":        colorUp,
					"down":      colorDown,
					"unchanged": colorNeutral,
				},
			}},
		},
		"options": map[string]any{
			"plugins": map[string]any{
				"title":      map[string]any{"display": true, "text": fmt.Sprintf("%s K線圖 (%s)", displayName, kindLabel)},
				"legend":     map[string]any{"display": false},
				"annotation": annotationConfig(ann),
			},
			"scales": map[string]any{
				"x": map[string]any{
					"type":   "category",
					"offset": true,
					"ticks":  map[string]any{"maxTicksLimit": 6},
				},
				"y": map[string]any{"ticks": map[string]any{"beginAtZero": false}},
			},
		},
	}
	return u.renderer.Create(ctx, chart, "3")
}

// renderVolume draws daily traded volume, bars colored by bar direction.
func (u *ChartUsecase) renderVolume(ctx context.Context, candles []entity.Candle, displayName, rng string) (string, error) {
	candles = downsample(candles)

	labels := make([]string, 0, len(candles))
	volumes := make([]int64, 0, len(candles))
	colors := make([]string, 0, len(candles))
	for _, cd := range candles {
		labels = append(labels, cd.Time.Format("01/02"))
		volumes = append(volumes, cd.Volume)
		if cd.Close >= cd.Open {
			colors = append(colors, colorUp)
		} else {
			colors = append(colors, colorDown)
		}
	}

	chart := map[string]any{
		"type": "bar",
		"data": map[string]any{
			"labels": labels,
			"datasets": []map[string]any{{
				"label":           "Volume",
				"data":            volumes,
				"backgroundColor": colors,
			}},
		},
		"options": map[string]any{
			"title":  map[string]any{"display": true, "text": fmt.Sprintf("%s 交易量 (%s)", displayName, rng)},
			"legend": map[string]any{"display": false},
			"scales": map[string]any{
				"yAxes": []map[string]any{{"ticks": map[string]any{"beginAtZero": true}}},
				"xAxes": []map[string]any{{"ticks": map[string]any{"autoSkip": true, "maxTicksLimit": 6}}},
			},
		},
	}
	return u.renderer.Create(ctx, chart, "2.9.4")
}

// annotationConfig builds the v3 annotation plugin block for the optional
// support/resistance lines.
func annotationConfig(ann *Annotations) map[string]any {
	lines := map[string]any{}
	if ann == nil {
		return map[string]any{"annotations": lines}
	}
	if ann.Support != nil {
		lines["support"] = horizontalLine(*ann.Support, "green", "left", fmt.Sprintf("Support: %.2f", *ann.Support))
	}
	if ann.Resistance != nil {
		lines["resistance"] = horizontalLine(*ann.Resistance, "red", "right", fmt.Sprintf("Resist: %.2f", *ann.Resistance))
	}
	return map[string]any{"annotations": lines}
}

func horizontalLine(value float64, color, position, label string) map[string]any {
	return map[string]any{
		"type":        "line",
		"mode":        "horizontal",
		"scaleID":     "y",
		"value":       value,
		"borderColor": color,
		"borderWidth": 2,
		"borderDash":  []int{5, 5},
		"label": map[string]any{
			"content":         label,
			"enabled":         true,
			"position":        position,
			"backgroundColor": "rgba(0,0,0,0.5)",
		},
	}
}

// lineSeries converts candles into downsampled label/price arrays, choosing
// the label format by window width.
func lineSeries(candles []entity.Candle, rng string) ([]string, []float64) {
	candles = downsample(candles)
	labels := make([]string, 0, len(candles))
	prices := make([]float64, 0, len(candles))
	for _, cd := range candles {
		var label string
		switch rng {
		case "1d":
			label = cd.Time.Format("15:04")
		case "5d":
			label = cd.Time.Format("01/02 15")
		default:
			label = cd.Time.Format("2006-01-02")
		}
		labels = append(labels, label)
		prices = append(prices, cd.Close)
	}
	return labels, prices
}

// downsample thins a series to at most maxPoints evenly spaced entries.
func downsample(candles []entity.Candle) []entity.Candle {
	if len(candles) <= maxPoints {
		return candles
	}
	step := len(candles)/maxPoints + 1
	out := make([]entity.Candle, 0, maxPoints)
	for i := 0; i < len(candles); i += step {
		out = append(out, candles[i])
	}
	return out
}
