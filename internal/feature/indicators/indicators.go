// Package indicators computes the technical indicators fed into the AI
// advisory prompt. Pure functions, no I/O.
package indicators

import (
	"errors"
	"math"

	"finance_linebot/internal/feature/stocks/domain/entity"
)

// ErrInsufficientHistory is returned when the series is too short to compute
// even the basic change figures.
var ErrInsufficientHistory = errors.New("not enough history to compute indicators")

// Snapshot holds the latest indicator values for one instrument. Fields are
// pointers because each indicator is undefined until its window fills;
// formatting must treat nil as "omit", never as zero.
type Snapshot struct {
	Close         float64
	Change        float64
	ChangePercent float64

	RSI        *float64 // 14-period
	MACD       *float64 // 12/26 EMA difference
	MACDSignal *float64 // 9-period EMA of the MACD line
	MACDHist   *float64 // MACD minus signal

	SMA5  *float64
	SMA10 *float64
	SMA20 *float64
	SMA60 *float64

	BBUpper *float64 // 20-period, 2 standard deviations
	BBLower *float64

	VolumeDelta *int64 // last volume minus prior volume
}

// Compute derives a Snapshot from an ordered series (oldest candle first).
// At least two candles are required; every indicator whose window does not
// fit stays nil.
func Compute(candles []entity.Candle) (*Snapshot, error) {
	if len(candles) < 2 {
		return nil, ErrInsufficientHistory
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	last := candles[len(candles)-1]
	prev := candles[len(candles)-2]

	snap := &Snapshot{
		Close:  last.Close,
		Change: last.Close - prev.Close,
	}
	if prev.Close != 0 {
		snap.ChangePercent = (last.Close - prev.Close) / prev.Close * 100
	}

	delta := last.Volume - prev.Volume
	snap.VolumeDelta = &delta

	snap.SMA5 = sma(closes, 5)
	snap.SMA10 = sma(closes, 10)
	snap.SMA20 = sma(closes, 20)
	snap.SMA60 = sma(closes, 60)

	snap.RSI = rsi(closes, 14)
	snap.MACD, snap.MACDSignal, snap.MACDHist = macd(closes, 12, 26, 9)
	snap.BBUpper, snap.BBLower = bollinger(closes, 20, 2)

	return snap, nil
}

// sma returns the arithmetic mean of the trailing n closes, nil while the
// window is not yet full.
func sma(closes []float64, n int) *float64 {
	if len(closes) < n {
		return nil
	}
	sum := 0.0
	for _, v := range closes[len(closes)-n:] {
		sum += v
	}
	v := sum / float64(n)
	return &v
}

// rsi computes the n-period relative strength index using a simple rolling
// mean of gains and losses. This intentionally diverges from Wilder's
// smoothed variant; the two disagree numerically and this codebase
// standardizes on the plain mean.
func rsi(closes []float64, n int) *float64 {
	if len(closes) < n+1 {
		return nil
	}
	window := closes[len(closes)-n-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		d := window[i] - window[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(n)
	avgLoss := losses / float64(n)

	var v float64
	if avgLoss == 0 {
		v = 100
	} else {
		rs := avgGain / avgLoss
		v = 100 - 100/(1+rs)
	}
	return &v
}

// ema returns the exponential moving average series. Values before index
// n-1 are NaN; the seed at n-1 is the simple mean of the first n values.
func ema(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) < n {
		return out
	}
	seed := 0.0
	for _, v := range values[:n] {
		seed += v
	}
	out[n-1] = seed / float64(n)

	k := 2.0 / float64(n+1)
	for i := n; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// macd computes the MACD line (EMA(fast)−EMA(slow)), its signal EMA and the
// histogram. All three are nil until their windows fill.
func macd(closes []float64, fast, slow, signal int) (*float64, *float64, *float64) {
	if len(closes) < slow {
		return nil, nil, nil
	}
	fastEMA := ema(closes, fast)
	slowEMA := ema(closes, slow)

	// The MACD line only exists where the slow EMA does.
	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		line = append(line, fastEMA[i]-slowEMA[i])
	}

	m := line[len(line)-1]
	if len(line) < signal {
		return &m, nil, nil
	}
	signalEMA := ema(line, signal)
	s := signalEMA[len(signalEMA)-1]
	h := m - s
	return &m, &s, &h
}

// bollinger computes the n-period Bollinger band edges at k standard
// deviations around the simple moving average.
func bollinger(closes []float64, n int, k float64) (*float64, *float64) {
	mid := sma(closes, n)
	if mid == nil {
		return nil, nil
	}
	window := closes[len(closes)-n:]
	var sq float64
	for _, v := range window {
		d := v - *mid
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n))

	upper := *mid + k*std
	lower := *mid - k*std
	return &upper, &lower
}
