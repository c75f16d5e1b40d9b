package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"finance_linebot/internal/feature/stocks/domain/entity"
)

// series builds a candle series from closes, with volume rising by 100 a bar.
func series(closes ...float64) []entity.Candle {
	out := make([]entity.Candle, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = entity.Candle{
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: int64(1000 + i*100),
		}
	}
	return out
}

// TestCompute_TooShort rejects series that cannot even yield a change figure.
func TestCompute_TooShort(t *testing.T) {
	t.Parallel()

	if _, err := Compute(nil); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
	if _, err := Compute(series(100)); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

// TestCompute_ShortSeriesLeavesIndicatorsNil is the core undefined-not-zero
// property: below each window the field must be nil, never 0.
func TestCompute_ShortSeriesLeavesIndicatorsNil(t *testing.T) {
	t.Parallel()

	snap, err := Compute(series(100, 101, 102))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.SMA5 != nil || snap.SMA10 != nil || snap.SMA20 != nil || snap.SMA60 != nil {
		t.Error("SMA fields should be nil for a 3-bar series")
	}
	if snap.RSI != nil {
		t.Error("RSI should be nil for a 3-bar series")
	}
	if snap.MACD != nil || snap.MACDSignal != nil || snap.MACDHist != nil {
		t.Error("MACD fields should be nil for a 3-bar series")
	}
	if snap.BBUpper != nil || snap.BBLower != nil {
		t.Error("Bollinger fields should be nil for a 3-bar series")
	}
	if snap.VolumeDelta == nil || *snap.VolumeDelta != 100 {
		t.Errorf("VolumeDelta should be defined from 2 bars, got %v", snap.VolumeDelta)
	}
}

// TestCompute_SMA verifies the trailing-window mean on a known series.
func TestCompute_SMA(t *testing.T) {
	t.Parallel()

	snap, err := Compute(series(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.SMA5 == nil || *snap.SMA5 != 8 {
		t.Errorf("SMA5 = %v, want 8", snap.SMA5)
	}
	if snap.SMA10 == nil || *snap.SMA10 != 5.5 {
		t.Errorf("SMA10 = %v, want 5.5", snap.SMA10)
	}
	if snap.SMA20 != nil {
		t.Error("SMA20 should be nil for a 10-bar series")
	}
}

// TestCompute_RSIExtremes pins the all-gain and all-loss boundary values.
func TestCompute_RSIExtremes(t *testing.T) {
	t.Parallel()

	up := make([]float64, 15)
	down := make([]float64, 15)
	for i := range up {
		up[i] = float64(100 + i)
		down[i] = float64(100 - i)
	}

	snapUp, err := Compute(series(up...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapUp.RSI == nil || *snapUp.RSI != 100 {
		t.Errorf("RSI of a monotonically rising series = %v, want 100", snapUp.RSI)
	}

	snapDown, err := Compute(series(down...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapDown.RSI == nil || math.Abs(*snapDown.RSI) > 1e-9 {
		t.Errorf("RSI of a monotonically falling series = %v, want 0", snapDown.RSI)
	}
}

// TestCompute_RSIMixed checks the simple rolling-mean formula on mixed moves.
func TestCompute_RSIMixed(t *testing.T) {
	t.Parallel()

	// Alternate +2 / -1 over 14 deltas: 7 gains of 2, 7 losses of 1.
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		closes = append(closes, closes[len(closes)-1]+2)
		closes = append(closes, closes[len(closes)-1]-1)
	}

	snap, err := Compute(series(closes...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// avgGain = 14/14 = 1, avgLoss = 7/14 = 0.5, RS = 2, RSI = 100-100/3.
	want := 100 - 100.0/3.0
	if snap.RSI == nil || math.Abs(*snap.RSI-want) > 1e-9 {
		t.Errorf("RSI = %v, want %v", snap.RSI, want)
	}
}

// TestCompute_BollingerFlatSeries collapses the band onto a flat series.
func TestCompute_BollingerFlatSeries(t *testing.T) {
	t.Parallel()

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 50
	}
	snap, err := Compute(series(flat...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.BBUpper == nil || snap.BBLower == nil {
		t.Fatal("Bollinger bands should be defined for a 20-bar series")
	}
	if *snap.BBUpper != 50 || *snap.BBLower != 50 {
		t.Errorf("flat series bands = (%v, %v), want (50, 50)", *snap.BBUpper, *snap.BBLower)
	}
}

// TestCompute_MACDWindows verifies the staged availability of the MACD trio.
func TestCompute_MACDWindows(t *testing.T) {
	t.Parallel()

	mk := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = 100 + float64(i)
		}
		return out
	}

	// 25 bars: below the slow window, no MACD at all.
	snap, err := Compute(series(mk(25)...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.MACD != nil {
		t.Error("MACD should be nil below the 26-bar slow window")
	}

	// 30 bars: line exists, signal window (9 line values) not yet filled.
	snap, err = Compute(series(mk(30)...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.MACD == nil {
		t.Error("MACD line should exist at 30 bars")
	}
	if snap.MACDSignal != nil || snap.MACDHist != nil {
		t.Error("signal and histogram should be nil until 9 line values exist")
	}

	// 40 bars: everything defined; histogram must equal line minus signal.
	snap, err = Compute(series(mk(40)...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.MACD == nil || snap.MACDSignal == nil || snap.MACDHist == nil {
		t.Fatal("all MACD fields should be defined at 40 bars")
	}
	if math.Abs(*snap.MACDHist-(*snap.MACD-*snap.MACDSignal)) > 1e-9 {
		t.Errorf("histogram %v != line %v - signal %v", *snap.MACDHist, *snap.MACD, *snap.MACDSignal)
	}
	// A steadily rising series keeps the fast EMA above the slow one.
	if *snap.MACD <= 0 {
		t.Errorf("MACD of a rising series should be positive, got %v", *snap.MACD)
	}
}
