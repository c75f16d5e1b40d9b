package entity

import "math"

// TickSize returns the TWSE price step at the given price level. Steps get
// coarser as price rises, per the exchange's trading rules.
func TickSize(price float64) float64 {
	switch {
	case price < 10:
		return 0.01
	case price < 50:
		return 0.05
	case price < 100:
		return 0.1
	case price < 500:
		return 0.5
	case price < 1000:
		return 1
	default:
		return 5
	}
}

// LimitUp computes the regulatory daily up-limit price from the previous
// close: +10%, rounded DOWN to the tick at the limit's own price level. The
// rounding direction matters — rounding up could display a price outside the
// band the exchange actually enforces.
func LimitUp(prevClose float64) float64 {
	raw := prevClose * 1.10
	tick := TickSize(raw)
	return roundPrice(math.Floor(raw/tick+1e-6) * tick)
}

// LimitDown computes the daily down-limit price: -10%, rounded UP to the
// tick so the displayed limit never undershoots the enforced band.
func LimitDown(prevClose float64) float64 {
	raw := prevClose * 0.90
	tick := TickSize(raw)
	return roundPrice(math.Ceil(raw/tick-1e-6) * tick)
}

// roundPrice trims float noise to the finest tick granularity (0.01).
func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
