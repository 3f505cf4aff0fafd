package market

import "github.com/shopspring/decimal"

// MovingAverage returns the simple moving average of closes over window.
// The first window-1 entries are nil; if window is not positive or exceeds
// the series every entry is nil.
func MovingAverage(closes []float64, window int) []*float64 {
	out := make([]*float64, len(closes))
	if window <= 0 || window > len(closes) {
		return out
	}

	n := decimal.NewFromInt(int64(window))
	sum := decimal.Zero
	for i, c := range closes {
		sum = sum.Add(decimal.NewFromFloat(c))
		if i >= window {
			sum = sum.Sub(decimal.NewFromFloat(closes[i-window]))
		}
		if i >= window-1 {
			v := sum.Div(n).InexactFloat64()
			out[i] = &v
		}
	}
	return out
}

// withAverages attaches one rolling mean per window to bars.
func withAverages(bars []Bar, windows []int) History {
	h := History{Bars: bars, Averages: make([]Average, 0, len(windows))}
	closes := h.Closes()
	for _, w := range windows {
		h.Averages = append(h.Averages, Average{Window: w, Values: MovingAverage(closes, w)})
	}
	return h
}
