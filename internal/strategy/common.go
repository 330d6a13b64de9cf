// Package strategy implements the breakout, momentum and mean-reversion
// signal generators over a column-addressable OHLCV table, using a
// shared set of indicator helpers (EMA, Wilder's RMA for ATR).
package strategy

import (
	"math"
	"strings"

	"github.com/flipper1994/trading-core/internal/marketdata"
)

// Signal is the generator output for one bar: 1 long, -1 short/exit, 0 flat.
type Signal int

const (
	SignalFlat  Signal = 0
	SignalLong  Signal = 1
	SignalShort Signal = -1
)

// Frame is the column-addressable view generators consume, built from
// marketdata.Bars plus the probabilistic annotations the filter bank and
// regime classifier attached.
type Frame struct {
	Bars    []marketdata.Bar
	Regimes []marketdata.RegimeSnapshot
}

// pricePriority lists the column preference order choose_probabilistic_price
// uses: prob_filtered_price > filtered_price > prob_price >
// prob_butterworth_price > close.
func pricePriority(b marketdata.Bar) float64 {
	switch {
	case b.ProbFilteredPrice != 0:
		return b.ProbFilteredPrice
	case b.FilteredPrice != 0:
		return b.FilteredPrice
	case b.ProbPrice != 0:
		return b.ProbPrice
	case b.ProbButterworthPrice != 0:
		return b.ProbButterworthPrice
	default:
		return b.Close
	}
}

// ensureFlatColumns lower-cases and dedupes a set of column names, matching
// ensure_flat_ohlcv's normalization pass. Kept for callers that build
// Frame from externally sourced, inconsistently-cased column sets.
func ensureFlatColumns(cols []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		lc := strings.ToLower(strings.TrimSpace(c))
		if lc == "" || seen[lc] {
			continue
		}
		seen[lc] = true
		out = append(out, lc)
	}
	return out
}

// ema computes a causal exponential moving average over xs with the given
// period, seeding from a simple average of the first period values
// (calculateEMAServer's SMA-seed convention), backfilling the warmup tail
// with the first computed value.
func ema(xs []float64, period int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) < period || period < 1 {
		return out
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += xs[i]
	}
	out[period-1] = sum / float64(period)
	mult := 2.0 / float64(period+1)
	for i := period; i < len(xs); i++ {
		out[i] = (xs[i]-out[i-1])*mult + out[i-1]
	}
	for i := 0; i < period-1; i++ {
		out[i] = out[period-1]
	}
	return out
}

// atr computes Wilder's RMA-smoothed Average True Range, matching the
// teacher's ATR band computation (al := 1.0/period; atr[i] = al*tr[i] +
// (1-al)*atr[i-1]).
func atr(bars []marketdata.Bar, period int) []float64 {
	n := len(bars)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	tr := make([]float64, n)
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < n; i++ {
		hl := bars[i].High - bars[i].Low
		hc := absf(bars[i].High - bars[i-1].Close)
		lc := absf(bars[i].Low - bars[i-1].Close)
		tr[i] = maxf(hl, maxf(hc, lc))
	}
	if period < 1 {
		period = 1
	}
	al := 1.0 / float64(period)
	out[0] = tr[0]
	for i := 1; i < n; i++ {
		out[i] = al*tr[i] + (1-al)*out[i-1]
	}
	return out
}

// rollingStd computes the population standard deviation over a trailing
// window ending at each index (index < window-1 uses all available data).
func rollingStd(xs []float64, window int) []float64 {
	n := len(xs)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		slice := xs[start : i+1]
		var sum, sumSq float64
		for _, v := range slice {
			sum += v
			sumSq += v * v
		}
		m := sum / float64(len(slice))
		variance := sumSq/float64(len(slice)) - m*m
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// velocityGate reports whether a regime's momentum/velocity is consistent
// with entering a trade in dir (+1 long, -1 short), matching
// probabilistic_velocity_gate: requires the filtered velocity to agree in
// sign with the requested direction.
func velocityGate(velocity float64, dir Signal) bool {
	switch dir {
	case SignalLong:
		return velocity >= 0
	case SignalShort:
		return velocity <= 0
	default:
		return true
	}
}

// regimeGate reports whether snap's label permits entering in dir,
// matching probabilistic_regime_gate: high_volatility and uncertain block
// all entries; trend_up only allows longs; trend_down only allows shorts;
// calm/sideways allow either.
func regimeGate(snap marketdata.RegimeSnapshot, dir Signal) bool {
	switch snap.Label {
	case "uncertain", "high_volatility":
		return false
	case "trend_up":
		return dir == SignalLong
	case "trend_down":
		return dir == SignalShort
	default:
		return true
	}
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// shiftSignals applies the default shift-by-1 entry semantics (a signal
// computed from bar i is actionable starting at bar i+1) unless immediate
// is true, matching enter_on_break_bar/enter_on_signal_bar's toggle.
func shiftSignals(signals []Signal, immediate bool) []Signal {
	if immediate {
		return signals
	}
	out := make([]Signal, len(signals))
	for i := 1; i < len(signals); i++ {
		out[i] = signals[i-1]
	}
	return out
}
