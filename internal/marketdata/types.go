// Package marketdata implements the vendor-agnostic market data facade:
// fetch, filter, classify and publish OHLCV bars for downstream strategy
// and backtest consumers.
package marketdata

import "time"

// Bar is a single OHLCV observation plus the probabilistic annotations the
// filter bank and regime classifier attach to it.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`

	// Probabilistic annotations, populated by the filter bank. Zero value
	// means "not yet filtered".
	FilteredPrice        float64 `json:"filtered_price,omitempty"`
	ProbFilteredPrice    float64 `json:"prob_filtered_price,omitempty"`
	ProbPrice            float64 `json:"prob_price,omitempty"`
	ProbButterworthPrice float64 `json:"prob_butterworth_price,omitempty"`
	ProbVelocity         float64 `json:"prob_velocity,omitempty"`
}

// Bars is an ordered, chronologically monotonic sequence of Bar for one
// symbol at one interval.
type Bars struct {
	Symbol   string
	Interval string
	Rows     []Bar
}

// Len reports how many rows are present.
func (b Bars) Len() int { return len(b.Rows) }

// Last returns the most recent bar and true, or the zero Bar and false if
// empty.
func (b Bars) Last() (Bar, bool) {
	if len(b.Rows) == 0 {
		return Bar{}, false
	}
	return b.Rows[len(b.Rows)-1], true
}

// MergeBars concatenates base and incoming, drops duplicate timestamps
// (incoming wins on conflict) and returns the result sorted ascending by
// timestamp. Mirrors the original app/dal/schemas.py merge_bars utility.
func MergeBars(base, incoming Bars) Bars {
	byTS := make(map[int64]Bar, len(base.Rows)+len(incoming.Rows))
	order := make([]int64, 0, len(base.Rows)+len(incoming.Rows))
	for _, r := range base.Rows {
		ts := r.Timestamp.UnixNano()
		if _, ok := byTS[ts]; !ok {
			order = append(order, ts)
		}
		byTS[ts] = r
	}
	for _, r := range incoming.Rows {
		ts := r.Timestamp.UnixNano()
		if _, ok := byTS[ts]; !ok {
			order = append(order, ts)
		}
		byTS[ts] = r
	}
	rows := make([]Bar, 0, len(order))
	for _, ts := range order {
		rows = append(rows, byTS[ts])
	}
	sortBarsByTimestamp(rows)
	symbol, interval := base.Symbol, base.Interval
	if symbol == "" {
		symbol = incoming.Symbol
	}
	if interval == "" {
		interval = incoming.Interval
	}
	return Bars{Symbol: symbol, Interval: interval, Rows: rows}
}

// SortBars sorts rows ascending by timestamp in place. Exposed for vendor
// clients whose upstream payload is an unordered map (e.g. AlphaVantage's
// JSON time series).
func SortBars(rows []Bar) {
	sortBarsByTimestamp(rows)
}

func sortBarsByTimestamp(rows []Bar) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Timestamp.Before(rows[j-1].Timestamp); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

// SignalFrame is one causal output of the probabilistic pipeline: the
// filtered price/velocity for a bar plus the regime snapshot in effect at
// that point in time. Frame i depends only on bars 0..i (Testable Property
// "causality").
type SignalFrame struct {
	Symbol      string
	Timestamp   time.Time
	Price       float64
	Filtered    float64
	Velocity    float64
	Uncertainty float64
	Regime      RegimeSnapshot
}

// RegimeSnapshot is the classifier's verdict for one bar.
type RegimeSnapshot struct {
	Timestamp   time.Time
	Label       string // "uncertain" | "high_volatility" | "trend_up" | "trend_down" | "calm" | "sideways"
	Momentum    float64
	Volatility  float64
	Uncertainty float64
}

// ProbabilisticBatch is the aggregate the DAL facade hands back from
// FetchBars: bars plus the parallel SignalFrame/RegimeSnapshot series, plus
// the paths of the columnar artifacts persisted alongside them.
type ProbabilisticBatch struct {
	Bars       Bars
	Signals    []SignalFrame
	Regimes    []RegimeSnapshot
	CachePaths map[string]string // "bars" | "signals" | "regimes" -> path
}
