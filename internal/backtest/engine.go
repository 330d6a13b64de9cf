// Package backtest implements the long-only bar-by-bar simulator, the
// Kelly-sizing risk models, and the equity/drawdown metrics over the
// strategy package's causal Signal series (signal-at-bar-open execution,
// intrabar stop checks, trade and equity accumulation).
package backtest

import (
	"math"

	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/strategy"
)

// Costs bundles the per-trade cost model, matching app/backtest/engine.py's
// Costs dataclass.
type Costs struct {
	SlippageBps float64
	FeeBps      float64
}

// Config configures one backtest run.
type Config struct {
	Costs          Costs
	ATRPeriod      int
	ATRStopMult    float64
	InitialEquity  float64
	FractionalSize bool  // true: fractional shares; false: integer share sizing
	Model          Model // optional entry gate; nil means always-allow
}

// Model gates whether an entry is taken and, if so, the sizing fraction of
// equity to risk.
type Model interface {
	Allow() bool
	KellyFraction() float64
	Update(won bool)
}

// Trade is one closed round trip.
type Trade struct {
	Direction  strategy.Signal
	EntryIndex int
	ExitIndex  int
	EntryPrice float64
	ExitPrice  float64
	Shares     float64
	ReturnPct  float64
	ExitReason string // "signal" | "stop" | "end_of_data"
}

// EquityPoint is one mark-to-market sample of the equity curve.
type EquityPoint struct {
	Index  int
	Equity float64
}

// Metrics summarizes a completed run, matching app/backtest/metrics.py's
// metrics().
type Metrics struct {
	TotalTrades  int
	Wins         int
	Losses       int
	WinRate      float64
	TotalReturn  float64
	NetProfit    float64
	MaxDrawdown  float64
	AvgReturn    float64
}

// Result is the full output of Run.
type Result struct {
	Trades      []Trade
	EquityCurve []EquityPoint
	Metrics     Metrics
}

// Run executes the long-only simulator over bars using the given causal
// signal series (signals[i] applies at bar i's open, per the strategy
// package's shift-by-1 convention) and returns the trade log, equity
// curve, and summary metrics. Deterministic: running the same bars+signals
// twice produces byte-identical output (Testable Property "backtest
// idempotence").
func Run(bars []marketdata.Bar, signals []strategy.Signal, cfg Config) Result {
	n := len(bars)
	if n == 0 || len(signals) != n {
		return Result{}
	}

	atrSeries := atrFor(bars, cfg.ATRPeriod)
	equity := cfg.InitialEquity
	if equity <= 0 {
		equity = 10000
	}

	var trades []Trade
	var curve []EquityPoint
	var active *Trade
	var activeStop float64

	closeTrade := func(i int, price float64, reason string) {
		if active == nil {
			return
		}
		if active.Direction == strategy.SignalLong {
			active.ReturnPct = (price - active.EntryPrice) / active.EntryPrice * 100
		} else {
			active.ReturnPct = (active.EntryPrice - price) / active.EntryPrice * 100
		}
		active.ExitPrice = applyCosts(price, active.Direction, cfg.Costs, false)
		active.ExitIndex = i
		active.ExitReason = reason

		pnl := equity * (active.ReturnPct / 100.0) * positionFraction(cfg)
		equity += pnl
		if cfg.Model != nil {
			cfg.Model.Update(active.ReturnPct > 0)
		}

		trades = append(trades, *active)
		active = nil
	}

	for i := 0; i < n; i++ {
		bar := bars[i]

		// Intrabar stop check happens before any new signal at this bar.
		if active != nil {
			if active.Direction == strategy.SignalLong && bar.Low <= activeStop {
				closeTrade(i, activeStop, "stop")
			} else if active.Direction == strategy.SignalShort && bar.High >= activeStop {
				closeTrade(i, activeStop, "stop")
			}
		}

		dir := signals[i]
		if dir != strategy.SignalFlat {
			if active != nil && active.Direction != dir {
				closeTrade(i, bar.Open, "signal")
			}
			if active == nil && dir == strategy.SignalLong {
				if cfg.Model == nil || cfg.Model.Allow() {
					entry := applyCosts(bar.Open, dir, cfg.Costs, true)
					shares := sizeShares(equity, entry, cfg)
					active = &Trade{Direction: dir, EntryIndex: i, EntryPrice: entry, Shares: shares}
					if dir == strategy.SignalLong {
						activeStop = entry - cfg.ATRStopMult*atrSeries[i]
					} else {
						activeStop = entry + cfg.ATRStopMult*atrSeries[i]
					}
				}
			}
		}

		markEquity := equity
		if active != nil {
			unrealized := unrealizedReturn(active.Direction, active.EntryPrice, bar.Close)
			markEquity = equity * (1 + unrealized*positionFraction(cfg))
		}
		curve = append(curve, EquityPoint{Index: i, Equity: markEquity})
	}

	if active != nil {
		closeTrade(n-1, bars[n-1].Close, "end_of_data")
	}

	return Result{Trades: trades, EquityCurve: curve, Metrics: computeMetrics(trades, curve)}
}

func positionFraction(cfg Config) float64 {
	if cfg.Model != nil {
		f := cfg.Model.KellyFraction()
		if f > 0 {
			return f
		}
	}
	return 1.0
}

func sizeShares(equity, price float64, cfg Config) float64 {
	if price <= 0 {
		return 0
	}
	raw := equity / price
	if cfg.FractionalSize {
		return raw
	}
	return math.Floor(raw)
}

// applyCosts nudges price against the trader by slippage+fees: entries pay
// up (long) or sell low (short); exits give back the same bps the other
// direction.
func applyCosts(price float64, dir strategy.Signal, costs Costs, isEntry bool) float64 {
	bps := (costs.SlippageBps + costs.FeeBps) / 10000.0
	sign := 1.0
	if dir == strategy.SignalShort {
		sign = -1.0
	}
	if !isEntry {
		sign = -sign
	}
	return price * (1 + sign*bps)
}

func unrealizedReturn(dir strategy.Signal, entry, last float64) float64 {
	if dir == strategy.SignalLong {
		return (last - entry) / entry
	}
	return (entry - last) / entry
}

func atrFor(bars []marketdata.Bar, period int) []float64 {
	n := len(bars)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	tr := make([]float64, n)
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < n; i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
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

func computeMetrics(trades []Trade, curve []EquityPoint) Metrics {
	m := Metrics{TotalTrades: len(trades)}
	if len(trades) == 0 || len(curve) == 0 {
		return m
	}

	var sumReturn float64
	for _, t := range trades {
		sumReturn += t.ReturnPct
		if t.ReturnPct > 0 {
			m.Wins++
		} else {
			m.Losses++
		}
	}
	m.AvgReturn = sumReturn / float64(len(trades))
	m.WinRate = float64(m.Wins) / float64(len(trades)) * 100

	start := curve[0].Equity
	end := curve[len(curve)-1].Equity
	m.TotalReturn = (end - start) / start * 100
	m.NetProfit = end - start

	peak := curve[0].Equity
	var maxDD float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		dd := (peak - p.Equity) / peak * 100
		if dd > maxDD {
			maxDD = dd
		}
	}
	m.MaxDrawdown = maxDD

	return m
}
