package orchestration

import (
	"context"
	"math"
	"time"

	"github.com/flipper1994/trading-core/internal/backtest"
	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/strategy"
)

// Dependencies are the collaborators the five nodes call out to, injected
// explicitly rather than resolved from module-level singletons.
type Dependencies struct {
	DAL          DALFetcher
	Strategies   map[string]StrategyFunc
	DefaultStrat string
	Kelly        backtest.FractionalKelly
	OrderSink    OrderSink
}

// DALFetcher is the subset of marketdata.DAL the router needs.
type DALFetcher interface {
	FetchBars(ctx context.Context, vendorKey, symbol, interval string, start, end time.Time) (marketdata.ProbabilisticBatch, error)
}

// StrategyFunc generates a causal signal series for one frame.
type StrategyFunc func(frame strategy.Frame) []strategy.Signal

// OrderSink is where enqueue_order publishes its final decision.
type OrderSink interface {
	Enqueue(ctx context.Context, intent OrderIntent) error
}

// IngestFrame fetches the latest probabilistic batch for rc.Request and
// stores it on rc. Halts if the vendor fetch fails or returns no bars.
func IngestFrame(deps Dependencies) NodeFunc {
	return func(ctx context.Context, rc *Context) error {
		batch, err := deps.DAL.FetchBars(ctx, "", rc.Request.Symbol, rc.Request.Interval, rc.Request.Start, rc.Request.End)
		if err != nil || batch.Bars.Len() == 0 {
			rc.Halt = true
			rc.HaltReason = "no market data available"
			return nil
		}
		rc.Batch = batch
		return nil
	}
}

// InferPriors reads the most recent regime snapshot off the ingested
// batch. Halts on an "uncertain" regime — there is nothing actionable to
// infer.
func InferPriors(deps Dependencies) NodeFunc {
	return func(ctx context.Context, rc *Context) error {
		if len(rc.Batch.Regimes) == 0 {
			rc.Halt = true
			rc.HaltReason = "no regime snapshots available"
			return nil
		}
		rc.Regime = rc.Batch.Regimes[len(rc.Batch.Regimes)-1]
		if rc.Regime.Label == "uncertain" {
			rc.Halt = true
			rc.HaltReason = "regime uncertain"
		}
		return nil
	}
}

// PickStrategy runs the strategy registered under deps.DefaultStrat over
// the ingested batch, taking the most recent causal signal. The strategy is
// always deps.DefaultStrat; it is not switched by regime.
func PickStrategy(deps Dependencies) NodeFunc {
	return func(ctx context.Context, rc *Context) error {
		name := deps.DefaultStrat
		fn, ok := deps.Strategies[name]
		if !ok {
			rc.Halt = true
			rc.HaltReason = "no strategy registered"
			return nil
		}

		frame := strategy.Frame{Bars: rc.Batch.Bars.Rows, Regimes: rc.Batch.Regimes}
		signals := fn(frame)
		if len(signals) == 0 {
			rc.Halt = true
			rc.HaltReason = "strategy produced no signals"
			return nil
		}

		rc.Strategy = name
		rc.Signal = signals[len(signals)-1]
		if rc.Signal == strategy.SignalFlat {
			rc.Halt = true
			rc.HaltReason = "no actionable signal"
		}
		return nil
	}
}

// RiskSize applies the fractional Kelly sizer to the chosen signal, using
// the regime's momentum magnitude as a rough win-probability proxy clamped
// to [0.5, 0.95] and a fixed 1.5 payoff ratio — a conservative stand-in
// until a calibrated model is wired in.
func RiskSize(deps Dependencies) NodeFunc {
	return func(ctx context.Context, rc *Context) error {
		p := 0.5 + clamp01(math.Abs(rc.Regime.Momentum)*10)*0.45
		fraction := deps.Kelly.Size(p, 1.5)
		if fraction <= 0 {
			rc.Halt = true
			rc.HaltReason = "risk sizer returned zero fraction"
			return nil
		}
		rc.PositionFraction = fraction
		return nil
	}
}

// EnqueueOrder builds the final OrderIntent and publishes it via
// deps.OrderSink.
func EnqueueOrder(deps Dependencies) NodeFunc {
	return func(ctx context.Context, rc *Context) error {
		intent := OrderIntent{
			RunID:     rc.RunID,
			Symbol:    rc.Request.Symbol,
			Direction: rc.Signal,
			Fraction:  rc.PositionFraction,
			Timestamp: time.Now().UTC(),
		}
		rc.OrderIntent = &intent
		if deps.OrderSink == nil {
			return nil
		}
		return deps.OrderSink.Enqueue(ctx, intent)
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
