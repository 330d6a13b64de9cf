package orchestration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipper1994/trading-core/internal/backtest"
	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/strategy"
)

type fakeDAL struct {
	batch marketdata.ProbabilisticBatch
	err   error
}

func (f *fakeDAL) FetchBars(ctx context.Context, vendorKey, symbol, interval string, start, end time.Time) (marketdata.ProbabilisticBatch, error) {
	return f.batch, f.err
}

type fakeSink struct {
	enqueued []OrderIntent
}

func (f *fakeSink) Enqueue(ctx context.Context, intent OrderIntent) error {
	f.enqueued = append(f.enqueued, intent)
	return nil
}

func makeBatch(label string, signal strategy.Signal) marketdata.ProbabilisticBatch {
	base := time.Unix(0, 0)
	bars := []marketdata.Bar{{Timestamp: base, Close: 100}, {Timestamp: base.Add(time.Minute), Close: 101}}
	regimes := []marketdata.RegimeSnapshot{{Label: label, Momentum: 0.02}, {Label: label, Momentum: 0.02}}
	return marketdata.ProbabilisticBatch{Bars: marketdata.Bars{Rows: bars}, Regimes: regimes}
}

func alwaysSignal(s strategy.Signal) StrategyFunc {
	return func(frame strategy.Frame) []strategy.Signal {
		out := make([]strategy.Signal, len(frame.Bars))
		for i := range out {
			out[i] = s
		}
		return out
	}
}

func TestRouterHappyPathEnqueuesOrder(t *testing.T) {
	sink := &fakeSink{}
	deps := Dependencies{
		DAL:          &fakeDAL{batch: makeBatch("trend_up", strategy.SignalLong)},
		Strategies:   map[string]StrategyFunc{"momentum": alwaysSignal(strategy.SignalLong)},
		DefaultStrat: "momentum",
		Kelly:        backtest.FractionalKelly{Fraction: 1, MinFraction: 0, MaxFraction: 0.25},
		OrderSink:    sink,
	}
	router := NewRouter(deps)
	rc := NewContext(Request{Symbol: "AAPL", Interval: "1m"})

	result := router.Run(context.Background(), rc)

	require.Empty(t, result.HaltedAt)
	require.Len(t, sink.enqueued, 1)
	assert.Equal(t, []string{"ingest_frame", "infer_priors", "pick_strategy", "risk_size", "enqueue_order"}, rc.Log)
}

func TestRouterHaltsOnUncertainRegime(t *testing.T) {
	deps := Dependencies{
		DAL:          &fakeDAL{batch: makeBatch("uncertain", strategy.SignalLong)},
		Strategies:   map[string]StrategyFunc{"momentum": alwaysSignal(strategy.SignalLong)},
		DefaultStrat: "momentum",
		Kelly:        backtest.FractionalKelly{Fraction: 1, MaxFraction: 0.25},
	}
	router := NewRouter(deps)
	rc := NewContext(Request{Symbol: "AAPL", Interval: "1m"})

	result := router.Run(context.Background(), rc)

	assert.Equal(t, "infer_priors", result.HaltedAt)
	assert.True(t, rc.Halt)
	// Nodes after the halting node never ran.
	assert.Equal(t, []string{"ingest_frame", "infer_priors"}, rc.Log)
}

func TestRouterHaltsOnEmptyMarketData(t *testing.T) {
	deps := Dependencies{DAL: &fakeDAL{batch: marketdata.ProbabilisticBatch{}}}
	router := NewRouter(deps)
	rc := NewContext(Request{Symbol: "AAPL", Interval: "1m"})

	result := router.Run(context.Background(), rc)
	assert.Equal(t, "ingest_frame", result.HaltedAt)
}

func TestRouterHaltsOnFlatSignal(t *testing.T) {
	deps := Dependencies{
		DAL:          &fakeDAL{batch: makeBatch("calm", strategy.SignalFlat)},
		Strategies:   map[string]StrategyFunc{"momentum": alwaysSignal(strategy.SignalFlat)},
		DefaultStrat: "momentum",
		Kelly:        backtest.FractionalKelly{Fraction: 1, MaxFraction: 0.25},
	}
	router := NewRouter(deps)
	rc := NewContext(Request{Symbol: "AAPL", Interval: "1m"})

	result := router.Run(context.Background(), rc)
	assert.Equal(t, "pick_strategy", result.HaltedAt)
}
