package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/strategy"
)

func syntheticBars(n int) []marketdata.Bar {
	base := time.Unix(0, 0)
	bars := make([]marketdata.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price += 0.5
		bars[i] = marketdata.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open:      price - 0.2, High: price + 0.3, Low: price - 0.4, Close: price,
		}
	}
	return bars
}

func TestRunIsIdempotent(t *testing.T) {
	bars := syntheticBars(40)
	signals := make([]strategy.Signal, 40)
	signals[5] = strategy.SignalLong

	cfg := Config{ATRPeriod: 14, ATRStopMult: 2, InitialEquity: 10000}
	r1 := Run(bars, signals, cfg)
	r2 := Run(bars, signals, cfg)

	assert.Equal(t, r1.Metrics, r2.Metrics)
	assert.Equal(t, r1.Trades, r2.Trades)
}

func TestRunProducesEquityPointPerBar(t *testing.T) {
	bars := syntheticBars(30)
	signals := make([]strategy.Signal, 30)
	r := Run(bars, signals, Config{ATRPeriod: 14, ATRStopMult: 2, InitialEquity: 10000})
	require.Len(t, r.EquityCurve, 30)
}

func TestRunEntersOnLongSignalAndClosesAtEndOfData(t *testing.T) {
	bars := syntheticBars(20)
	signals := make([]strategy.Signal, 20)
	signals[2] = strategy.SignalLong

	r := Run(bars, signals, Config{ATRPeriod: 14, ATRStopMult: 5, InitialEquity: 10000})
	require.Len(t, r.Trades, 1)
	assert.Equal(t, "end_of_data", r.Trades[0].ExitReason)
	assert.Equal(t, strategy.SignalLong, r.Trades[0].Direction)
}

func TestBetaWinRateKellyClampsToFractionRange(t *testing.T) {
	m := NewBetaWinRateModel(0.5, 0.25)
	m.MinFraction = 0
	for i := 0; i < 50; i++ {
		m.Update(true)
	}
	f := m.KellyFraction()
	assert.LessOrEqual(t, f, 0.25)
	assert.GreaterOrEqual(t, f, 0.0)
}

func TestBetaWinRatePosteriorKeepsUpdatingWhenGated(t *testing.T) {
	m := NewBetaWinRateModel(0.9, 0.25) // near-impossible gate
	m.Update(true)
	m.Update(true)
	assert.False(t, m.Allow())
	assert.Equal(t, 0.0, m.KellyFraction())
	assert.Greater(t, m.Alpha, 1.0, "posterior must keep tracking outcomes even while gated off")
}

func TestFractionalKellySizeClamps(t *testing.T) {
	k := FractionalKelly{Fraction: 1.0, MinFraction: 0, MaxFraction: 0.2}
	size := k.Size(0.9, 2.0)
	assert.LessOrEqual(t, size, 0.2)
}

func TestFractionalKellyZeroPayoffReturnsFloor(t *testing.T) {
	k := FractionalKelly{Fraction: 0.5, MinFraction: 0.01, MaxFraction: 0.2}
	assert.Equal(t, 0.01, k.Size(0.6, 0))
}
