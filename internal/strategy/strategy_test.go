package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipper1994/trading-core/internal/marketdata"
)

func syntheticFrame(n int, trendUp bool) Frame {
	base := time.Unix(0, 0)
	bars := make([]marketdata.Bar, n)
	regimes := make([]marketdata.RegimeSnapshot, n)
	price := 100.0
	for i := 0; i < n; i++ {
		if trendUp {
			price *= 1.002
		} else {
			price *= 0.998
		}
		bars[i] = marketdata.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open:      price, High: price * 1.001, Low: price * 0.999, Close: price,
		}
		label := "calm"
		momentum := 0.0
		if trendUp {
			label, momentum = "trend_up", 0.02
		} else {
			label, momentum = "trend_down", -0.02
		}
		regimes[i] = marketdata.RegimeSnapshot{Label: label, Momentum: momentum}
	}
	return Frame{Bars: bars, Regimes: regimes}
}

func TestGenerateBreakoutSignalsLengthMatchesBars(t *testing.T) {
	f := syntheticFrame(60, true)
	signals := GenerateBreakoutSignals(f, DefaultBreakoutParams())
	assert.Len(t, signals, len(f.Bars))
}

func TestGenerateMomentumSignalsLongOnlyInTrendUpRegime(t *testing.T) {
	f := syntheticFrame(60, true)
	signals := GenerateMomentumSignals(f, DefaultMomentumParams())
	for _, s := range signals {
		assert.NotEqual(t, SignalShort, s, "trend_up regime must never emit a short signal")
	}
}

func TestGenerateMeanReversionSignalsLengthCoherent(t *testing.T) {
	f := syntheticFrame(50, false)
	signals := GenerateMeanReversionSignals(f, DefaultMeanReversionParams())
	require.Len(t, signals, len(f.Bars))
}

func TestShiftSignalsDefersByOneBarUnlessImmediate(t *testing.T) {
	raw := []Signal{SignalFlat, SignalLong, SignalLong, SignalShort}
	shifted := shiftSignals(raw, false)
	assert.Equal(t, []Signal{SignalFlat, SignalFlat, SignalLong, SignalLong}, shifted)

	immediate := shiftSignals(raw, true)
	assert.Equal(t, raw, immediate)
}

func TestPricePriorityPrefersProbFilteredPrice(t *testing.T) {
	b := marketdata.Bar{Close: 10, ProbFilteredPrice: 11, FilteredPrice: 12}
	assert.Equal(t, 11.0, pricePriority(b))
}

func TestPricePriorityFallsBackToClose(t *testing.T) {
	b := marketdata.Bar{Close: 10}
	assert.Equal(t, 10.0, pricePriority(b))
}
