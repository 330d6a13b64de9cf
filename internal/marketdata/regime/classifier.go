// Package regime classifies market state from a rolling window of prices
// into one of a small set of labels, matching
// app/agent/probabilistic/regime.py's RegimeAnalysisAgent.
package regime

import (
	"math"
	"time"

	"github.com/flipper1994/trading-core/internal/marketdata"
)

// Thresholds configures the classifier's decision boundaries.
type Thresholds struct {
	Uncertainty    float64 // uncertainty above this => "uncertain", highest priority
	HighVolatility float64 // volatility above this => "high_volatility"
	TrendMomentum  float64 // |momentum| above this => trend_up/trend_down
	CalmVolatility float64 // volatility below this (and no trend) => "calm"
}

// DefaultThresholds returns the standard classification tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Uncertainty:    0.05,
		HighVolatility: 0.02,
		TrendMomentum:  0.001,
		CalmVolatility: 0.005,
	}
}

// Classifier holds a rolling window of log-returns for one symbol and
// produces a RegimeSnapshot per bar.
type Classifier struct {
	window     int
	thresholds Thresholds

	prices []float64
}

// NewClassifier constructs a Classifier with the given rolling window size
// (number of bars of log-return history retained for momentum/volatility).
func NewClassifier(window int, thresholds Thresholds) *Classifier {
	if window < 2 {
		window = 2
	}
	return &Classifier{window: window, thresholds: thresholds}
}

// Classify ingests one new price observation plus its Kalman uncertainty
// (P11) and returns the regime snapshot for that bar. Requires at least 3
// observations (two log-returns) to produce a non-"uncertain" verdict.
func (c *Classifier) Classify(ts time.Time, price, uncertainty float64) marketdata.RegimeSnapshot {
	c.prices = append(c.prices, price)
	if len(c.prices) > c.window+1 {
		c.prices = c.prices[len(c.prices)-(c.window+1):]
	}

	returns := logReturns(c.prices)
	if len(returns) < 2 {
		return marketdata.RegimeSnapshot{Timestamp: ts, Label: "uncertain", Uncertainty: uncertainty}
	}

	vol := rollingStd(returns)
	mom := centeredMovingAverage(returns)

	label := c.classifyLabel(vol, mom, uncertainty)
	return marketdata.RegimeSnapshot{
		Timestamp:   ts,
		Label:       label,
		Momentum:    mom,
		Volatility:  vol,
		Uncertainty: uncertainty,
	}
}

// classifyLabel applies the first-matching-rule priority order: uncertain
// (above the uncertainty threshold, or from insufficient history) >
// high_volatility > trend_up/trend_down > calm > sideways.
func (c *Classifier) classifyLabel(vol, mom, uncertainty float64) string {
	switch {
	case math.IsNaN(vol) || math.IsNaN(mom):
		return "uncertain"
	case uncertainty > c.thresholds.Uncertainty:
		return "uncertain"
	case vol > c.thresholds.HighVolatility:
		return "high_volatility"
	case mom > c.thresholds.TrendMomentum:
		return "trend_up"
	case mom < -c.thresholds.TrendMomentum:
		return "trend_down"
	case vol < c.thresholds.CalmVolatility:
		return "calm"
	default:
		return "sideways"
	}
}

// Reset clears the rolling window so the next Classify call starts cold.
func (c *Classifier) Reset() {
	c.prices = nil
}

func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}

// rollingStd computes the population std deviation of returns using the
// cumulative-sum trick from _rolling_std (sum of squares minus square of
// sum, scaled by n), avoiding a second full pass for the mean.
func rollingStd(returns []float64) float64 {
	n := float64(len(returns))
	if n == 0 {
		return math.NaN()
	}
	var sum, sumSq float64
	for _, r := range returns {
		sum += r
		sumSq += r * r
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// centeredMovingAverage computes momentum as the mean of returns, which for
// a rolling window is equivalent to a centered moving average of the
// underlying log-price series.
func centeredMovingAverage(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	return sum / float64(len(returns))
}
