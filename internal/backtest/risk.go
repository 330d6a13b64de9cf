package backtest

import "math"

// BetaWinRateModel tracks a Beta(alpha, beta) posterior over trade win
// rate and gates/sizes entries from it, matching app/backtest/model.py's
// BetaWinrate. alpha/beta keep updating on every trade outcome regardless
// of whether Allow() currently permits sizing — the posterior should track
// realized performance even while gated off.
type BetaWinRateModel struct {
	Alpha, Beta float64
	Gate        float64 // minimum posterior mean win rate to allow an entry
	MaxFraction float64 // Kelly fraction cap
	MinFraction float64 // Kelly fraction floor (0 when gated off)
}

// NewBetaWinRateModel constructs a model with a uniform Beta(1,1) prior.
func NewBetaWinRateModel(gate, maxFraction float64) *BetaWinRateModel {
	return &BetaWinRateModel{Alpha: 1, Beta: 1, Gate: gate, MaxFraction: maxFraction}
}

// pMean is the posterior mean win rate.
func (m *BetaWinRateModel) pMean() float64 {
	return m.Alpha / (m.Alpha + m.Beta)
}

// Allow reports whether the posterior mean win rate clears Gate.
func (m *BetaWinRateModel) Allow() bool {
	return m.pMean() >= m.Gate
}

// KellyFraction returns the Kelly-derived position fraction, clamped to
// [MinFraction, MaxFraction]. Returns MinFraction (typically 0) when the
// gate is not cleared, independent of the posterior continuing to update.
func (m *BetaWinRateModel) KellyFraction() float64 {
	p := m.pMean()
	if p < m.Gate {
		return m.MinFraction
	}
	f := 2*p - 1 // simplified even-odds Kelly fraction
	return clamp(f, m.MinFraction, m.MaxFraction)
}

// Update folds one trade outcome into the posterior. Called for every
// closed trade, gated or not.
func (m *BetaWinRateModel) Update(won bool) {
	if won {
		m.Alpha++
	} else {
		m.Beta++
	}
}

// FractionalKelly implements the classic fractional-Kelly position sizer,
// matching app/agent/risk/kelley.py's FractionalKellyAgent.__call__.
type FractionalKelly struct {
	Fraction    float64 // fraction of full Kelly to take, e.g. 0.5
	MinFraction float64
	MaxFraction float64
}

// Size computes the position fraction from a win probability p and
// payoff ratio b (average win / average loss), clamped to
// [MinFraction, MaxFraction].
func (k FractionalKelly) Size(p, b float64) float64 {
	if b <= 0 {
		return k.MinFraction
	}
	full := (p*(b+1) - 1) / b
	return clamp(full*k.Fraction, k.MinFraction, k.MaxFraction)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
