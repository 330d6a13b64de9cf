package strategy

// GenerateMomentumSignals implements the dual-EMA crossover generator: fast
// EMA above slow EMA is long, fast below slow is short, gated by regime and
// velocity. Matches app/strats/momentum.py's generate_signals.
func GenerateMomentumSignals(frame Frame, params MomentumParams) []Signal {
	n := len(frame.Bars)
	signals := make([]Signal, n)
	if n == 0 {
		return signals
	}

	prices := make([]float64, n)
	for i, b := range frame.Bars {
		prices[i] = pricePriority(b)
	}
	fast := ema(prices, params.FastSpan)
	slow := ema(prices, params.SlowSpan)

	for i := 0; i < n; i++ {
		if i < params.SlowSpan {
			continue
		}
		var dir Signal
		switch {
		case fast[i] > slow[i]:
			dir = SignalLong
		case fast[i] < slow[i]:
			dir = SignalShort
		default:
			dir = SignalFlat
		}

		if dir != SignalFlat && i < len(frame.Regimes) {
			if !regimeGate(frame.Regimes[i], dir) || !velocityGate(frame.Regimes[i].Momentum, dir) {
				dir = SignalFlat
			}
		}
		signals[i] = dir
	}

	return shiftSignals(signals, params.EnterOnSignalBar)
}
