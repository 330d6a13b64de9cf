package strategy

// GenerateBreakoutSignals implements the channel-breakout generator: a
// close above the prior LookbackWindow's rolling max (ATR-padded) is a long
// entry; a close below the prior rolling min is a short/exit signal.
// Matches app/strats/breakout.py's generate_signals.
func GenerateBreakoutSignals(frame Frame, params BreakoutParams) []Signal {
	n := len(frame.Bars)
	signals := make([]Signal, n)
	if n == 0 {
		return signals
	}

	closes := make([]float64, n)
	for i, b := range frame.Bars {
		closes[i] = pricePriority(b)
	}
	atrSeries := atr(frame.Bars, params.ATRPeriod)

	for i := 0; i < n; i++ {
		if i < params.LookbackWindow {
			continue
		}
		window := closes[i-params.LookbackWindow : i]
		hi := rollingMax(window)
		lo := rollingMin(window)
		pad := params.ATRMultiplier * atrSeries[i]

		var dir Signal
		switch {
		case closes[i] > hi+pad:
			dir = SignalLong
		case closes[i] < lo-pad:
			dir = SignalShort
		default:
			dir = SignalFlat
		}

		if dir != SignalFlat {
			if i < len(frame.Regimes) && (!regimeGate(frame.Regimes[i], dir) || !velocityGate(frame.Regimes[i].Momentum, dir)) {
				dir = SignalFlat
			}
		}
		signals[i] = dir
	}

	return shiftSignals(signals, params.EnterOnBreakBar)
}

func rollingMax(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func rollingMin(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
