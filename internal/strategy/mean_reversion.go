package strategy

// GenerateMeanReversionSignals implements a rolling z-score generator:
// price far below its rolling mean (z < -ZEntry) signals long, far above
// (z > ZEntry) signals short, and the position is closed once |z| falls
// under ZExit. Matches app/strats/mean_reversion.py's generate_signals.
func GenerateMeanReversionSignals(frame Frame, params MeanReversionParams) []Signal {
	n := len(frame.Bars)
	signals := make([]Signal, n)
	if n == 0 {
		return signals
	}

	prices := make([]float64, n)
	for i, b := range frame.Bars {
		prices[i] = pricePriority(b)
	}
	means := rollingMean(prices, params.Window)
	stds := rollingStd(prices, params.Window)

	var position Signal
	for i := 0; i < n; i++ {
		if i < params.Window {
			continue
		}
		std := stds[i]
		var z float64
		if std > 0 {
			z = (prices[i] - means[i]) / std
		}

		switch {
		case z < -params.ZEntry:
			position = SignalLong
		case z > params.ZEntry:
			position = SignalShort
		case absf(z) < params.ZExit:
			position = SignalFlat
		}

		dir := position
		if dir != SignalFlat && i < len(frame.Regimes) {
			if !regimeGate(frame.Regimes[i], dir) || !velocityGate(frame.Regimes[i].Momentum, dir) {
				dir = SignalFlat
			}
		}
		signals[i] = dir
	}

	return shiftSignals(signals, params.EnterOnSignalBar)
}

func rollingMean(xs []float64, window int) []float64 {
	n := len(xs)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		slice := xs[start : i+1]
		var sum float64
		for _, v := range slice {
			sum += v
		}
		out[i] = sum / float64(len(slice))
	}
	return out
}
