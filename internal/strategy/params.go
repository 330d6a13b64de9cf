package strategy

// BreakoutParams configures the breakout signal generator, matching
// app/strats/breakout.py's BreakoutParams.
type BreakoutParams struct {
	LookbackWindow   int
	ATRPeriod        int
	ATRMultiplier    float64
	EnterOnBreakBar  bool
}

// DefaultBreakoutParams mirrors the original module's defaults.
func DefaultBreakoutParams() BreakoutParams {
	return BreakoutParams{
		LookbackWindow: 20,
		ATRPeriod:      14,
		ATRMultiplier:  1.5,
	}
}

// MomentumParams configures the momentum signal generator, matching
// app/strats/params.py's MomentumParams.
type MomentumParams struct {
	FastSpan        int
	SlowSpan        int
	EnterOnSignalBar bool
}

// DefaultMomentumParams mirrors the original module's defaults.
func DefaultMomentumParams() MomentumParams {
	return MomentumParams{FastSpan: 12, SlowSpan: 26}
}

// MeanReversionParams configures the mean-reversion signal generator,
// matching app/strats/params.py's MeanReversionParams.
type MeanReversionParams struct {
	Window       int
	ZEntry       float64
	ZExit        float64
	EnterOnSignalBar bool
}

// DefaultMeanReversionParams mirrors the original module's defaults.
func DefaultMeanReversionParams() MeanReversionParams {
	return MeanReversionParams{Window: 20, ZEntry: 2.0, ZExit: 0.5}
}
