// Package filter implements the causal per-bar filter bank: a constant-
// velocity Kalman filter, a 2nd-order Butterworth low-pass, and an EMA,
// combined into the probabilistic price/velocity annotations the rest of
// the pipeline consumes.
package filter

// KalmanConfig holds the process/measurement noise tuning for a 1D
// constant-velocity Kalman filter. Mirrors app/dal/kalman.py KalmanConfig.
type KalmanConfig struct {
	ProcessVariance     float64
	MeasurementVariance float64
	InitialVariance     float64
}

// DefaultKalmanConfig returns the standard noise tuning.
func DefaultKalmanConfig() KalmanConfig {
	return KalmanConfig{
		ProcessVariance:     1e-5,
		MeasurementVariance: 1e-2,
		InitialVariance:     1.0,
	}
}

// Kalman1D is a constant-velocity 1D Kalman filter over state (x, v).
type Kalman1D struct {
	cfg KalmanConfig

	initialized bool
	x, v        float64
	p11, p12    float64
	p21, p22    float64
}

// NewKalman1D constructs a filter with the given tuning.
func NewKalman1D(cfg KalmanConfig) *Kalman1D {
	return &Kalman1D{cfg: cfg}
}

// Reset clears all filter state so the next Step re-initializes from the
// observation it receives.
func (k *Kalman1D) Reset() {
	*k = Kalman1D{cfg: k.cfg}
}

// Step ingests one observation and returns the filtered position and
// velocity estimate plus the position variance P11, used downstream as the
// uncertainty channel. The first call initializes state from the
// observation with zero velocity and the configured initial covariance.
func (k *Kalman1D) Step(z float64) (position, velocity, uncertainty float64) {
	if !k.initialized {
		k.x = z
		k.v = 0
		k.p11 = k.cfg.InitialVariance
		k.p12 = 0
		k.p21 = 0
		k.p22 = k.cfg.InitialVariance
		k.initialized = true
		return k.x, k.v, k.p11
	}

	// Predict: x' = x + v, v' = v (constant velocity), P' = F P F^T + Q.
	predX := k.x + k.v
	predV := k.v
	q := k.cfg.ProcessVariance
	p11 := k.p11 + k.p12 + k.p21 + k.p22 + q
	p12 := k.p12 + k.p22
	p21 := k.p21 + k.p22
	p22 := k.p22 + q

	// Update: measurement model H = [1, 0].
	r := k.cfg.MeasurementVariance
	s := p11 + r
	kGain1 := p11 / s
	kGain2 := p21 / s

	innovation := z - predX
	k.x = predX + kGain1*innovation
	k.v = predV + kGain2*innovation

	k.p11 = p11 - kGain1*p11
	k.p12 = p12 - kGain1*p12
	k.p21 = p21 - kGain2*p11
	k.p22 = p22 - kGain2*p12

	return k.x, k.v, k.p11
}
