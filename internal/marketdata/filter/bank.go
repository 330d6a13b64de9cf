package filter

// Combination selects how Bank combines its constituent filters' outputs
// into ProbFilteredPrice, matching app/filters/base.py FilterPipeline.
type Combination string

const (
	CombineWeightedAvg Combination = "weighted_avg"
	CombineProduct      Combination = "product"
	CombineMin          Combination = "min"
	CombineMax          Combination = "max"
	CombineMean         Combination = "mean"
)

// Config configures one symbol's filter Bank.
type Config struct {
	Kalman          KalmanConfig
	ButterworthCut  float64
	EMASpan         int
	Weights         map[string]float64 // used only for CombineWeightedAvg
	Combine         Combination
}

// DefaultConfig mirrors the original pipeline's defaults: cutoff 0.1,
// EMA span 10, weighted average with Kalman 0.5, Butterworth 0.3, EMA 0.2.
func DefaultConfig() Config {
	return Config{
		Kalman:         DefaultKalmanConfig(),
		ButterworthCut: 0.1,
		EMASpan:        10,
		Weights:        map[string]float64{"kalman": 0.5, "butterworth": 0.3, "ema": 0.2},
		Combine:        CombineWeightedAvg,
	}
}

// Bank owns one instance of each filter for a single symbol and produces
// the per-bar probabilistic annotations. It holds no package-level state —
// callers keep one Bank per symbol (see stream.Manager).
type Bank struct {
	cfg Config

	kalman *Kalman1D
	butter *Butterworth
	ema    *EMA
}

// NewBank constructs a Bank from cfg.
func NewBank(cfg Config) *Bank {
	return &Bank{
		cfg:    cfg,
		kalman: NewKalman1D(cfg.Kalman),
		butter: NewButterworth(cfg.ButterworthCut),
		ema:    NewEMA(cfg.EMASpan),
	}
}

// Output is the set of values a Bank.Step call produces for one bar.
type Output struct {
	KalmanPrice      float64
	KalmanVelocity   float64
	KalmanUncertainty float64 // Kalman P11, the position-variance estimate
	ButterworthPrice float64
	EMAPrice         float64
	FilteredPrice    float64 // combined, per cfg.Combine
}

// Step ingests one raw price observation and returns the filtered outputs.
// Causal: depends only on this call and all prior calls on the same Bank.
func (b *Bank) Step(price float64) Output {
	kPrice, kVel, kUncertainty := b.kalman.Step(price)
	bwPrice := b.butter.Step(price)
	emaPrice := b.ema.Step(price)

	var combined float64
	switch b.cfg.Combine {
	case CombineProduct:
		combined = kPrice * bwPrice * emaPrice
	case CombineMin:
		combined = math3min(kPrice, bwPrice, emaPrice)
	case CombineMax:
		combined = math3max(kPrice, bwPrice, emaPrice)
	case CombineMean:
		combined = (kPrice + bwPrice + emaPrice) / 3.0
	default: // weighted_avg
		wk := b.cfg.Weights["kalman"]
		wb := b.cfg.Weights["butterworth"]
		we := b.cfg.Weights["ema"]
		total := wk + wb + we
		if total == 0 {
			total = 1
		}
		combined = (kPrice*wk + bwPrice*wb + emaPrice*we) / total
	}

	return Output{
		KalmanPrice:       kPrice,
		KalmanVelocity:    kVel,
		KalmanUncertainty: kUncertainty,
		ButterworthPrice:  bwPrice,
		EMAPrice:          emaPrice,
		FilteredPrice:     combined,
	}
}

// Reset clears all constituent filter state.
func (b *Bank) Reset() {
	b.kalman.Reset()
	b.butter.Reset()
	b.ema.Reset()
}

func math3min(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func math3max(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
