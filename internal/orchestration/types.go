// Package orchestration implements the five-stage deterministic router:
// ingest_frame -> infer_priors -> pick_strategy -> risk_size ->
// enqueue_order, run as a plain linear node list over a shared mutable
// state struct rather than a general graph-execution engine (the source's
// langgraph dependency is replaced per the redesign notes, not carried
// forward).
package orchestration

import (
	"time"

	"github.com/google/uuid"

	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/strategy"
)

// Request is the caller-supplied input to one router run, matching
// RouterRequest.
type Request struct {
	Symbol   string
	Interval string
	Start    time.Time
	End      time.Time
}

// DefaultTimeWindow returns a lookback window ending now: 60 minutes for
// "1m", 60 hours for "1h", and 60 days for any other interval, matching
// default_time_window's convenience constructor.
func DefaultTimeWindow(interval string) (time.Time, time.Time) {
	end := time.Now().UTC()
	step := 60
	var lookback time.Duration
	switch interval {
	case "1m":
		lookback = time.Duration(step) * time.Minute
	case "1h":
		lookback = time.Duration(step) * time.Hour
	default:
		lookback = time.Duration(step) * 24 * time.Hour
	}
	return end.Add(-lookback), end
}

// Context is the shared mutable state every node reads and writes, matching
// RouterContext. Halt short-circuits the remaining node list when set.
type Context struct {
	RunID   string
	Request Request

	Batch    marketdata.ProbabilisticBatch
	Regime   marketdata.RegimeSnapshot
	Strategy string
	Signal   strategy.Signal
	PositionFraction float64

	OrderIntent *OrderIntent

	Halt       bool
	HaltReason string

	Log []string // node names executed, in order, for test assertions
}

// NewContext constructs a Context with a fresh RunID.
func NewContext(req Request) *Context {
	return &Context{RunID: uuid.NewString(), Request: req}
}

// OrderIntent is the final emitted decision, matching §3's OrderIntent.
type OrderIntent struct {
	RunID      string
	Symbol     string
	Direction  strategy.Signal
	Fraction   float64
	Timestamp  time.Time
}

// Result is what Run returns: the final context state plus whichever node
// halted execution, if any.
type Result struct {
	Context    *Context
	HaltedAt   string
}
