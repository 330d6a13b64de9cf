package orchestration

import (
	"context"

	"github.com/rs/zerolog/log"
)

// NodeFunc is one router stage: it mutates ctx in place and returns an
// error only for programmer-error conditions; expected runtime failures
// set ctx.Halt instead so the router can log and stop cleanly.
type NodeFunc func(ctx context.Context, rc *Context) error

// node pairs a stage with its name for logging, matching the source's
// plain node-list redesign (no generic graph-execution library).
type node struct {
	name string
	fn   NodeFunc
}

// Router runs the fixed five-stage pipeline in order, short-circuiting on
// the first node that sets rc.Halt.
type Router struct {
	nodes []node
}

// NewRouter builds the standard ingest_frame -> infer_priors ->
// pick_strategy -> risk_size -> enqueue_order pipeline over deps.
func NewRouter(deps Dependencies) *Router {
	return &Router{nodes: []node{
		{"ingest_frame", IngestFrame(deps)},
		{"infer_priors", InferPriors(deps)},
		{"pick_strategy", PickStrategy(deps)},
		{"risk_size", RiskSize(deps)},
		{"enqueue_order", EnqueueOrder(deps)},
	}}
}

// Run executes every node in order against rc, stopping at the first node
// that sets rc.Halt or returns a programmer error.
func (r *Router) Run(ctx context.Context, rc *Context) Result {
	for _, n := range r.nodes {
		rc.Log = append(rc.Log, n.name)
		if err := n.fn(ctx, rc); err != nil {
			log.Error().Err(err).Str("node", n.name).Str("run_id", rc.RunID).Msg("router node error")
			rc.Halt = true
			rc.HaltReason = err.Error()
			return Result{Context: rc, HaltedAt: n.name}
		}
		if rc.Halt {
			log.Warn().Str("node", n.name).Str("run_id", rc.RunID).Str("reason", rc.HaltReason).Msg("router halted")
			return Result{Context: rc, HaltedAt: n.name}
		}
	}
	return Result{Context: rc}
}
