// Package metrics exposes the Prometheus collectors shared across the
// router, streaming manager, vendor clients and sweep runner, generalizing
// the adred-codev-ws_poc metrics packages' collector-registration style.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RouterLatency observes end-to-end router run duration, seconds.
	RouterLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trading_core_router_run_duration_seconds",
		Help:    "Duration of a full orchestration router run.",
		Buckets: prometheus.DefBuckets,
	})

	// StreamQueueDepth reports the current depth of a streaming manager's
	// output queue, per symbol.
	StreamQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trading_core_stream_queue_depth",
		Help: "Current depth of a symbol's streaming output queue.",
	}, []string{"symbol"})

	// VendorRequestsTotal counts vendor HTTP requests by vendor and outcome.
	VendorRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trading_core_vendor_requests_total",
		Help: "Vendor HTTP requests by vendor and outcome.",
	}, []string{"vendor", "outcome"})

	// SweepJobDuration observes individual sweep job execution time.
	SweepJobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trading_core_sweep_job_duration_seconds",
		Help:    "Duration of a single sweep job.",
		Buckets: prometheus.DefBuckets,
	})
)

// MustRegister registers every collector in this package against reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(RouterLatency, StreamQueueDepth, VendorRequestsTotal, SweepJobDuration)
}
