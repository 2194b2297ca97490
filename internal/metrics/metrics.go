// Package metrics exposes the prometheus instruments for the three public
// operations, registered against a private registry so multiple sessions
// in one process don't collide on global registration.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns one private prometheus registry and the instruments
// act/extract/observe loops report into.
type Recorder struct {
	registry *prometheus.Registry

	calls               *prometheus.CounterVec
	callDuration        *prometheus.HistogramVec
	dispatchRetries     prometheus.Counter
	chunksExhausted     prometheus.Counter
	verifierRejections  prometheus.Counter
}

// NewRecorder builds a Recorder with every instrument registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "browserloop_calls_total",
			Help: "Number of act/extract/observe calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "browserloop_call_duration_seconds",
			Help:    "Latency of act/extract/observe calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		dispatchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "browserloop_dispatch_retries_total",
			Help: "Number of act-loop dispatch retries (Phase G).",
		}),
		chunksExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "browserloop_chunks_exhausted_total",
			Help: "Number of act-loop terminations caused by chunk exhaustion.",
		}),
		verifierRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "browserloop_verifier_rejections_total",
			Help: "Number of act-loop completion-verification rejections.",
		}),
	}

	reg.MustRegister(r.calls, r.callDuration, r.dispatchRetries, r.chunksExhausted, r.verifierRejections)
	return r
}

// ObserveCall records one call's outcome and latency.
func (r *Recorder) ObserveCall(operation string, success bool, seconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.calls.WithLabelValues(operation, outcome).Inc()
	r.callDuration.WithLabelValues(operation).Observe(seconds)
}

// IncDispatchRetry records one act-loop dispatch retry.
func (r *Recorder) IncDispatchRetry() { r.dispatchRetries.Inc() }

// IncChunksExhausted records one act-loop chunk-exhaustion termination.
func (r *Recorder) IncChunksExhausted() { r.chunksExhausted.Inc() }

// IncVerifierRejection records one act-loop verifier rejection.
func (r *Recorder) IncVerifierRejection() { r.verifierRejections.Inc() }

// Handler returns the /metrics HTTP handler for this Recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
