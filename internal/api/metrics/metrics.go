// Package metrics defines and registers all custom Prometheus metrics for the
// movie service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movies"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRequestsTotal counts registration and login outcomes.
// Labels:
//   - operation: "register" or "login"
//   - result: an error kind (e.g. "invalid_credentials") or "ok"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// LoginThrottledTotal counts logins rejected by the failed-attempt throttle.
var LoginThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_throttled_total",
		Help:      "Total number of logins rejected because of repeated failures.",
	},
)

// ── Hash pool metrics ─────────────────────────────────────────────────────────

// HashQueueDepth tracks the number of password hash jobs waiting for a worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hash jobs waiting for a worker.",
	},
)

// HashDuration measures how long a single hash or compare takes on a worker.
var HashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hash_duration_seconds",
		Help:      "Duration of password hash and compare jobs on the worker pool.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Movie metrics ─────────────────────────────────────────────────────────────

// MovieMutationsTotal counts create/update/delete outcomes.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: an error kind (e.g. "forbidden") or "ok"
var MovieMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movie_mutations_total",
		Help:      "Total number of movie mutations, by operation and outcome.",
	},
	[]string{"operation", "result"},
)
