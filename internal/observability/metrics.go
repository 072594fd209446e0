package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/sonicctl/internal/restconf"
)

const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeError     = "error"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sonicctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sonicctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	reconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sonicctl",
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Reconciliation passes by resource, state and outcome.",
		},
		[]string{"resource", "state", "outcome"},
	)
	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sonicctl",
			Subsystem: "reconcile",
			Name:      "run_duration_seconds",
			Help:      "Reconciliation pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource", "state", "outcome"},
	)
	restconfRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sonicctl",
			Subsystem: "restconf",
			Name:      "requests_planned_total",
			Help:      "RESTCONF requests emitted by the planner.",
		},
		[]string{"resource", "method"},
	)
	transportFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sonicctl",
			Subsystem: "restconf",
			Name:      "transport_failures_total",
			Help:      "Batches aborted by a device transport failure.",
		},
		[]string{"resource"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			reconcileRuns,
			reconcileDuration,
			restconfRequests,
			transportFailures,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordRun(resource, state, outcome string, duration time.Duration) {
	RegisterMetrics()
	reconcileRuns.WithLabelValues(resource, state, outcome).Inc()
	reconcileDuration.WithLabelValues(resource, state, outcome).Observe(duration.Seconds())
}

func RecordRequests(resource string, requests []restconf.Request) {
	RegisterMetrics()
	for _, req := range requests {
		restconfRequests.WithLabelValues(resource, string(req.Method)).Inc()
	}
}

func RecordTransportFailure(resource string) {
	RegisterMetrics()
	transportFailures.WithLabelValues(resource).Inc()
}
