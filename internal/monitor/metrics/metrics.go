package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal counts health probes by result
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiwatch_probes_total",
			Help: "Total number of health probes",
		},
		[]string{"result"},
	)

	// ProbeFailuresTotal counts probe failures by classified kind
	ProbeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiwatch_probe_failures_total",
			Help: "Total number of probe failures by kind",
		},
		[]string{"kind"},
	)

	// ProbeDuration tracks probe round-trip latency
	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "apiwatch_probe_duration_seconds",
			Help:    "Health probe latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ServiceOnline is 1 while the prediction service is considered online
	ServiceOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apiwatch_service_online",
			Help: "Whether the prediction service is online (1) or offline (0)",
		},
	)

	// ConsecutiveFailures tracks the current failure streak
	ConsecutiveFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apiwatch_consecutive_failures",
			Help: "Current number of consecutive probe failures",
		},
	)

	// RetriesArmedTotal counts backoff retries scheduled
	RetriesArmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apiwatch_retries_armed_total",
			Help: "Total number of backoff retries scheduled",
		},
	)

	// TicksSkippedTotal counts periodic ticks skipped due to overlap
	TicksSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apiwatch_ticks_skipped_total",
			Help: "Periodic ticks skipped because a probe or retry was already pending",
		},
	)

	// GatewayRequestsTotal counts prediction API requests by endpoint and outcome
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiwatch_gateway_requests_total",
			Help: "Total number of prediction API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// GatewayCacheHitsTotal counts responses served from the cache
	GatewayCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiwatch_gateway_cache_hits_total",
			Help: "Total number of prediction responses served from the cache",
		},
		[]string{"endpoint"},
	)
)
