// Package metrics defines the Prometheus collectors for the ledger service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BalanceRecomputations counts per-friend balance recomputations,
	// labeled by result ("ok" or "error").
	BalanceRecomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_balance_recomputations_total",
		Help: "Number of per-friend balance recomputations.",
	}, []string{"result"})

	// AggregateRecomputations counts user aggregate recomputations,
	// labeled by result ("ok" or "error").
	AggregateRecomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_aggregate_recomputations_total",
		Help: "Number of user aggregate balance recomputations.",
	}, []string{"result"})

	// HTTPRequests counts handled HTTP requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request handling latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
