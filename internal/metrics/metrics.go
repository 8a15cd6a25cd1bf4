// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts finished requests by route template and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitness_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks request latency
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fitness_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ProgramMutations counts successful writes to program aggregates
	ProgramMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitness_program_mutations_total",
		Help: "Successful program hierarchy mutations by entity and operation",
	}, []string{"entity", "op"})

	// CascadeRemovedNodes counts descendants removed by cascade deletes
	CascadeRemovedNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitness_cascade_removed_nodes_total",
		Help: "Nodes removed by cascade deletes, by entity level",
	}, []string{"entity"})

	// VersionConflicts counts optimistic write retries
	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitness_program_version_conflicts_total",
		Help: "Program writes retried because the aggregate changed concurrently",
	})
)
