// Package metrics registers the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompilationsTotal counts TableSpec compilations by source
	// (golden_path, rule_based, llm) and outcome (ok, error).
	CompilationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entrestate_compilations_total",
		Help: "TableSpec compilations by source and outcome.",
	}, []string{"source", "outcome"})

	// MaterializationDuration observes wall time of Time Table
	// materializations, labeled by row grain.
	MaterializationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "entrestate_materialization_duration_seconds",
		Help:    "Time Table materialization latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"row_grain"})

	// CacheRequestsTotal counts Time Table cache lookups by result
	// (hit, miss, error, bypass).
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entrestate_timetable_cache_requests_total",
		Help: "Time Table cache lookups by result.",
	}, []string{"result"})

	// RankingsTotal counts scoring runs by outcome.
	RankingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entrestate_rankings_total",
		Help: "Ranking runs by outcome.",
	}, []string{"outcome"})
)
