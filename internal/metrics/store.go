package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DBQueryDuration measures document store operation duration.
	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "catalog_store_query_duration_seconds",
			Help: "Document store operation duration in seconds",
			// 100µs to 10s
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"operation"},
	)

	// DBQueriesTotal counts document store operations by outcome.
	DBQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_store_queries_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "status"},
	)

	// DBConnectionsOpen tracks currently open database connections.
	DBConnectionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_store_connections_open",
			Help: "Number of currently open database connections",
		},
	)

	// DBConnectionsIdle tracks currently idle database connections.
	DBConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_store_connections_idle",
			Help: "Number of currently idle database connections",
		},
	)

	// DBConnectionsInUse tracks database connections currently in use.
	DBConnectionsInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_store_connections_in_use",
			Help: "Number of database connections currently in use",
		},
	)

	// DBConnectionsMaxOpen tracks the configured connection ceiling.
	DBConnectionsMaxOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_store_connections_max_open",
			Help: "Maximum number of open database connections allowed",
		},
	)
)

func storeCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		DBQueryDuration,
		DBQueriesTotal,
		DBConnectionsOpen,
		DBConnectionsIdle,
		DBConnectionsInUse,
		DBConnectionsMaxOpen,
	}
}
