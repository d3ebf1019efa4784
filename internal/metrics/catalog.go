package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes used as the "outcome" label of QueriesTotal.
const (
	OutcomeSuccess          = "success"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeInvalidRecord    = "invalid_record"
)

var (
	// QueriesTotal counts catalog queries by outcome.
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "Total number of catalog queries",
		},
		[]string{"outcome"},
	)

	// QueryResults observes how many resources each successful query returned.
	QueryResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_query_results",
			Help:    "Number of resources returned per query",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
	)

	// RecordsResolved counts records mapped to each union variant.
	RecordsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_records_resolved_total",
			Help: "Total number of records resolved, by variant",
		},
		[]string{"variant"},
	)

	// RecordsSkipped counts records dropped under the lenient record policy.
	RecordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_records_skipped_total",
			Help: "Total number of records skipped because they could not be mapped",
		},
		[]string{"reason"},
	)

	// DocumentsLoaded tracks the size of the collection after the last load.
	DocumentsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_documents_loaded",
			Help: "Number of documents written by the last data load",
		},
	)

	// LoadsTotal counts data loads by status.
	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Total number of data loads",
		},
		[]string{"status"},
	)
)

func catalogCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		QueriesTotal,
		QueryResults,
		RecordsResolved,
		RecordsSkipped,
		DocumentsLoaded,
		LoadsTotal,
	}
}
