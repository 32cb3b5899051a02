package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EDO query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edo_query_duration_seconds",
			Help:    "EDO database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"query", "status"},
	)

	// Rows returned per query
	DBRowsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edo_query_rows_total",
			Help: "Total number of rows returned by EDO queries",
		},
		[]string{"query"},
	)

	// Queries slower than the configured threshold
	DBSlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edo_slow_query_total",
			Help: "Total number of EDO queries slower than the slow-query threshold",
		},
		[]string{"query"},
	)

	// Failed queries by error class
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edo_query_errors_total",
			Help: "Total number of failed EDO queries",
		},
		[]string{"query", "error_type"},
	)

	// Reference cache lookups
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edo_reference_cache_lookups_total",
			Help: "Reference cache lookups by result",
		},
		[]string{"query", "result"}, // result: hit, miss, error
	)
)

// RecordDBQueryDuration observes one statement execution.
func RecordDBQueryDuration(query, status string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(query, status).Observe(duration.Seconds())
}

// AddRowsReturned counts mapped rows for query.
func AddRowsReturned(query string, n int) {
	DBRowsReturned.WithLabelValues(query).Add(float64(n))
}

// IncrementSlowQuery counts a statement above the slow threshold.
func IncrementSlowQuery(query string) {
	DBSlowQueryCount.WithLabelValues(query).Inc()
}

// IncrementQueryError counts a failed statement.
func IncrementQueryError(query, errorType string) {
	DBQueryErrors.WithLabelValues(query, errorType).Inc()
}

// IncrementCacheLookup counts a reference cache lookup.
func IncrementCacheLookup(query, result string) {
	CacheLookups.WithLabelValues(query, result).Inc()
}
