package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// storeQueryDuration tracks the time taken by each store query attempt.
	storeQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_store_query_duration_seconds",
		Help:    "Time taken to query a store by spec kind",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"store", "kind"})

	// storeQueryResults counts store outcomes per request.
	storeQueryResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_store_query_results_total",
		Help: "Store query outcomes by status",
	}, []string{"store", "status"}) // status: success, empty, failed

	// storeFallbacks counts native text searches replaced by the substring match.
	storeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_store_fallbacks_total",
		Help: "Total number of text searches degraded to substring match by store",
	}, []string{"store"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_search_duration_seconds",
		Help:    "Time taken for a federated search by query class",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"class"})

	// searchResultItems tracks the post-filter, post-dedup result size.
	searchResultItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_search_result_items_count",
		Help:    "Number of items left after relevance filtering and deduplication",
		Buckets: []float64{0, 1, 5, 12, 24, 36, 72, 108},
	})

	facetCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_facet_cache_lookups_total",
		Help: "Facet cache lookups by field and outcome",
	}, []string{"field", "outcome"}) // outcome: hit, miss
)

// MetricsRecorder provides methods to record catalog metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordStoreQuery records one attempt against a store.
func (m *MetricsRecorder) RecordStoreQuery(store, kind string, duration time.Duration) {
	storeQueryDuration.WithLabelValues(store, kind).Observe(duration.Seconds())
}

// RecordStoreResult records the final status of a store for one request.
func (m *MetricsRecorder) RecordStoreResult(store string, status StoreStatus) {
	storeQueryResults.WithLabelValues(store, string(status)).Inc()
}

// RecordFallback records a text search degraded to substring matching.
func (m *MetricsRecorder) RecordFallback(store string) {
	storeFallbacks.WithLabelValues(store).Inc()
}

// RecordSearch records a complete federated search.
func (m *MetricsRecorder) RecordSearch(class string, duration time.Duration, items int) {
	searchDuration.WithLabelValues(class).Observe(duration.Seconds())
	searchResultItems.Observe(float64(items))
}

// RecordFacetCache records a facet cache lookup.
func (m *MetricsRecorder) RecordFacetCache(field string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	facetCacheLookups.WithLabelValues(field, outcome).Inc()
}
