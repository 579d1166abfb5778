// Package metrics holds the prometheus collectors of query execution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use through a nil pointer, in which case nothing is
// recorded.
type Metrics struct {
	queries        *prometheus.CounterVec
	queryDuration  prometheus.Histogram
	collectGroups  *prometheus.CounterVec
	collects       *prometheus.CounterVec
	rowsScanned    *prometheus.CounterVec
	memoryExceeded prometheus.Counter
	peakMemory     prometheus.Histogram
}

func New(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		queries: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "gather",
			Name:      "queries_total",
			Help:      "Queries executed, partitioned by status.",
		}, []string{"status"}),
		queryDuration: promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
			Namespace: "gather",
			Name:      "query_duration_seconds",
			Help:      "Query execution time.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		collects: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "gather",
			Name:      "collects_total",
			Help:      "COLLECT operators executed, partitioned by method.",
		}, []string{"method"}),
		collectGroups: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "gather",
			Name:      "collect_groups_total",
			Help:      "Groups produced by COLLECT operators, partitioned by method.",
		}, []string{"method"}),
		rowsScanned: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "gather",
			Name:      "documents_scanned_total",
			Help:      "Documents passed over by scans, partitioned by scan type.",
		}, []string{"scan"}),
		memoryExceeded: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Namespace: "gather",
			Name:      "memory_limit_exceeded_total",
			Help:      "Queries that failed because they exceeded their memory limit.",
		}),
		peakMemory: promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
			Namespace: "gather",
			Name:      "query_peak_memory_bytes",
			Help:      "Peak memory held by buffered query state.",
			Buckets:   prometheus.ExponentialBuckets(1024, 8, 8),
		}),
	}
}

func (m *Metrics) ObserveQuery(d time.Duration, peakMemory int64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(status).Inc()
	m.queryDuration.Observe(d.Seconds())
	m.peakMemory.Observe(float64(peakMemory))
}

func (m *Metrics) ObserveCollect(method string, groups int) {
	if m == nil {
		return
	}
	m.collects.WithLabelValues(method).Inc()
	m.collectGroups.WithLabelValues(method).Add(float64(groups))
}

func (m *Metrics) ObserveScan(scan string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rowsScanned.WithLabelValues(scan).Add(float64(n))
}

func (m *Metrics) MemoryLimitExceeded() {
	if m == nil {
		return
	}
	m.memoryExceeded.Inc()
}
