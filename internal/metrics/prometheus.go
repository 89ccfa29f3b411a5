package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lscspirit/novacast-common/clienttracker/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	trackDuration  prometheus.Histogram
	queryDuration  *prometheus.HistogramVec
	purgedEntries  *prometheus.CounterVec
	purgeConflicts *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "tracker" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "tracker"
	}

	c := &PrometheusCollector{
		trackDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "track_duration_seconds",
			Help:      "Latency of TrackUser calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of tracker read operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		purgedEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purged_entries_total",
			Help:      "Entries removed by lazy purges, by index group.",
		}, []string{"index"}),
		purgeConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purge_conflicts_total",
			Help:      "Optimistic purge transactions discarded due to concurrent writes.",
		}, []string{"index"}),
	}

	reg.MustRegister(c.trackDuration, c.queryDuration, c.purgedEntries, c.purgeConflicts)

	return c
}

// RecordTrackDuration records the latency of one TrackUser call.
func (c *PrometheusCollector) RecordTrackDuration(duration float64) {
	c.trackDuration.Observe(duration)
}

// RecordQueryDuration records the latency of one read operation.
func (c *PrometheusCollector) RecordQueryDuration(operation string, duration float64) {
	c.queryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordPurge records a completed purge round.
func (c *PrometheusCollector) RecordPurge(index string, removed int) {
	c.purgedEntries.WithLabelValues(index).Add(float64(removed))
}

// RecordPurgeConflict records a discarded optimistic purge transaction.
func (c *PrometheusCollector) RecordPurgeConflict(index string) {
	c.purgeConflicts.WithLabelValues(index).Inc()
}
