package metrics

import "github.com/lscspirit/novacast-common/clienttracker/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordTrackDuration discards the track latency metric.
func (n *NopMetrics) RecordTrackDuration(_ /* duration */ float64) {
	// No-op
}

// RecordQueryDuration discards the query latency metric.
func (n *NopMetrics) RecordQueryDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}

// RecordPurge discards the purge metric.
func (n *NopMetrics) RecordPurge(_ /* index */ string, _ /* removed */ int) {
	// No-op
}

// RecordPurgeConflict discards the purge conflict metric.
func (n *NopMetrics) RecordPurgeConflict(_ /* index */ string) {
	// No-op
}
