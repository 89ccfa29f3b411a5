package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	collector := NewNop()

	require.NotNil(t, collector)
	require.IsType(t, &NopMetrics{}, collector)
}

func TestNopMetrics_DoesNotPanic(t *testing.T) {
	collector := NewNop()

	require.NotPanics(t, func() {
		collector.RecordTrackDuration(0.01)
		collector.RecordTrackDuration(-1)
		collector.RecordQueryDuration("active_events", 0.5)
		collector.RecordQueryDuration("", 0)
		collector.RecordPurge("users", 3)
		collector.RecordPurge("events", 0)
		collector.RecordPurgeConflict("event_sessions")
	})
}

func TestNewPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "tracker_test")

	require.NotNil(t, collector)

	collector.RecordTrackDuration(0.002)
	collector.RecordQueryDuration("all_user_count", 0.01)
	collector.RecordPurge("users", 5)
	collector.RecordPurgeConflict("users")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 4)
}
