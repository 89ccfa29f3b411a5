package types

// MetricsCollector defines methods for recording tracker operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods may be called concurrently and must be thread-safe.
type MetricsCollector interface {
	// RecordTrackDuration records the latency of one TrackUser call.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	RecordTrackDuration(duration float64)

	// RecordQueryDuration records the latency of one read operation.
	//
	// Parameters:
	//   - operation: Query name ("active_events", "event_users", ...)
	//   - duration: Time taken in seconds
	RecordQueryDuration(operation string, duration float64)

	// RecordPurge records a completed purge round.
	//
	// Parameters:
	//   - index: Purged index group ("events", "event_sessions", "users")
	//   - removed: Number of entries removed this round
	RecordPurge(index string, removed int)

	// RecordPurgeConflict records an optimistic purge transaction that was
	// discarded because a watched key changed concurrently.
	//
	// Parameters:
	//   - index: Purged index group ("events", "event_sessions", "users")
	RecordPurgeConflict(index string)
}
