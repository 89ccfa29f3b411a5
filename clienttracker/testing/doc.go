// Package testing provides test utilities for the client tracker.
//
// It follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - NewMemStore: In-memory types.Store with a manually advanced clock and
//     real optimistic-conflict detection, for deterministic expiry tests
//   - NewTestLogger: types.Logger that writes to the testing.T log
//   - RandomUID: Collision-free identifiers for test fixtures
//
// Example usage:
//
//	import (
//	    "testing"
//	    trackertest "github.com/lscspirit/novacast-common/clienttracker/testing"
//	)
//
//	func TestExpiry(t *testing.T) {
//	    store := trackertest.NewMemStore()
//	    // heartbeat, then jump past the TTL without sleeping
//	    store.AdvanceClock(2 * time.Minute)
//	}
package testing
