// Package clienttracker provides presence tracking for fleets of concurrent
// client processes that report liveness through periodic heartbeats.
//
// The tracker maintains the live set of (event, session, user) participation
// relationships in a shared external key-value store, with automatic lazy
// expiration and online/offline transition reporting. Compound relationships
// are encoded as ':'-joined, lexicographically range-queryable sorted-set
// members, so per-event and per-session lookups never need a full scan or a
// secondary collection.
//
// # Quick Start
//
// Basic usage with the Redis store adapter:
//
//	import (
//	    "github.com/lscspirit/novacast-common/clienttracker"
//	    "github.com/lscspirit/novacast-common/clienttracker/redisstore"
//	)
//
//	store, err := redisstore.NewFromURL("redis://localhost:6379/0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := clienttracker.DefaultConfig()
//	tracker, err := clienttracker.New(&cfg, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// ingest heartbeats
//	err = tracker.TrackUser(ctx, "user-1", "event-1", "session-1")
//
//	// query current presence
//	events, err := tracker.ActiveEvents(ctx)
//	counts, err := tracker.AllUserCount(ctx)
//
// # Lazy Expiration
//
// There is no background sweep. Every read purges the indices it depends on
// before computing its answer: entries older than the relevant TTL (relative
// to the store's own clock, never the caller's) are removed under an
// optimistic watch-then-transact, and a purge round discarded by a
// concurrent write simply waits for the next read.
//
// # Status Updates
//
// A (session, user) pair's first heartbeat records an online transition and
// its purge-time expiry records an offline transition. AllUserStatusUpdates
// reports the accumulated transitions grouped by session, optionally
// clearing them for consume-once semantics.
//
// Any store exposing sorted sets, lexicographic member ranges, plain sets, a
// server-side clock and an optimistic watch+transaction primitive can back
// the tracker; see the types.Store interface and the redisstore package.
package clienttracker
