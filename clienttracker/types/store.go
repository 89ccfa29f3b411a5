package types

import (
	"context"
	"time"
)

// Store is the capability interface the tracker requires from a key-value
// store. Any backend exposing sorted sets with lexicographic range queries,
// plain sets, a server-side clock, and an optimistic watch-then-transact
// primitive can implement it. Real deployments use the Redis adapter in the
// redisstore package.
//
// All shared mutable state lives behind this interface; the tracker itself
// is stateless, so implementations must be safe for concurrent use from any
// number of goroutines or processes.
//
// Lexicographic bounds passed to ZRangeByLex and ZLexCount are inclusive,
// plain member strings. Adapters translate them into backend-specific
// syntax (for Redis, the "[" inclusive marker).
type Store interface {
	// ServerTime returns the store's own clock. Scores written by the
	// tracker are derived from this clock, never the caller's local clock,
	// to avoid skew across processes.
	ServerTime(ctx context.Context) (time.Time, error)

	// ZScore returns the score of member in the sorted set at key.
	// The second return value is false when the member is absent.
	ZScore(ctx context.Context, key, member string) (float64, bool, error)

	// ZRange returns the full membership of the sorted set at key.
	ZRange(ctx context.Context, key string) ([]string, error)

	// ZRangeByScore returns members whose score lies within [min, max].
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)

	// ZRangeByLex returns members within the inclusive lexicographic
	// range [min, max].
	ZRangeByLex(ctx context.Context, key, min, max string) ([]string, error)

	// ZLexCount returns the number of members within the inclusive
	// lexicographic range [min, max] without materializing them.
	ZLexCount(ctx context.Context, key, min, max string) (int64, error)

	// SAdd adds members to the set at key.
	SAdd(ctx context.Context, key string, members ...string) error

	// SMembers returns the full membership of the set at key.
	SMembers(ctx context.Context, key string) ([]string, error)

	// Update applies the writes queued on the Pipe in one atomic
	// transaction, with no optimistic watch.
	Update(ctx context.Context, fn func(Pipe) error) error

	// Watch runs fn under an optimistic watch on the given keys. Snapshot
	// reads and the final Tx.Exec happen inside fn; if any watched key is
	// mutated concurrently before the transaction commits, Watch returns
	// ErrTxConflict and none of the queued writes are applied.
	Watch(ctx context.Context, fn func(Tx) error, keys ...string) error
}

// Tx is a watched transaction handle. Reads observe a snapshot of the store
// taken while the watch is active; Exec atomically applies queued writes,
// failing with ErrTxConflict if a watched key changed since the watch began.
type Tx interface {
	// ZRangeByScore reads members of key whose score lies within [min, max].
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)

	// SMembers reads the full membership of the set at key.
	SMembers(ctx context.Context, key string) ([]string, error)

	// Exec queues writes via fn and commits them atomically.
	Exec(ctx context.Context, fn func(Pipe) error) error
}

// Pipe queues writes for atomic execution. Queued commands are not applied
// until the enclosing Update or Tx.Exec commits.
type Pipe interface {
	// ZAdd adds members with the given score to the sorted set at key,
	// refreshing the score of members that already exist.
	ZAdd(key string, score float64, members ...string)

	// ZRem removes members from the sorted set at key.
	ZRem(key string, members ...string)

	// ZRemRangeByScore removes members of key whose score lies within [min, max].
	ZRemRangeByScore(key string, min, max float64)

	// SAdd adds members to the set at key.
	SAdd(key string, members ...string)

	// SRem removes members from the set at key.
	SRem(key string, members ...string)

	// Del deletes the given keys entirely.
	Del(keys ...string)
}
