package testing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lscspirit/novacast-common/clienttracker/types"
)

// memStoreEpoch is the initial reading of a MemStore clock. The concrete
// value is arbitrary; tests move time with AdvanceClock.
var memStoreEpoch = time.Unix(1_700_000_000, 0).UTC()

// MemStore is an in-memory implementation of types.Store with a manual
// clock. It honors the full capability contract, including optimistic
// conflict detection: a Watch transaction whose watched keys are written
// between snapshot and commit fails with types.ErrTxConflict.
//
// Safe for concurrent use. Intended for unit tests only; nothing persists.
type MemStore struct {
	mu       sync.Mutex
	now      time.Time
	zsets    map[string]map[string]float64
	sets     map[string]map[string]struct{}
	versions map[string]uint64

	// OnWatch, when set, runs after a Watch call snapshots its key versions
	// and before the transaction body. Tests use it to inject conflicting
	// writes at the worst possible moment.
	OnWatch func(keys []string)
}

// Compile-time assertion that MemStore implements types.Store.
var _ types.Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store with the clock at a fixed epoch.
func NewMemStore() *MemStore {
	return &MemStore{
		now:      memStoreEpoch,
		zsets:    make(map[string]map[string]float64),
		sets:     make(map[string]map[string]struct{}),
		versions: make(map[string]uint64),
	}
}

// AdvanceClock moves the store clock forward by d.
func (s *MemStore) AdvanceClock(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = s.now.Add(d)
}

// Now returns the current reading of the store clock.
func (s *MemStore) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.now
}

// ServerTime implements types.Store.
func (s *MemStore) ServerTime(_ context.Context) (time.Time, error) {
	return s.Now(), nil
}

// ZScore implements types.Store.
func (s *MemStore) ZScore(_ context.Context, key, member string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	score, ok := s.zsets[key][member]

	return score, ok, nil
}

// ZRange implements types.Store.
func (s *MemStore) ZRange(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.zrangeLocked(key, func(string, float64) bool { return true }), nil
}

// ZRangeByScore implements types.Store.
func (s *MemStore) ZRangeByScore(_ context.Context, key string, min, max float64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.zrangeByScoreLocked(key, min, max), nil
}

// ZRangeByLex implements types.Store.
func (s *MemStore) ZRangeByLex(_ context.Context, key, min, max string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.zrangeLocked(key, func(member string, _ float64) bool {
		return member >= min && member <= max
	}), nil
}

// ZLexCount implements types.Store.
func (s *MemStore) ZLexCount(_ context.Context, key, min, max string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for member := range s.zsets[key] {
		if member >= min && member <= max {
			count++
		}
	}

	return count, nil
}

// SAdd implements types.Store.
func (s *MemStore) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saddLocked(key, members...)

	return nil
}

// SMembers implements types.Store.
func (s *MemStore) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	sort.Strings(members)

	return members, nil
}

// Update implements types.Store.
func (s *MemStore) Update(_ context.Context, fn func(types.Pipe) error) error {
	p := &memPipe{}
	if err := fn(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.applyLocked(s)

	return nil
}

// Watch implements types.Store.
func (s *MemStore) Watch(ctx context.Context, fn func(types.Tx) error, keys ...string) error {
	s.mu.Lock()
	snapshot := make(map[string]uint64, len(keys))
	for _, key := range keys {
		snapshot[key] = s.versions[key]
	}
	s.mu.Unlock()

	if s.OnWatch != nil {
		s.OnWatch(keys)
	}

	return fn(&memTx{store: s, watched: snapshot})
}

// memTx implements types.Tx against a version snapshot.
type memTx struct {
	store   *MemStore
	watched map[string]uint64
}

var _ types.Tx = (*memTx)(nil)

func (t *memTx) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	return t.store.ZRangeByScore(ctx, key, min, max)
}

func (t *memTx) SMembers(ctx context.Context, key string) ([]string, error) {
	return t.store.SMembers(ctx, key)
}

func (t *memTx) Exec(_ context.Context, fn func(types.Pipe) error) error {
	p := &memPipe{}
	if err := fn(p); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for key, version := range t.watched {
		if t.store.versions[key] != version {
			return types.ErrTxConflict
		}
	}

	p.applyLocked(t.store)

	return nil
}

// memPipe queues writes as closures applied under the store lock.
type memPipe struct {
	ops []func(*MemStore)
}

var _ types.Pipe = (*memPipe)(nil)

func (p *memPipe) applyLocked(s *MemStore) {
	for _, op := range p.ops {
		op(s)
	}
}

func (p *memPipe) ZAdd(key string, score float64, members ...string) {
	p.ops = append(p.ops, func(s *MemStore) {
		if s.zsets[key] == nil {
			s.zsets[key] = make(map[string]float64)
		}
		for _, member := range members {
			s.zsets[key][member] = score
		}
		s.versions[key]++
	})
}

func (p *memPipe) ZRem(key string, members ...string) {
	p.ops = append(p.ops, func(s *MemStore) {
		for _, member := range members {
			delete(s.zsets[key], member)
		}
		s.versions[key]++
	})
}

func (p *memPipe) ZRemRangeByScore(key string, min, max float64) {
	p.ops = append(p.ops, func(s *MemStore) {
		for member, score := range s.zsets[key] {
			if score >= min && score <= max {
				delete(s.zsets[key], member)
			}
		}
		s.versions[key]++
	})
}

func (p *memPipe) SAdd(key string, members ...string) {
	p.ops = append(p.ops, func(s *MemStore) {
		s.saddLocked(key, members...)
	})
}

func (p *memPipe) SRem(key string, members ...string) {
	p.ops = append(p.ops, func(s *MemStore) {
		for _, member := range members {
			delete(s.sets[key], member)
		}
		s.versions[key]++
	})
}

func (p *memPipe) Del(keys ...string) {
	p.ops = append(p.ops, func(s *MemStore) {
		for _, key := range keys {
			delete(s.zsets, key)
			delete(s.sets, key)
			s.versions[key]++
		}
	})
}

func (s *MemStore) saddLocked(key string, members ...string) {
	if s.sets[key] == nil {
		s.sets[key] = make(map[string]struct{})
	}
	for _, member := range members {
		s.sets[key][member] = struct{}{}
	}
	s.versions[key]++
}

func (s *MemStore) zrangeLocked(key string, keep func(string, float64) bool) []string {
	type entry struct {
		member string
		score  float64
	}

	entries := make([]entry, 0, len(s.zsets[key]))
	for member, score := range s.zsets[key] {
		if keep(member, score) {
			entries = append(entries, entry{member, score})
		}
	}

	// Redis orders sorted-set members by score, then lexicographically.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score < entries[j].score
		}

		return entries[i].member < entries[j].member
	})

	members := make([]string, len(entries))
	for i, e := range entries {
		members[i] = e.member
	}

	return members
}

func (s *MemStore) zrangeByScoreLocked(key string, min, max float64) []string {
	return s.zrangeLocked(key, func(_ string, score float64) bool {
		return score >= min && score <= max
	})
}
