package clienttracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lscspirit/novacast-common/clienttracker/types"
	"github.com/lscspirit/novacast-common/internal/keycodec"
	"github.com/lscspirit/novacast-common/internal/logging"
	"github.com/lscspirit/novacast-common/internal/metrics"
)

// Fixed names of the tracker indices in the shared store.
const (
	eventListKey          = "tracker:event-list"
	eventSessionKey       = "tracker:session"
	eventSessionTimeKey   = "tracker:session-time"
	eventUserKey          = "tracker:event-user"
	sessionUserKey        = "tracker:session-user"
	userSessionTimeKey    = "tracker:user-session-time"
	sessionUserOnlineKey  = "tracker:session-user-online"
	sessionUserOfflineKey = "tracker:session-user-offline"
)

// Purge index groups reported to the metrics collector.
const (
	purgeIndexEvents        = "events"
	purgeIndexEventSessions = "event_sessions"
	purgeIndexUsers         = "users"
)

// Tracker maintains the live set of (event, session, user) participation
// relationships for a fleet of heartbeating client processes.
//
// Entities are implicit: an event exists while it has an entry in the event
// list index, a session while it has an entry in the session-time index, and
// a user's participation while it has an entry in the user-session-time
// index. There are no per-entity records; existence is always inferred from
// index membership, and expired entries are purged lazily as a side effect
// of reads.
//
// Thread Safety:
//   - The Tracker holds no mutable state of its own; all shared state lives
//     in the store. Any number of goroutines or processes may call its
//     methods concurrently.
//   - Purges use optimistic watch-then-transact concurrency. A purge round
//     discarded because of a concurrent write is silently skipped (after the
//     configured retries); the next read triggers another round.
//
// Known race, by accepted tradeoff: the online-transition check in TrackUser
// is not part of the heartbeat transaction, so two first heartbeats for the
// same (session, user) pair can both record an online transition.
type Tracker struct {
	cfg     Config
	store   types.Store
	logger  Logger
	metrics MetricsCollector
}

// New creates a new Tracker with the provided configuration and store.
//
// Missing configuration values are filled with defaults, then the whole
// configuration is validated eagerly: a nil store or a TTL ordering
// violation fails here, never at call time.
//
// Returns a concrete *Tracker following the "accept interfaces, return
// structs" principle. Consumers can define their own interfaces for mocking.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - store: Store adapter backed by the shared key-value store
//   - opts: Optional configuration (logger, metrics)
//
// Returns:
//   - *Tracker: Initialized tracker instance
//   - error: ErrStoreRequired or ErrInvalidConfig wrapping the validation failure
//
// Example:
//
//	cfg := clienttracker.DefaultConfig()
//	store := redisstore.New(redisClient)
//	tracker, err := clienttracker.New(&cfg, store)
func New(cfg *Config, store types.Store, opts ...Option) (*Tracker, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	options := &trackerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = logging.NewSlogDefault()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	return &Tracker{
		cfg:     *cfg,
		store:   store,
		logger:  options.logger,
		metrics: options.metrics,
	}, nil
}

//
// Write path
//

// TrackUser records one heartbeat for the (user, event, session) triple.
//
// The heartbeat refreshes the event, session and user participation indices
// with the store's current server time in a single transaction. Duplicate
// heartbeats are idempotent; they only refresh timestamps. A first-ever
// heartbeat for the (session, user) pair additionally records an online
// transition for status-update reporting.
//
// Parameters:
//   - ctx: Context for the store round-trips
//   - userUID: Opaque user identifier (must not contain ':')
//   - eventUID: Opaque event identifier (must not contain ':')
//   - sessionUID: Opaque session identifier (must not contain ':')
//
// Returns:
//   - error: ErrInvalidUID for malformed identifiers, or the store error unchanged
func (t *Tracker) TrackUser(ctx context.Context, userUID, eventUID, sessionUID string) error {
	start := time.Now()

	if err := validateUIDs(userUID, eventUID, sessionUID); err != nil {
		return err
	}

	now, err := t.store.ServerTime(ctx)
	if err != nil {
		return err
	}
	score := timeScore(now)

	eventSessionCode := keycodec.EventSessionCode(eventUID, sessionUID)
	eventUserCode := keycodec.EventUserCode(userUID, eventUID)
	sessionUserCode := keycodec.SessionUserCode(userUID, sessionUID)
	userSessionCode := keycodec.UserSessionCode(userUID, eventUID, sessionUID)

	// A pair absent from the session-user index is newly online. This
	// check-then-act is deliberately outside the heartbeat transaction;
	// see the Tracker doc for the accepted race.
	_, present, err := t.store.ZScore(ctx, sessionUserKey, sessionUserCode)
	if err != nil {
		return err
	}
	if !present {
		if err := t.store.SAdd(ctx, sessionUserOnlineKey, sessionUserCode); err != nil {
			return err
		}
		t.logger.Debug("user online", "session", sessionUID, "user", userUID)
	}

	err = t.store.Update(ctx, func(p types.Pipe) error {
		p.ZAdd(eventListKey, score, eventUID)
		p.ZAdd(eventSessionKey, 0, eventSessionCode)
		p.ZAdd(eventSessionTimeKey, score, eventSessionCode)
		p.ZAdd(eventUserKey, 0, eventUserCode)
		p.ZAdd(sessionUserKey, 0, sessionUserCode)
		p.ZAdd(userSessionTimeKey, score, userSessionCode)

		return nil
	})
	if err != nil {
		return err
	}

	t.metrics.RecordTrackDuration(time.Since(start).Seconds())

	return nil
}

//
// Read path
//

// ActiveEvents returns the UIDs of every event with at least one heartbeat
// within EventTTL of the store's current time. Expired events are purged
// first. Order is unspecified.
func (t *Tracker) ActiveEvents(ctx context.Context) ([]string, error) {
	defer t.observe("active_events", time.Now())

	if err := t.purgeEvents(ctx); err != nil {
		return nil, err
	}

	return t.store.ZRange(ctx, eventListKey)
}

// AllEventSessions returns the session UIDs of every active session across
// all events. Expired sessions are purged first.
func (t *Tracker) AllEventSessions(ctx context.Context) ([]string, error) {
	defer t.observe("all_event_sessions", time.Now())

	if err := t.purgeEventSessions(ctx); err != nil {
		return nil, err
	}

	codes, err := t.store.ZRange(ctx, eventSessionKey)
	if err != nil {
		return nil, err
	}

	sessions := make([]string, 0, len(codes))
	for _, code := range codes {
		_, sessionUID := keycodec.ParseEventSessionCode(code)
		sessions = append(sessions, sessionUID)
	}

	return sessions, nil
}

// EventSessions returns the session UIDs of the active sessions belonging
// to the given event, selected with a lexicographic prefix range instead of
// a full scan. Expired sessions are purged first.
func (t *Tracker) EventSessions(ctx context.Context, eventUID string) ([]string, error) {
	defer t.observe("event_sessions", time.Now())

	if !keycodec.Valid(eventUID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUID, eventUID)
	}

	if err := t.purgeEventSessions(ctx); err != nil {
		return nil, err
	}

	minBound, maxBound := keycodec.PrefixRange(eventUID)
	codes, err := t.store.ZRangeByLex(ctx, eventSessionKey, minBound, maxBound)
	if err != nil {
		return nil, err
	}

	sessions := make([]string, 0, len(codes))
	for _, code := range codes {
		_, sessionUID := keycodec.ParseEventSessionCode(code)
		sessions = append(sessions, sessionUID)
	}

	return sessions, nil
}

// EventUsers returns the user UIDs currently participating in the given
// event. Expired user participations are purged first.
func (t *Tracker) EventUsers(ctx context.Context, eventUID string) ([]string, error) {
	defer t.observe("event_users", time.Now())

	if !keycodec.Valid(eventUID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUID, eventUID)
	}

	if err := t.purgeUsers(ctx); err != nil {
		return nil, err
	}

	minBound, maxBound := keycodec.PrefixRange(eventUID)
	codes, err := t.store.ZRangeByLex(ctx, eventUserKey, minBound, maxBound)
	if err != nil {
		return nil, err
	}

	users := make([]string, 0, len(codes))
	for _, code := range codes {
		_, userUID := keycodec.ParseEventUserCode(code)
		users = append(users, userUID)
	}

	return users, nil
}

// EventUserCount returns the number of users currently participating in the
// given event, without materializing the membership.
func (t *Tracker) EventUserCount(ctx context.Context, eventUID string) (int64, error) {
	defer t.observe("event_user_count", time.Now())

	if !keycodec.Valid(eventUID) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUID, eventUID)
	}

	if err := t.purgeUsers(ctx); err != nil {
		return 0, err
	}

	minBound, maxBound := keycodec.PrefixRange(eventUID)

	return t.store.ZLexCount(ctx, eventUserKey, minBound, maxBound)
}

// SessionUsers returns the user UIDs currently participating in the given
// session. Expired user participations are purged first.
func (t *Tracker) SessionUsers(ctx context.Context, sessionUID string) ([]string, error) {
	defer t.observe("session_users", time.Now())

	if !keycodec.Valid(sessionUID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUID, sessionUID)
	}

	if err := t.purgeUsers(ctx); err != nil {
		return nil, err
	}

	minBound, maxBound := keycodec.PrefixRange(sessionUID)
	codes, err := t.store.ZRangeByLex(ctx, sessionUserKey, minBound, maxBound)
	if err != nil {
		return nil, err
	}

	users := make([]string, 0, len(codes))
	for _, code := range codes {
		_, userUID := keycodec.ParseSessionUserCode(code)
		users = append(users, userUID)
	}

	return users, nil
}

// SessionUserCount returns the number of users currently participating in
// the given session, without materializing the membership.
func (t *Tracker) SessionUserCount(ctx context.Context, sessionUID string) (int64, error) {
	defer t.observe("session_user_count", time.Now())

	if !keycodec.Valid(sessionUID) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUID, sessionUID)
	}

	if err := t.purgeUsers(ctx); err != nil {
		return 0, err
	}

	minBound, maxBound := keycodec.PrefixRange(sessionUID)

	return t.store.ZLexCount(ctx, sessionUserKey, minBound, maxBound)
}

// AllUserCount reports, for every active event, the total number of distinct
// users in the event plus a per-session breakdown. Events with zero users
// still appear with an empty breakdown.
//
// Session and user indices are purged first, then the event-to-session
// association is recovered by scanning the event-session index and the
// cardinalities by scanning the event-user and session-user indices.
func (t *Tracker) AllUserCount(ctx context.Context) (map[string]types.EventUserCount, error) {
	defer t.observe("all_user_count", time.Now())

	if err := t.purgeEventSessions(ctx); err != nil {
		return nil, err
	}
	if err := t.purgeUsers(ctx); err != nil {
		return nil, err
	}

	eventUIDs, err := t.ActiveEvents(ctx)
	if err != nil {
		return nil, err
	}

	// session -> owning event
	sessionEvents := make(map[string]string)
	eventSessionCodes, err := t.store.ZRange(ctx, eventSessionKey)
	if err != nil {
		return nil, err
	}
	for _, code := range eventSessionCodes {
		eventUID, sessionUID := keycodec.ParseEventSessionCode(code)
		sessionEvents[sessionUID] = eventUID
	}

	// per-event distinct user counts
	eventUserCounts := make(map[string]int)
	eventUserCodes, err := t.store.ZRange(ctx, eventUserKey)
	if err != nil {
		return nil, err
	}
	for _, code := range eventUserCodes {
		eventUID, _ := keycodec.ParseEventUserCode(code)
		eventUserCounts[eventUID]++
	}

	// per-session distinct user counts
	sessionUserCounts := make(map[string]int)
	sessionUserCodes, err := t.store.ZRange(ctx, sessionUserKey)
	if err != nil {
		return nil, err
	}
	for _, code := range sessionUserCodes {
		sessionUID, _ := keycodec.ParseSessionUserCode(code)
		sessionUserCounts[sessionUID]++
	}

	// one UserCount per session, grouped by owning event
	sessionCounts := make(map[string]map[string]types.UserCount)
	for sessionUID, eventUID := range sessionEvents {
		if sessionCounts[eventUID] == nil {
			sessionCounts[eventUID] = make(map[string]types.UserCount)
		}
		sessionCounts[eventUID][sessionUID] = types.UserCount{Count: sessionUserCounts[sessionUID]}
	}

	counts := make(map[string]types.EventUserCount, len(eventUIDs))
	for _, eventUID := range eventUIDs {
		sessions := sessionCounts[eventUID]
		if sessions == nil {
			sessions = make(map[string]types.UserCount)
		}
		counts[eventUID] = types.EventUserCount{
			Count:    eventUserCounts[eventUID],
			Sessions: sessions,
		}
	}

	return counts, nil
}

// AllUserStatusUpdates reports the online and offline transitions recorded
// since the transition sets were last cleared, grouped by session UID.
//
// With clear=true the transition sets are read and deleted inside one
// watched transaction, so a heartbeat landing concurrently aborts the clear
// instead of being lost from a later report. When the transaction keeps
// getting discarded after the configured retries, the snapshot is returned
// and the sets stay intact for the next call.
func (t *Tracker) AllUserStatusUpdates(ctx context.Context, clear bool) (map[string]types.StatusUpdate, error) {
	defer t.observe("all_user_status_updates", time.Now())

	if err := t.purgeUsers(ctx); err != nil {
		return nil, err
	}

	var onlines, offlines []string

	if clear {
		var err error
		onlines, offlines, err = t.readAndClearTransitions(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		if onlines, err = t.store.SMembers(ctx, sessionUserOnlineKey); err != nil {
			return nil, err
		}
		if offlines, err = t.store.SMembers(ctx, sessionUserOfflineKey); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]types.StatusUpdate)
	for _, code := range onlines {
		sessionUID, userUID := keycodec.ParseSessionUserCode(code)
		update := updates[sessionUID]
		update.Onlines = append(update.Onlines, userUID)
		updates[sessionUID] = update
	}
	for _, code := range offlines {
		sessionUID, userUID := keycodec.ParseSessionUserCode(code)
		update := updates[sessionUID]
		update.Offlines = append(update.Offlines, userUID)
		updates[sessionUID] = update
	}

	return updates, nil
}

func (t *Tracker) readAndClearTransitions(ctx context.Context) (onlines, offlines []string, err error) {
	for attempt := 0; attempt <= t.cfg.PurgeRetries; attempt++ {
		err = t.store.Watch(ctx, func(tx types.Tx) error {
			var txErr error
			if onlines, txErr = tx.SMembers(ctx, sessionUserOnlineKey); txErr != nil {
				return txErr
			}
			if offlines, txErr = tx.SMembers(ctx, sessionUserOfflineKey); txErr != nil {
				return txErr
			}

			return tx.Exec(ctx, func(p types.Pipe) error {
				p.Del(sessionUserOnlineKey, sessionUserOfflineKey)

				return nil
			})
		}, sessionUserOnlineKey, sessionUserOfflineKey)

		if !errors.Is(err, types.ErrTxConflict) {
			return onlines, offlines, err
		}
	}

	// Clear abandoned under contention; the snapshot is still valid and the
	// sets remain for the next call.
	t.logger.Warn("status update clear skipped", "reason", "conflict", "retries", t.cfg.PurgeRetries)

	return onlines, offlines, nil
}

//
// Lazy purges
//

// purgeEvents removes events whose last heartbeat is older than EventTTL.
func (t *Tracker) purgeEvents(ctx context.Context) error {
	return t.purge(ctx, purgeIndexEvents, []string{eventListKey}, func(tx types.Tx, now time.Time) (int, error) {
		cutoff := cutoffScore(now, t.cfg.EventTTL)

		expired, err := tx.ZRangeByScore(ctx, eventListKey, 0, cutoff)
		if err != nil {
			return 0, err
		}

		return len(expired), tx.Exec(ctx, func(p types.Pipe) error {
			p.ZRemRangeByScore(eventListKey, 0, cutoff)

			return nil
		})
	})
}

// purgeEventSessions removes sessions whose last heartbeat is older than
// SessionTTL from both the session-time and the event-session indices.
func (t *Tracker) purgeEventSessions(ctx context.Context) error {
	keys := []string{eventSessionKey, eventSessionTimeKey}

	return t.purge(ctx, purgeIndexEventSessions, keys, func(tx types.Tx, now time.Time) (int, error) {
		cutoff := cutoffScore(now, t.cfg.SessionTTL)

		expired, err := tx.ZRangeByScore(ctx, eventSessionTimeKey, 0, cutoff)
		if err != nil {
			return 0, err
		}

		return len(expired), tx.Exec(ctx, func(p types.Pipe) error {
			p.ZRemRangeByScore(eventSessionTimeKey, 0, cutoff)
			if len(expired) > 0 {
				p.ZRem(eventSessionKey, expired...)
			}

			return nil
		})
	})
}

// purgeUsers removes user participations whose last heartbeat is older than
// UserTTL. Expired codes are decoded to derive the matching event-user and
// session-user members, and the purged session:user pairs are recorded as
// offline transitions.
func (t *Tracker) purgeUsers(ctx context.Context) error {
	keys := []string{eventUserKey, sessionUserKey, userSessionTimeKey}

	return t.purge(ctx, purgeIndexUsers, keys, func(tx types.Tx, now time.Time) (int, error) {
		cutoff := cutoffScore(now, t.cfg.UserTTL)

		expired, err := tx.ZRangeByScore(ctx, userSessionTimeKey, 0, cutoff)
		if err != nil {
			return 0, err
		}

		eventUserCodes := make([]string, 0, len(expired))
		sessionUserCodes := make([]string, 0, len(expired))
		seenEventUsers := make(map[string]struct{}, len(expired))
		for _, code := range expired {
			userUID, eventUID, sessionUID := keycodec.ParseUserSessionCode(code)

			eventUserCode := keycodec.EventUserCode(userUID, eventUID)
			if _, seen := seenEventUsers[eventUserCode]; !seen {
				seenEventUsers[eventUserCode] = struct{}{}
				eventUserCodes = append(eventUserCodes, eventUserCode)
			}

			sessionUserCodes = append(sessionUserCodes, keycodec.SessionUserCode(userUID, sessionUID))
		}

		return len(expired), tx.Exec(ctx, func(p types.Pipe) error {
			p.ZRemRangeByScore(userSessionTimeKey, 0, cutoff)
			if len(eventUserCodes) > 0 {
				p.ZRem(eventUserKey, eventUserCodes...)
			}
			if len(sessionUserCodes) > 0 {
				p.ZRem(sessionUserKey, sessionUserCodes...)
				p.SAdd(sessionUserOfflineKey, sessionUserCodes...)
			}

			return nil
		})
	})
}

// purge runs one watch-then-transact purge round with the configured retry
// policy. A round that keeps aborting is skipped silently; every read path
// re-triggers purging, so the entries get another chance on the next call.
func (t *Tracker) purge(ctx context.Context, index string, watched []string, round func(types.Tx, time.Time) (int, error)) error {
	now, err := t.store.ServerTime(ctx)
	if err != nil {
		return err
	}

	for attempt := 0; attempt <= t.cfg.PurgeRetries; attempt++ {
		var removed int

		err = t.store.Watch(ctx, func(tx types.Tx) error {
			var roundErr error
			removed, roundErr = round(tx, now)

			return roundErr
		}, watched...)

		if errors.Is(err, types.ErrTxConflict) {
			t.metrics.RecordPurgeConflict(index)
			continue
		}
		if err != nil {
			return err
		}

		t.metrics.RecordPurge(index, removed)
		if removed > 0 {
			t.logger.Debug("purged expired entries", "index", index, "removed", removed)
		}

		return nil
	}

	t.logger.Debug("purge skipped", "index", index, "reason", "conflict", "retries", t.cfg.PurgeRetries)

	return nil
}

func (t *Tracker) observe(operation string, start time.Time) {
	t.metrics.RecordQueryDuration(operation, time.Since(start).Seconds())
}

func validateUIDs(uids ...string) error {
	for _, uid := range uids {
		if !keycodec.Valid(uid) {
			return fmt.Errorf("%w: %q", ErrInvalidUID, uid)
		}
	}

	return nil
}

// timeScore converts the store's server time to an index score. Scores are
// whole seconds, matching the resolution of the store clock read.
func timeScore(t time.Time) float64 {
	return float64(t.Unix())
}

// cutoffScore is the highest score considered expired at the given time.
func cutoffScore(now time.Time, ttl time.Duration) float64 {
	return float64(now.Add(-ttl).Unix())
}
