package types

// UserCount is the number of distinct users currently active in one session.
type UserCount struct {
	// Count is the number of distinct users.
	Count int
}

// EventUserCount aggregates the distinct user counts for one event: the
// event-wide total plus a per-session breakdown.
//
// Values are immutable snapshots computed after a lazy purge; they reflect
// the state of the store at query time.
type EventUserCount struct {
	// Count is the number of distinct users across the whole event.
	Count int

	// Sessions maps each of the event's session UIDs to its user count.
	Sessions map[string]UserCount
}

// Session returns the user count for the given session UID. The second
// return value is false when the session is not part of the event.
func (c EventUserCount) Session(sessionUID string) (UserCount, bool) {
	count, ok := c.Sessions[sessionUID]
	return count, ok
}

// SessionUIDs returns the UIDs of every session belonging to the event.
// Order is unspecified.
func (c EventUserCount) SessionUIDs() []string {
	uids := make([]string, 0, len(c.Sessions))
	for uid := range c.Sessions {
		uids = append(uids, uid)
	}

	return uids
}

// StatusUpdate lists the users of one session that transitioned online or
// offline since the transition sets were last cleared.
type StatusUpdate struct {
	// Onlines are user UIDs whose first heartbeat arrived for the session.
	Onlines []string

	// Offlines are user UIDs whose participation expired from the session.
	Offlines []string
}
