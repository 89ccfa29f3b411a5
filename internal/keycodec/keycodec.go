// Package keycodec encodes compound tracker relationships as delimited
// strings suitable for sorted-set members and lexicographic range bounds.
//
// All codes join their identifiers with a single ':' delimiter, so members
// that share a prefix sort contiguously. Decoding is an order-dependent
// split that trusts the expected field count; no escaping is performed.
// Identifiers containing the delimiter must be rejected before encoding
// (the tracker validates this at its entry points).
package keycodec

import "strings"

// Delimiter separates identifiers within a compound code.
const Delimiter = ":"

// rangeMax is the highest single byte, used as the upper bound of a
// prefix range. Every member with the given prefix sorts below it.
const rangeMax = "\xff"

// EventSessionCode encodes an (event, session) pair as "event:session".
func EventSessionCode(eventUID, sessionUID string) string {
	return eventUID + Delimiter + sessionUID
}

// ParseEventSessionCode decodes a code produced by EventSessionCode.
func ParseEventSessionCode(code string) (eventUID, sessionUID string) {
	parts := strings.SplitN(code, Delimiter, 2)
	return parts[0], rest(parts, 1)
}

// EventUserCode encodes a user's membership in an event as "event:user".
func EventUserCode(userUID, eventUID string) string {
	return eventUID + Delimiter + userUID
}

// ParseEventUserCode decodes a code produced by EventUserCode.
func ParseEventUserCode(code string) (eventUID, userUID string) {
	parts := strings.SplitN(code, Delimiter, 2)
	return parts[0], rest(parts, 1)
}

// SessionUserCode encodes a user's membership in a session as "session:user".
func SessionUserCode(userUID, sessionUID string) string {
	return sessionUID + Delimiter + userUID
}

// ParseSessionUserCode decodes a code produced by SessionUserCode.
func ParseSessionUserCode(code string) (sessionUID, userUID string) {
	parts := strings.SplitN(code, Delimiter, 2)
	return parts[0], rest(parts, 1)
}

// UserSessionCode encodes a user's heartbeat target as "user:event:session".
func UserSessionCode(userUID, eventUID, sessionUID string) string {
	return userUID + Delimiter + eventUID + Delimiter + sessionUID
}

// ParseUserSessionCode decodes a code produced by UserSessionCode.
func ParseUserSessionCode(code string) (userUID, eventUID, sessionUID string) {
	parts := strings.SplitN(code, Delimiter, 3)
	return parts[0], rest(parts, 1), rest(parts, 2)
}

// PrefixRange returns the inclusive lexicographic bounds that select every
// code whose first identifier equals prefix. The lower bound is the prefix
// followed by the delimiter; the upper bound appends the maximum byte so
// that all longer members with the same prefix are included.
func PrefixRange(prefix string) (minBound, maxBound string) {
	return prefix + Delimiter, prefix + Delimiter + rangeMax
}

// Valid reports whether uid can be safely embedded in a compound code.
// Empty identifiers and identifiers containing the delimiter are rejected.
func Valid(uid string) bool {
	return uid != "" && !strings.Contains(uid, Delimiter)
}

func rest(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}

	return ""
}
