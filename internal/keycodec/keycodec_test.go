package keycodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventSessionCode(t *testing.T) {
	code := EventSessionCode("e1", "s1")
	require.Equal(t, "e1:s1", code)

	eventUID, sessionUID := ParseEventSessionCode(code)
	require.Equal(t, "e1", eventUID)
	require.Equal(t, "s1", sessionUID)
}

func TestEventUserCode(t *testing.T) {
	// Note the argument order: user first, but the event leads the code so
	// that event-prefixed range queries work.
	code := EventUserCode("u1", "e1")
	require.Equal(t, "e1:u1", code)

	eventUID, userUID := ParseEventUserCode(code)
	require.Equal(t, "e1", eventUID)
	require.Equal(t, "u1", userUID)
}

func TestSessionUserCode(t *testing.T) {
	code := SessionUserCode("u1", "s1")
	require.Equal(t, "s1:u1", code)

	sessionUID, userUID := ParseSessionUserCode(code)
	require.Equal(t, "s1", sessionUID)
	require.Equal(t, "u1", userUID)
}

func TestUserSessionCode(t *testing.T) {
	code := UserSessionCode("u1", "e1", "s1")
	require.Equal(t, "u1:e1:s1", code)

	userUID, eventUID, sessionUID := ParseUserSessionCode(code)
	require.Equal(t, "u1", userUID)
	require.Equal(t, "e1", eventUID)
	require.Equal(t, "s1", sessionUID)
}

func TestParseTrustsFieldCount(t *testing.T) {
	// Decoding trusts the expected field count; missing fields come back empty.
	eventUID, sessionUID := ParseEventSessionCode("lonely")
	require.Equal(t, "lonely", eventUID)
	require.Empty(t, sessionUID)
}

func TestPrefixRange(t *testing.T) {
	minBound, maxBound := PrefixRange("e1")
	require.Equal(t, "e1:", minBound)
	require.Equal(t, "e1:\xff", maxBound)

	// The bounds must bracket exactly the members with the "e1" prefix.
	require.Less(t, minBound, "e1:anything")
	require.Greater(t, maxBound, "e1:zzzz")
	// A different event sharing "e1" as a string prefix falls outside.
	require.Less(t, "e10:x", minBound)
}

func TestValid(t *testing.T) {
	t.Run("accepts plain identifiers", func(t *testing.T) {
		require.True(t, Valid("e1"))
		require.True(t, Valid("user-42"))
		require.True(t, Valid("9f8c2d"))
	})

	t.Run("rejects empty and delimited identifiers", func(t *testing.T) {
		require.False(t, Valid(""))
		require.False(t, Valid("a:b"))
		require.False(t, Valid(":"))
	})
}
