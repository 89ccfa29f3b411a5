package testing

import "github.com/google/uuid"

// RandomUID returns a collision-free identifier with the given prefix,
// suitable as an event, session or user UID in test fixtures. The prefix
// must not contain ':'.
func RandomUID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
