package types

import "errors"

// Sentinel errors shared between the tracker and store adapters.
var (
	// ErrTxConflict is returned by Store.Watch when a watched key was
	// mutated before the transaction committed. The tracker treats it as
	// "nothing purged this round", not as a failure.
	ErrTxConflict = errors.New("optimistic transaction aborted by concurrent write")
)
