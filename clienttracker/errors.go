package clienttracker

import (
	"errors"

	"github.com/lscspirit/novacast-common/clienttracker/types"
)

// Sentinel errors returned by the Tracker.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStoreRequired is returned when the store handle is nil.
	ErrStoreRequired = errors.New("store is required")

	// ErrInvalidUID is returned when an identifier is empty or contains the
	// ':' code delimiter.
	ErrInvalidUID = errors.New("invalid identifier")
)

// ErrTxConflict is re-exported from the types package for convenience.
// Store adapters return it from Watch when an optimistic transaction is
// aborted; the Tracker never surfaces it from its public operations.
var ErrTxConflict = types.ErrTxConflict
