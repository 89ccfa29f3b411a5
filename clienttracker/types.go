package clienttracker

import "github.com/lscspirit/novacast-common/clienttracker/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the tracker's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual declarations. Internal packages and
// store adapters depend on `types` without importing this root package,
// while users get the convenient `clienttracker.Store`, `clienttracker.UserCount`, etc.
type (
	UserCount      = types.UserCount
	EventUserCount = types.EventUserCount
	StatusUpdate   = types.StatusUpdate
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Store            = types.Store
	Tx               = types.Tx
	Pipe             = types.Pipe
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)
