// Package types defines the public interfaces and value types shared by the
// client tracker and its store adapters.
//
// Keeping these definitions in a dedicated package lets internal packages
// and store adapters depend on them without importing the clienttracker root
// package, while the root package re-exports them for convenience.
package types
