// Package novacast provides shared infrastructure for Novacast services:
// the permission token used to assert a user's granted permissions between
// services, and, in the clienttracker subpackage, presence tracking for
// heartbeating client fleets.
package novacast
