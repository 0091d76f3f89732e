// Package command contains write operations (CQRS - Commands).
package command

// IDGenerator mints identifiers for new records. Implemented by the
// uuid-backed generator in the service layer; tests use sequential fakes.
type IDGenerator interface {
	NewID() string
}
