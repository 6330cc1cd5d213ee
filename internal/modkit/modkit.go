// Package modkit provides module wiring and core deps
package modkit

// Module is the common surface for service modules wired by a command
// keep this tiny so modules stay decoupled
type Module interface {
	// Name returns the module name used in logs
	Name() string
	// Ports returns a module specific port set for cross wiring and inspection
	Ports() any
}
