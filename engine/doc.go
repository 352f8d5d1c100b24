// Package engine wires all correlate subsystems together: the channel
// registry, definition and subscription indexes, instantiation guard,
// drop log, admission manager, extension registry, and middleware
// chain. EventReceived is the single dispatch entry point channel
// adapters call.
//
// This package exists to break the import cycle: the root correlate
// package defines Entity and the CaseEngine contract (imported by
// definition, subscription, etc.) and so cannot import those packages
// back. The engine package sits above all subsystem packages and below
// the application layer.
package engine
