// Package correlate is a tenant-aware event correlation and dispatch
// engine. It ingests raw inbound events from named channels, resolves
// which deployed event definition and tenant they belong to, extracts
// declared correlation and payload data, and routes the result to
// running case instances waiting on the event or to start triggers that
// spawn new instances, with optional unique-instance semantics per
// tenant and correlation key.
//
// Correlate is a library, not a service. Channel adapters push raw
// payloads into engine.EventReceived; the case/process engine that owns
// instance execution is an external collaborator behind the CaseEngine
// interface.
//
// # Quick Start
//
//	reg, err := correlate.New(
//	    correlate.WithStore(memory.New()),
//	    correlate.WithCaseEngine(myCaseEngine),
//	)
//	eng, err := engine.Build(reg)
//
// # Architecture
//
// Correlate follows a composable store pattern where each subsystem
// (definition, subscription, guard reservation, drop log) defines its
// own store interface. A single backend implements all of them.
//
// Entity IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package correlate
