// Package relayhook bridges correlate lifecycle events to Relay for
// webhook delivery.
//
// The extension implements the ext lifecycle hooks and emits a typed
// Relay event for each: operators subscribe downstream systems to
// dropped events, created instances, or signal failures without
// touching the dispatch path.
//
//	eng, err := engine.Build(reg,
//	    engine.WithExtension(relayhook.New(r)),
//	)
package relayhook
