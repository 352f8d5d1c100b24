// Package audithook bridges correlate lifecycle events to an audit
// trail backend.
//
// The extension implements the ext lifecycle hooks and converts each
// into a structured audit event delivered through a [Recorder]. The
// Recorder interface is defined locally so this package carries no
// dependency on any particular audit backend; callers inject their
// own at wiring time, typically via [RecorderFunc].
//
//	eng, err := engine.Build(reg,
//	    engine.WithExtension(audithook.New(recorder)),
//	)
package audithook
