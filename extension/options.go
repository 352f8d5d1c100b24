package extension

import (
	"log/slog"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/admission"
	"github.com/xraph/correlate/backoff"
	"github.com/xraph/correlate/engine"
	"github.com/xraph/correlate/ext"
	mw "github.com/xraph/correlate/middleware"
)

// ExtOption configures the Correlate Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend via a registry option.
func WithStore(s correlate.Storer) ExtOption {
	return func(e *Extension) {
		e.regOpts = append(e.regOpts, correlate.WithStore(s))
		e.hasStore = true
	}
}

// WithCaseEngine sets the case engine collaborator that receives
// instance creation and signal calls. When not set, the extension
// resolves one from the DI container during Register.
func WithCaseEngine(ce correlate.CaseEngine) ExtOption {
	return func(e *Extension) {
		e.regOpts = append(e.regOpts, correlate.WithCaseEngine(ce))
		e.hasCase = true
	}
}

// WithExtension registers a correlate extension (lifecycle hooks).
func WithExtension(x ext.Extension) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, engine.WithExtension(x))
	}
}

// WithMiddleware adds delivery middleware to the correlate engine.
func WithMiddleware(m mw.Middleware) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, engine.WithMiddleware(m))
	}
}

// WithAdmission configures per-channel admission control.
func WithAdmission(configs ...admission.Config) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, engine.WithAdmission(configs...))
	}
}

// WithReplayBackoff sets the backoff strategy for drop replay attempts.
func WithReplayBackoff(b backoff.Strategy) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, engine.WithReplayBackoff(b))
	}
}

// WithConfig sets the extension configuration directly.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) ExtOption {
	return func(e *Extension) {
		e.config.RequireConfig = require
	}
}

// WithLogger sets the structured logger for the correlate engine.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDatabase sets the name of the *bun.DB to resolve from the DI
// container. The extension builds a Postgres-backed store from the
// resolved database. Pass an empty string to use the default (unnamed)
// database.
func WithDatabase(name string) ExtOption {
	return func(e *Extension) {
		e.config.Database = name
		e.useDB = true
	}
}

// WithRedis sets the name of the redis client to resolve from the DI
// container. The extension builds a Redis-backed store from the
// resolved client. Pass an empty string to use the default (unnamed)
// client.
func WithRedis(name string) ExtOption {
	return func(e *Extension) {
		e.config.Redis = name
		e.useRedis = true
	}
}
