package correlate

import (
	"context"
	"log/slog"
)

// Option configures a Registry.
type Option func(*Registry) error

// Storer is the minimal store interface held by the Registry. It covers
// lifecycle operations only. The full composite interface (store.Store)
// is used in subsystem layers that don't create import cycles.
// Implementations satisfy store.Store which embeds all subsystem stores.
type Storer interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// extensionEmitter is an internal interface for extension lifecycle events.
type extensionEmitter interface {
	EmitShutdown(ctx context.Context)
}

// Registry is the central coordinator for event correlation and
// dispatch. It holds the configuration, logger, persistence backend,
// and case engine collaborator shared by all subsystems.
//
// Create one with New() and functional options, then use engine.Build()
// to wire the channel registry, indexes, guard, and dispatch pipeline
// on top of it.
type Registry struct {
	config     Config
	logger     *slog.Logger
	store      Storer
	caseEngine CaseEngine
	extensions extensionEmitter
}

// New creates a new Registry with the given options.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// Store returns the registry's store.
func (r *Registry) Store() Storer { return r.store }

// CaseEngine returns the case engine collaborator.
func (r *Registry) CaseEngine() CaseEngine { return r.caseEngine }

// Config returns a copy of the registry's configuration.
func (r *Registry) Config() Config { return r.config }

// SetExtensions sets the extension emitter (called by the engine layer).
func (r *Registry) SetExtensions(e extensionEmitter) { r.extensions = e }

// Close shuts the registry down: extensions are notified, then the
// store is closed.
func (r *Registry) Close(ctx context.Context) error {
	if r.extensions != nil {
		r.extensions.EmitShutdown(ctx)
	}
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// WithConfig replaces the registry configuration.
func WithConfig(c Config) Option {
	return func(r *Registry) error {
		r.config = c
		return nil
	}
}

// WithLogger sets the structured logger for the registry.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) error {
		r.logger = l
		return nil
	}
}

// WithStore sets the persistence backend for the registry.
// The store must implement Storer at minimum; typically it will be a
// store.Store which embeds all subsystem store interfaces.
func WithStore(s Storer) Option {
	return func(r *Registry) error {
		r.store = s
		return nil
	}
}

// WithCaseEngine sets the case engine collaborator that receives
// instance creation and signal calls.
func WithCaseEngine(ce CaseEngine) Option {
	return func(r *Registry) error {
		r.caseEngine = ce
		return nil
	}
}
