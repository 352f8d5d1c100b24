package engine

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/admission"
	"github.com/xraph/correlate/backoff"
	"github.com/xraph/correlate/channel"
	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/ext"
	"github.com/xraph/correlate/guard"
	mw "github.com/xraph/correlate/middleware"
	"github.com/xraph/correlate/observability"
	"github.com/xraph/correlate/subscription"
)

// Engine is the assembled dispatch pipeline. Use Build() to create one
// from a Registry. The Engine itself is stateless between EventReceived
// calls; all dispatch state lives in the indexes and the case engine.
type Engine struct {
	reg        *correlate.Registry
	logger     *slog.Logger
	caseEngine correlate.CaseEngine

	channels      *channel.Registry
	definitions   *definition.Index
	subscriptions *subscription.Index
	guard         *guard.Guard
	drops         *droplog.Service

	extensions *ext.Registry
	chain      mw.Middleware

	captureDrops bool

	// Build-time option state.
	mws              []mw.Middleware
	admissionConfigs []admission.Config
	admission        *admission.Manager
	replayBo         backoff.Strategy

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) {
		eng.extensions.Register(e)
	}
}

// WithMiddleware adds middleware to the engine's chain.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) {
		eng.mws = append(eng.mws, m)
	}
}

// WithAdmission registers channel-level rate limiting and concurrency
// configurations. Channels not listed have no limits. Without this
// option admission control is disabled entirely.
func WithAdmission(configs ...admission.Config) Option {
	return func(eng *Engine) {
		eng.admissionConfigs = append(eng.admissionConfigs, configs...)
	}
}

// WithReplayBackoff sets the backoff strategy between drop-log replay
// attempts. If not set, backoff.DefaultStrategy() (exponential with
// jitter) is used.
func WithReplayBackoff(b backoff.Strategy) Option {
	return func(eng *Engine) {
		eng.replayBo = b
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// When set, the tracing middleware uses this provider instead of the
// global one. If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) {
		eng.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// When set, the metrics middleware uses this provider instead of the
// global one. If not set, the global otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) {
		eng.meterProvider = mp
	}
}

// Build creates an Engine from an existing Registry. The Registry's
// store must implement definition.Store, subscription.Store,
// guard.ReservationStore, and droplog.Store; the composite store.Store
// interface covers all four.
func Build(reg *correlate.Registry, opts ...Option) (*Engine, error) {
	logger := reg.Logger()
	store := reg.Store()

	if store == nil {
		return nil, correlate.ErrNoStore
	}
	if reg.CaseEngine() == nil {
		return nil, correlate.ErrNoEngine
	}

	// Type-assert the store to get the definition.Store interface.
	defs, ok := store.(definition.Store)
	if !ok {
		return nil, fmt.Errorf("correlate: store does not implement definition.Store")
	}

	// Type-assert the store to get the subscription.Store interface.
	subs, ok := store.(subscription.Store)
	if !ok {
		return nil, fmt.Errorf("correlate: store does not implement subscription.Store")
	}

	// Type-assert the store to get the guard.ReservationStore interface.
	resv, ok := store.(guard.ReservationStore)
	if !ok {
		return nil, fmt.Errorf("correlate: store does not implement guard.ReservationStore")
	}

	// Type-assert the store to get the droplog.Store interface.
	dls, ok := store.(droplog.Store)
	if !ok {
		return nil, fmt.Errorf("correlate: store does not implement droplog.Store")
	}

	config := reg.Config()
	eng := &Engine{
		reg:           reg,
		logger:        logger,
		caseEngine:    reg.CaseEngine(),
		channels:      channel.NewRegistry(),
		definitions:   definition.NewIndex(defs),
		subscriptions: subscription.NewIndex(subs),
		extensions:    ext.NewRegistry(logger),
		captureDrops:  config.CaptureDrops,
	}
	eng.guard = guard.New(resv, eng.caseEngine)

	for _, opt := range opts {
		opt(eng)
	}

	// Default replay backoff if none provided.
	if eng.replayBo == nil {
		eng.replayBo = backoff.DefaultStrategy()
	}

	// Create the drop log service with the configured replay policy.
	eng.drops = droplog.NewService(dls)
	eng.drops.SetReplayPolicy(config.ReplayAttempts, eng.replayBo)

	// Create the admission manager if channel configs were provided.
	if len(eng.admissionConfigs) > 0 {
		eng.admission = admission.NewManager(eng.admissionConfigs...)
	}

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracer := eng.tracerProvider.Tracer("github.com/xraph/correlate")
		tracingMw = mw.TracingWithTracer(tracer)
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		meter := eng.meterProvider.Meter("github.com/xraph/correlate")
		metricsMw = mw.MetricsWithMeter(meter)
	} else {
		metricsMw = mw.Metrics()
	}

	// Register the observability metrics extension.
	eng.extensions.Register(observability.NewMetricsExtension())

	// Build default middleware stack: recover → tracing → metrics → logging.
	defaultMws := []mw.Middleware{
		mw.Recover(logger),
		tracingMw,
		metricsMw,
		mw.Logging(logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)
	eng.chain = mw.Chain(allMws...)

	// Wire back into the Registry so Close notifies extensions.
	reg.SetExtensions(eng.extensions)

	return eng, nil
}

// ─────────────────────────────────────────────────────────────────────
// Accessors
// ─────────────────────────────────────────────────────────────────────

// Channels returns the channel registry for registering and removing
// inbound channels.
func (eng *Engine) Channels() *channel.Registry { return eng.channels }

// Definitions returns the event definition index.
func (eng *Engine) Definitions() *definition.Index { return eng.definitions }

// Subscriptions returns the subscription index.
func (eng *Engine) Subscriptions() *subscription.Index { return eng.subscriptions }

// Guard returns the instantiation guard.
func (eng *Engine) Guard() *guard.Guard { return eng.guard }

// DropLog returns the drop log service.
func (eng *Engine) DropLog() *droplog.Service { return eng.drops }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Admission returns the admission manager, or nil when admission
// control is disabled.
func (eng *Engine) Admission() *admission.Manager { return eng.admission }

// Logger returns the engine's logger.
func (eng *Engine) Logger() *slog.Logger { return eng.logger }
