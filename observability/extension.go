package observability

import (
	"context"

	gu "github.com/xraph/go-utils/metrics"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/ext"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// Compile-time interface checks.
var (
	_ ext.Extension        = (*MetricsExtension)(nil)
	_ ext.EventReceived    = (*MetricsExtension)(nil)
	_ ext.EventDropped     = (*MetricsExtension)(nil)
	_ ext.InstanceSignaled = (*MetricsExtension)(nil)
	_ ext.SignalFailed     = (*MetricsExtension)(nil)
	_ ext.InstanceCreated  = (*MetricsExtension)(nil)
	_ ext.InstanceSkipped  = (*MetricsExtension)(nil)
)

// MetricsExtension records dispatch lifecycle metrics via go-utils
// MetricFactory. Register it as an extension to automatically track
// received events, drops, delivered and failed signals, created
// instances, and unique-instance skips.
type MetricsExtension struct {
	EventsReceived   gu.Counter
	EventsDropped    gu.Counter
	SignalsDelivered gu.Counter
	SignalsFailed    gu.Counter
	InstancesCreated gu.Counter
	UniqueSkips      gu.Counter
}

// NewMetricsExtension creates a MetricsExtension using a default metrics collector.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithFactory(gu.NewMetricsCollector("correlate/observability"))
}

// NewMetricsExtensionWithFactory creates a MetricsExtension with the provided MetricFactory.
// Use fapp.Metrics() in forge extensions, or gu.NewMetricsCollector for testing.
func NewMetricsExtensionWithFactory(factory gu.MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		EventsReceived:   factory.Counter("correlate.events.received"),
		EventsDropped:    factory.Counter("correlate.events.dropped"),
		SignalsDelivered: factory.Counter("correlate.signals.delivered"),
		SignalsFailed:    factory.Counter("correlate.signals.failed"),
		InstancesCreated: factory.Counter("correlate.instances.created"),
		UniqueSkips:      factory.Counter("correlate.instances.unique_skips"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnEventReceived implements ext.EventReceived.
func (m *MetricsExtension) OnEventReceived(_ context.Context, _, _, _ string) error {
	m.EventsReceived.Inc()
	return nil
}

// OnEventDropped implements ext.EventDropped.
func (m *MetricsExtension) OnEventDropped(_ context.Context, _ string, _ correlate.DropReason, _ error) error {
	m.EventsDropped.Inc()
	return nil
}

// OnInstanceSignaled implements ext.InstanceSignaled.
func (m *MetricsExtension) OnInstanceSignaled(_ context.Context, _ *subscription.Subscription, _ id.InstanceID) error {
	m.SignalsDelivered.Inc()
	return nil
}

// OnSignalFailed implements ext.SignalFailed.
func (m *MetricsExtension) OnSignalFailed(_ context.Context, _ *subscription.Subscription, _ error) error {
	m.SignalsFailed.Inc()
	return nil
}

// OnInstanceCreated implements ext.InstanceCreated.
func (m *MetricsExtension) OnInstanceCreated(_ context.Context, _ *subscription.Subscription, _ id.InstanceID, _ string) error {
	m.InstancesCreated.Inc()
	return nil
}

// OnInstanceSkipped implements ext.InstanceSkipped.
func (m *MetricsExtension) OnInstanceSkipped(_ context.Context, _ *subscription.Subscription, _ string) error {
	m.UniqueSkips.Inc()
	return nil
}
