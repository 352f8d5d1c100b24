package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/channel"
	"github.com/xraph/correlate/event"
	"github.com/xraph/correlate/guard"
	"github.com/xraph/correlate/id"
	mw "github.com/xraph/correlate/middleware"
	"github.com/xraph/correlate/scope"
)

// OutcomeKind classifies one per-target dispatch outcome.
type OutcomeKind string

// Outcome kinds.
const (
	// OutcomeSignaled — a runtime subscription's owner instance was
	// signaled.
	OutcomeSignaled OutcomeKind = "signaled"
	// OutcomeCreated — a start trigger created a new instance.
	OutcomeCreated OutcomeKind = "created"
	// OutcomeSkippedUnique — a unique start trigger found an active
	// instance already holding the correlation key.
	OutcomeSkippedUnique OutcomeKind = "skipped_unique"
	// OutcomeFailed — the case-engine call for this target failed.
	// Other targets are unaffected.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome records the result of dispatching to one target.
type Outcome struct {
	Kind           OutcomeKind
	SubscriptionID id.SubscriptionID

	// InstanceID is the signaled instance (OutcomeSignaled) or the
	// created instance (OutcomeCreated).
	InstanceID id.InstanceID

	// CaseDefinitionKey is set for start-trigger outcomes.
	CaseDefinitionKey string

	// Err is set for OutcomeFailed.
	Err error
}

// Result aggregates everything one EventReceived call did. Per-target
// failures are carried here, never as the call error: completed effects
// of earlier targets are never rolled back when a later one fails.
type Result struct {
	ChannelKey string
	EventKey   string
	TenantID   string

	// Dropped and Reason are set when the event was dropped without
	// dispatch effect.
	Dropped bool
	Reason  correlate.DropReason

	Outcomes []Outcome
}

// Failed returns the subset of outcomes that failed.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// EventReceived dispatches one raw inbound event arriving on the named
// channel. It is the single entry point channel adapters call, and is
// safe for concurrent use.
//
// An unknown channel key and a malformed payload fail the call.
// Resolution misses (unresolvable event key, no matching definition,
// absent correlation field) drop the event without error: unrelated
// channels may legitimately carry events no local definition claims.
// Dropped events are captured in the drop log when capture is enabled.
//
// The returned Result is non-nil whenever the channel was found, error
// or not, so callers can always inspect the drop reason and per-target
// outcomes.
func (eng *Engine) EventReceived(ctx context.Context, channelKey string, raw []byte) (*Result, error) {
	ch, err := eng.channels.Lookup(channelKey)
	if err != nil {
		return nil, err
	}

	res := &Result{ChannelKey: channelKey}
	d := &mw.Delivery{ChannelKey: channelKey, Bytes: len(raw)}

	err = eng.chain(ctx, d, func(ctx context.Context) error {
		return eng.dispatch(ctx, ch, raw, d, res)
	})
	return res, err
}

// dispatch is the terminal handler the middleware chain wraps.
func (eng *Engine) dispatch(ctx context.Context, ch *channel.Channel, raw []byte, d *mw.Delivery, res *Result) error {
	doc, err := ch.Deserializer.Deserialize(raw)
	if err != nil {
		eng.drop(ctx, d, res, raw, correlate.DropDeserialization, err)
		return err
	}

	// Tenant resolution happens exactly once; the result is used
	// unchanged for definition fallback and downstream dispatch.
	tenantID := ch.ResolveTenant(doc)
	d.TenantID = tenantID
	res.TenantID = tenantID

	eventKey, err := ch.ResolveEventKey(doc)
	if err != nil {
		eng.drop(ctx, d, res, raw, correlate.DropEventKeyUnresolved, err)
		return nil
	}
	d.EventKey = eventKey
	res.EventKey = eventKey

	eng.extensions.EmitEventReceived(ctx, ch.Key, eventKey, tenantID)

	if eng.admission != nil {
		if !eng.admission.Acquire(ch.Key, tenantID) {
			eng.drop(ctx, d, res, raw, correlate.DropThrottled, correlate.ErrChannelThrottled)
			return fmt.Errorf("%w: channel %q", correlate.ErrChannelThrottled, ch.Key)
		}
		defer eng.admission.Release(ch.Key, tenantID)
	}

	def, err := eng.definitions.Resolve(ctx, eventKey, tenantID)
	if err != nil {
		if errors.Is(err, correlate.ErrDefinitionNotFound) {
			eng.drop(ctx, d, res, raw, correlate.DropDefinitionNotFound, err)
			return nil
		}
		return err
	}

	resolved, err := event.Extract(def, doc)
	if err != nil {
		// A declared correlation parameter is absent or holds a value of
		// the wrong type; either way the definition's contract cannot be
		// satisfied by this payload.
		eng.drop(ctx, d, res, raw, correlate.DropMissingField, err)
		return nil
	}
	resolved.DispatchTenantID = tenantID
	resolved.DefinitionTenantID = def.TenantID

	// Carry the dispatch tenant on the context so transactional
	// listeners inside the case engine observe it.
	ctx = scope.Restore(ctx, tenantID)

	if err := eng.fanOutRuntime(ctx, eventKey, tenantID, resolved, res); err != nil {
		return err
	}
	if err := eng.fanOutStart(ctx, eventKey, tenantID, resolved, res); err != nil {
		return err
	}

	d.Targets = len(res.Outcomes)
	return nil
}

// fanOutRuntime signals every matching runtime subscription. Each
// signal is independent: a failure for one target is recorded and the
// rest still receive theirs.
func (eng *Engine) fanOutRuntime(ctx context.Context, eventKey, tenantID string, resolved *event.Resolved, res *Result) error {
	matches, err := eng.subscriptions.FindRuntimeMatches(ctx, eventKey, tenantID, resolved.Correlation)
	if err != nil {
		return fmt.Errorf("correlate: find runtime matches: %w", err)
	}

	for _, sub := range matches {
		if err := eng.caseEngine.SignalInstance(ctx, sub.OwnerInstanceID, resolved.Payload); err != nil {
			res.Outcomes = append(res.Outcomes, Outcome{
				Kind:           OutcomeFailed,
				SubscriptionID: sub.ID,
				InstanceID:     sub.OwnerInstanceID,
				Err:            err,
			})
			eng.extensions.EmitSignalFailed(ctx, sub, err)
			continue
		}
		res.Outcomes = append(res.Outcomes, Outcome{
			Kind:           OutcomeSignaled,
			SubscriptionID: sub.ID,
			InstanceID:     sub.OwnerInstanceID,
		})
		eng.extensions.EmitInstanceSignaled(ctx, sub, sub.OwnerInstanceID)
	}
	return nil
}

// fanOutStart runs every start trigger for the event. Unique triggers
// pass through the instantiation guard first; an already-active
// instance skips creation silently.
func (eng *Engine) fanOutStart(ctx context.Context, eventKey, tenantID string, resolved *event.Resolved, res *Result) error {
	triggers, err := eng.subscriptions.FindStartTriggers(ctx, eventKey, tenantID)
	if err != nil {
		return fmt.Errorf("correlate: find start triggers: %w", err)
	}

	for _, trigger := range triggers {
		decision, err := eng.guard.TryReserve(ctx, trigger.CaseDefinitionKey, tenantID, resolved.Correlation, trigger.Unique)
		if err != nil {
			res.Outcomes = append(res.Outcomes, Outcome{
				Kind:              OutcomeFailed,
				SubscriptionID:    trigger.ID,
				CaseDefinitionKey: trigger.CaseDefinitionKey,
				Err:               err,
			})
			continue
		}
		if decision == guard.AlreadyExists {
			res.Outcomes = append(res.Outcomes, Outcome{
				Kind:              OutcomeSkippedUnique,
				SubscriptionID:    trigger.ID,
				CaseDefinitionKey: trigger.CaseDefinitionKey,
			})
			eng.extensions.EmitInstanceSkipped(ctx, trigger, tenantID)
			continue
		}

		instID, createErr := eng.caseEngine.CreateInstance(ctx, trigger.CaseDefinitionKey, tenantID, resolved.Payload)

		// Release the reservation once the create call has returned: the
		// instance is now either queryable as active or was never created,
		// so the querier alone answers uniqueness from here on.
		if trigger.Unique {
			if relErr := eng.guard.Release(ctx, trigger.CaseDefinitionKey, tenantID, resolved.Correlation); relErr != nil {
				eng.logger.Warn("guard release failed",
					slog.String("case_definition", trigger.CaseDefinitionKey),
					slog.String("tenant", tenantID),
					slog.String("error", relErr.Error()),
				)
			}
		}

		if createErr != nil {
			res.Outcomes = append(res.Outcomes, Outcome{
				Kind:              OutcomeFailed,
				SubscriptionID:    trigger.ID,
				CaseDefinitionKey: trigger.CaseDefinitionKey,
				Err:               createErr,
			})
			continue
		}
		res.Outcomes = append(res.Outcomes, Outcome{
			Kind:              OutcomeCreated,
			SubscriptionID:    trigger.ID,
			InstanceID:        instID,
			CaseDefinitionKey: trigger.CaseDefinitionKey,
		})
		eng.extensions.EmitInstanceCreated(ctx, trigger, instID, tenantID)
	}
	return nil
}

// drop records one dropped event: the result and delivery are marked,
// extensions are notified, and the payload is captured in the drop log
// when capture is enabled. Drops are expected operational outcomes, not
// errors.
func (eng *Engine) drop(ctx context.Context, d *mw.Delivery, res *Result, raw []byte, reason correlate.DropReason, cause error) {
	res.Dropped = true
	res.Reason = reason
	d.Dropped = true
	d.Reason = reason

	eng.extensions.EmitEventDropped(ctx, res.ChannelKey, reason, cause)

	if !eng.captureDrops {
		return
	}
	if err := eng.drops.Capture(ctx, res.ChannelKey, res.EventKey, res.TenantID, raw, reason, cause); err != nil {
		eng.logger.Warn("drop log capture failed",
			slog.String("channel", res.ChannelKey),
			slog.String("reason", string(reason)),
			slog.String("error", err.Error()),
		)
	}
}

// ReplayDrop re-dispatches a captured drop log entry through the full
// EventReceived pipeline, retrying per the configured replay policy. An
// entry that drops again counts as a failed attempt.
func (eng *Engine) ReplayDrop(ctx context.Context, dropID id.DropID) error {
	return eng.drops.Replay(ctx, dropID, func(ctx context.Context, channelKey string, payload []byte) error {
		res, err := eng.EventReceived(ctx, channelKey, payload)
		if err != nil {
			return err
		}
		if res.Dropped {
			return fmt.Errorf("correlate: replayed event dropped again: %s", res.Reason)
		}
		return nil
	})
}
