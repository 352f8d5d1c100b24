package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// Deployment bundles the event definitions and start triggers of one
// deployment unit. The deployment repository builds one per deploy and
// hands it to Deploy; DeleteDeployment removes everything it indexed.
type Deployment struct {
	ID       id.DeploymentID
	TenantID string

	// Definitions are indexed under the deployment's tenant unless a
	// definition names its own.
	Definitions []*definition.Definition

	// Triggers are registered as start triggers bound to this
	// deployment. Kind and DeploymentID are stamped on registration.
	Triggers []*subscription.Subscription
}

// Deploy indexes the deployment's event definitions and registers its
// start triggers. An ID is assigned if unset. On any failure the
// already-applied parts of the deployment are rolled back so a deploy
// is all-or-nothing from the caller's view.
func (eng *Engine) Deploy(ctx context.Context, dep *Deployment) error {
	if dep == nil {
		return fmt.Errorf("correlate: deploy: nil deployment")
	}
	if dep.ID.IsNil() {
		dep.ID = id.NewDeploymentID()
	}

	for _, def := range dep.Definitions {
		def.DeploymentID = dep.ID
		if def.TenantID == "" {
			def.TenantID = dep.TenantID
		}
		if err := eng.definitions.Add(ctx, def); err != nil {
			eng.rollbackDeploy(ctx, dep.ID)
			return fmt.Errorf("correlate: deploy definition %q: %w", def.Key, err)
		}
	}

	for _, trigger := range dep.Triggers {
		trigger.Kind = subscription.KindStart
		trigger.DeploymentID = dep.ID
		if trigger.TenantID == "" {
			trigger.TenantID = dep.TenantID
		}
		if err := eng.subscriptions.Add(ctx, trigger); err != nil {
			eng.rollbackDeploy(ctx, dep.ID)
			return fmt.Errorf("correlate: deploy start trigger %q: %w", trigger.EventKey, err)
		}
	}

	return nil
}

// rollbackDeploy undoes a partially-applied deploy. Best effort: a
// failing rollback leaves the original deploy error as the one the
// caller sees.
func (eng *Engine) rollbackDeploy(ctx context.Context, depID id.DeploymentID) {
	if _, err := eng.definitions.RemoveDeployment(ctx, depID); err != nil {
		eng.logger.Warn("deploy rollback: unindex definitions failed",
			slog.String("deployment", depID.String()),
			slog.String("error", err.Error()),
		)
	}
	if _, err := eng.subscriptions.RemoveDeployment(ctx, depID); err != nil {
		eng.logger.Warn("deploy rollback: remove start triggers failed",
			slog.String("deployment", depID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// DeleteDeployment unindexes every event definition and removes every
// start trigger of the deployment. Runtime subscriptions are untouched;
// they belong to instances, not deployments. Returns how many
// definitions and triggers were removed.
func (eng *Engine) DeleteDeployment(ctx context.Context, depID id.DeploymentID) (defs, triggers int64, err error) {
	defs, err = eng.definitions.RemoveDeployment(ctx, depID)
	if err != nil {
		return 0, 0, fmt.Errorf("correlate: delete deployment: %w", err)
	}
	triggers, err = eng.subscriptions.RemoveDeployment(ctx, depID)
	if err != nil {
		return defs, 0, fmt.Errorf("correlate: delete deployment: %w", err)
	}
	return defs, triggers, nil
}

// Subscribe registers a runtime subscription for a running instance.
// The case engine calls this when an instance reaches a wait state on
// an event. Kind is stamped; the subscription must name its owner.
func (eng *Engine) Subscribe(ctx context.Context, sub *subscription.Subscription) error {
	sub.Kind = subscription.KindRuntime
	return eng.subscriptions.Add(ctx, sub)
}

// Unsubscribe removes one subscription by ID.
func (eng *Engine) Unsubscribe(ctx context.Context, subID id.SubscriptionID) error {
	return eng.subscriptions.Remove(ctx, subID)
}

// InstanceCompleted removes every runtime subscription owned by the
// instance. The case engine calls this when an instance ends. Returns
// how many subscriptions were removed.
func (eng *Engine) InstanceCompleted(ctx context.Context, instanceID id.InstanceID) (int64, error) {
	return eng.subscriptions.RemoveInstance(ctx, instanceID)
}
