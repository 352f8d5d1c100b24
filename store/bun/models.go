package bunstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// ── Definition model ──────────────────────────────────────────────

type definitionModel struct {
	bun.BaseModel `bun:"table:correlate_definitions"`

	ID            string    `bun:"id,notnull"`
	Key           string    `bun:"key,pk"`
	TenantID      string    `bun:"tenant_id,pk"`
	DeploymentID  string    `bun:"deployment_id,notnull"`
	Correlation   []byte    `bun:"correlation,type:jsonb"`
	PayloadFields []byte    `bun:"payload_fields,type:jsonb"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func toDefinitionModel(def *definition.Definition) (*definitionModel, error) {
	corr, err := json.Marshal(def.CorrelationParameters)
	if err != nil {
		return nil, fmt.Errorf("correlate/bun: marshal correlation parameters: %w", err)
	}
	payload, err := json.Marshal(def.PayloadFields)
	if err != nil {
		return nil, fmt.Errorf("correlate/bun: marshal payload fields: %w", err)
	}

	return &definitionModel{
		ID:            def.ID.String(),
		Key:           def.Key,
		TenantID:      def.TenantID,
		DeploymentID:  def.DeploymentID.String(),
		Correlation:   corr,
		PayloadFields: payload,
		CreatedAt:     def.CreatedAt,
		UpdatedAt:     def.UpdatedAt,
	}, nil
}

func fromDefinitionModel(m *definitionModel) (*definition.Definition, error) {
	parsedID, err := id.ParseDefinitionID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("correlate/bun: parse definition id %q: %w", m.ID, err)
	}

	def := &definition.Definition{
		Entity: correlate.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       parsedID,
		Key:      m.Key,
		TenantID: m.TenantID,
	}

	if m.DeploymentID != "" {
		if depID, depErr := id.ParseDeploymentID(m.DeploymentID); depErr == nil {
			def.DeploymentID = depID
		}
	}
	if len(m.Correlation) > 0 {
		if err := json.Unmarshal(m.Correlation, &def.CorrelationParameters); err != nil {
			return nil, fmt.Errorf("correlate/bun: unmarshal correlation parameters: %w", err)
		}
	}
	if len(m.PayloadFields) > 0 {
		if err := json.Unmarshal(m.PayloadFields, &def.PayloadFields); err != nil {
			return nil, fmt.Errorf("correlate/bun: unmarshal payload fields: %w", err)
		}
	}

	return def, nil
}

// ── Subscription model ────────────────────────────────────────────

type subscriptionModel struct {
	bun.BaseModel `bun:"table:correlate_subscriptions"`

	ID                string    `bun:"id,pk"`
	Kind              string    `bun:"kind,notnull"`
	EventKey          string    `bun:"event_key,notnull"`
	TenantID          string    `bun:"tenant_id,notnull,default:''"`
	Correlation       []byte    `bun:"correlation,type:jsonb"`
	OwnerInstanceID   string    `bun:"owner_instance_id"`
	CaseDefinitionKey string    `bun:"case_definition_key"`
	DeploymentID      string    `bun:"deployment_id"`
	Unique            bool      `bun:"is_unique,notnull,default:false"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func toSubscriptionModel(sub *subscription.Subscription) (*subscriptionModel, error) {
	corr, err := json.Marshal(sub.Correlation)
	if err != nil {
		return nil, fmt.Errorf("correlate/bun: marshal correlation: %w", err)
	}

	return &subscriptionModel{
		ID:                sub.ID.String(),
		Kind:              string(sub.Kind),
		EventKey:          sub.EventKey,
		TenantID:          sub.TenantID,
		Correlation:       corr,
		OwnerInstanceID:   sub.OwnerInstanceID.String(),
		CaseDefinitionKey: sub.CaseDefinitionKey,
		DeploymentID:      sub.DeploymentID.String(),
		Unique:            sub.Unique,
		CreatedAt:         sub.CreatedAt,
		UpdatedAt:         sub.UpdatedAt,
	}, nil
}

func fromSubscriptionModel(m *subscriptionModel) (*subscription.Subscription, error) {
	parsedID, err := id.ParseSubscriptionID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("correlate/bun: parse subscription id %q: %w", m.ID, err)
	}

	sub := &subscription.Subscription{
		Entity: correlate.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                parsedID,
		Kind:              subscription.Kind(m.Kind),
		EventKey:          m.EventKey,
		TenantID:          m.TenantID,
		CaseDefinitionKey: m.CaseDefinitionKey,
		Unique:            m.Unique,
	}

	if m.OwnerInstanceID != "" {
		if instID, instErr := id.ParseInstanceID(m.OwnerInstanceID); instErr == nil {
			sub.OwnerInstanceID = instID
		}
	}
	if m.DeploymentID != "" {
		if depID, depErr := id.ParseDeploymentID(m.DeploymentID); depErr == nil {
			sub.DeploymentID = depID
		}
	}
	if len(m.Correlation) > 0 {
		if err := json.Unmarshal(m.Correlation, &sub.Correlation); err != nil {
			return nil, fmt.Errorf("correlate/bun: unmarshal correlation: %w", err)
		}
	}

	return sub, nil
}

// ── Reservation model ─────────────────────────────────────────────

type reservationModel struct {
	bun.BaseModel `bun:"table:correlate_reservations"`

	Key       string    `bun:"key,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ── Drop log model ────────────────────────────────────────────────

type dropEntryModel struct {
	bun.BaseModel `bun:"table:correlate_drops"`

	ID         string     `bun:"id,pk"`
	ChannelKey string     `bun:"channel_key,notnull"`
	EventKey   string     `bun:"event_key"`
	TenantID   string     `bun:"tenant_id"`
	Payload    []byte     `bun:"payload,type:bytea"`
	Reason     string     `bun:"reason,notnull"`
	Error      string     `bun:"error"`
	DroppedAt  time.Time  `bun:"dropped_at,notnull"`
	ReplayedAt *time.Time `bun:"replayed_at"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}

func toDropModel(e *droplog.Entry) *dropEntryModel {
	return &dropEntryModel{
		ID:         e.ID.String(),
		ChannelKey: e.ChannelKey,
		EventKey:   e.EventKey,
		TenantID:   e.TenantID,
		Payload:    e.Payload,
		Reason:     string(e.Reason),
		Error:      e.Error,
		DroppedAt:  e.DroppedAt,
		ReplayedAt: e.ReplayedAt,
		CreatedAt:  e.CreatedAt,
	}
}

func fromDropModel(m *dropEntryModel) (*droplog.Entry, error) {
	parsedID, err := id.ParseDropID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("correlate/bun: parse drop id %q: %w", m.ID, err)
	}

	return &droplog.Entry{
		ID:         parsedID,
		ChannelKey: m.ChannelKey,
		EventKey:   m.EventKey,
		TenantID:   m.TenantID,
		Payload:    m.Payload,
		Reason:     correlate.DropReason(m.Reason),
		Error:      m.Error,
		DroppedAt:  m.DroppedAt,
		ReplayedAt: m.ReplayedAt,
		CreatedAt:  m.CreatedAt,
	}, nil
}
