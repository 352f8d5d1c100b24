// Package definition models deployed event definitions and the
// deployment-scoped index used to resolve an inbound event key and
// tenant to the definition that claims it.
package definition

import (
	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
)

// FieldType is the declared semantic type of a correlation parameter or
// payload field.
type FieldType string

// Supported field types.
const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
)

// Parameter declares one named, typed field of an event definition.
type Parameter struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Definition is a deployed declaration of an event: its key, tenant
// scope, and field schema. Identity is the (Key, TenantID) composite;
// two deployments may declare the same key under different tenants
// without collision. Definitions are immutable after deployment and
// removed only by deployment deletion.
type Definition struct {
	correlate.Entity

	ID           id.DefinitionID `json:"id"`
	Key          string          `json:"key"`
	TenantID     string          `json:"tenant_id,omitempty"`
	DeploymentID id.DeploymentID `json:"deployment_id"`

	// CorrelationParameters are matched against subscriptions; a
	// declared parameter absent from an inbound payload is fatal for
	// that event.
	CorrelationParameters []Parameter `json:"correlation_parameters,omitempty"`

	// PayloadFields become initial instance variables; absent fields
	// are tolerated and omitted.
	PayloadFields []Parameter `json:"payload_fields,omitempty"`
}
