// Package scope carries the resolved dispatch tenant on
// context.Context for downstream collaborators.
//
// When the forge framework is available, scope is carried via
// forge.WithScope / forge.ScopeFrom, with the tenant mapped to the org
// identity. The engine attaches the dispatch tenant before every
// case-engine call so transactional listeners observe it.
package scope

import (
	"context"

	"github.com/xraph/forge"
)

// Capture extracts the tenant identifier from the context.
// Returns the empty string (NoTenant) if no scope is present.
func Capture(ctx context.Context) (tenantID string) {
	s, ok := forge.ScopeFrom(ctx)
	if !ok {
		return ""
	}
	return s.OrgID()
}

// Restore attaches the tenant to the context. If tenantID is empty
// (NoTenant), the context is returned unchanged (no-op).
func Restore(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		return ctx
	}
	return forge.WithScope(ctx, forge.NewOrgScope("", tenantID))
}
