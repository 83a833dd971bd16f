package steward

import (
	"context"

	"github.com/xraph/forge"
)

type tenantScope struct {
	appID    string
	tenantID string
}

// scopeFromContext extracts tenant scope from forge.Scope or standalone
// context. Falls back to explicit tenant if Forge scope is not set
// (standalone mode).
func scopeFromContext(ctx context.Context) tenantScope {
	s, ok := forge.ScopeFrom(ctx)
	if ok {
		return tenantScope{
			appID:    s.AppID(),
			tenantID: s.OrgID(),
		}
	}
	return tenantScope{
		appID:    appIDFromContext(ctx),
		tenantID: tenantIDFromContext(ctx),
	}
}

// TenantFromContext returns the app and tenant IDs the engine would use for
// the given context. The API layer uses it to stamp tenant fields on
// entities before handing them to the engine.
func TenantFromContext(ctx context.Context) (appID, tenantID string) {
	sc := scopeFromContext(ctx)
	return sc.appID, sc.tenantID
}
