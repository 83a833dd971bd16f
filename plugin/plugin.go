// Package plugin defines the plugin system for Steward.
// Plugins are notified of lifecycle events (decision made, unit moved,
// scope created, etc.) and can react — logging, metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Decision lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeAuthorize is called before an authorization decision is evaluated.
// The req parameter is *steward.AuthorizeRequest (passed as any to avoid
// import cycle).
type BeforeAuthorize interface {
	OnBeforeAuthorize(ctx context.Context, req any) error
}

// AfterAuthorize is called after an authorization decision completes.
// The req parameter is *steward.AuthorizeRequest; result is
// *steward.AuthorizeResult.
type AfterAuthorize interface {
	OnAfterAuthorize(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Hierarchy lifecycle hooks
// ──────────────────────────────────────────────────

// UnitCreated is called after an organizational unit is created.
type UnitCreated interface {
	OnUnitCreated(ctx context.Context, u *orgunit.Unit) error
}

// UnitMoved is called after a unit is reparented. newParentID is nil when
// the unit became a root.
type UnitMoved interface {
	OnUnitMoved(ctx context.Context, unitID id.OrgUnitID, newParentID *id.OrgUnitID) error
}

// UnitDeleted is called after a unit (and its subtree) is deleted.
type UnitDeleted interface {
	OnUnitDeleted(ctx context.Context, unitID id.OrgUnitID) error
}

// BlockConfigured is called after a unit's inheritance block configuration
// changes. cfg is nil when the block was cleared.
type BlockConfigured interface {
	OnBlockConfigured(ctx context.Context, unitID id.OrgUnitID, cfg *orgunit.BlockConfig) error
}

// ──────────────────────────────────────────────────
// Scope lifecycle hooks
// ──────────────────────────────────────────────────

// ScopeCreated is called after a scope assignment is created.
type ScopeCreated interface {
	OnScopeCreated(ctx context.Context, a *scope.Assignment) error
}

// ScopeUpdated is called after a scope assignment is updated.
type ScopeUpdated interface {
	OnScopeUpdated(ctx context.Context, a *scope.Assignment) error
}

// ScopeDeleted is called after a scope assignment is deleted.
type ScopeDeleted interface {
	OnScopeDeleted(ctx context.Context, scopeID id.ScopeID) error
}

// ──────────────────────────────────────────────────
// Employee lifecycle hooks
// ──────────────────────────────────────────────────

// EmployeeCreated is called after an employee record is created.
type EmployeeCreated interface {
	OnEmployeeCreated(ctx context.Context, e *employee.Employee) error
}

// RankAssigned is called after an employee's management level changes.
type RankAssigned interface {
	OnRankAssigned(ctx context.Context, e *employee.Employee, previousRank int) error
}
