package scope

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for scope assignments.
type Store interface {
	// CreateScope persists a new assignment.
	CreateScope(ctx context.Context, a *Assignment) error

	// GetScope retrieves an assignment by ID.
	GetScope(ctx context.Context, scopeID id.ScopeID) (*Assignment, error)

	// UpdateScope updates an existing assignment.
	UpdateScope(ctx context.Context, a *Assignment) error

	// DeleteScope removes an assignment.
	DeleteScope(ctx context.Context, scopeID id.ScopeID) error

	// ListScopes returns assignments matching the filter.
	ListScopes(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// CountScopes returns the number of assignments matching the filter.
	CountScopes(ctx context.Context, filter *ListFilter) (int64, error)

	// ScopesCovering returns every assignment of the user that covers the
	// unit: either bound to the unit directly, or bound to a proper
	// ancestor with IncludeDescendants set.
	ScopesCovering(ctx context.Context, tenantID, userID string, unitID id.OrgUnitID) ([]*Assignment, error)

	// DeleteScopesByUnit removes all assignments bound to a unit.
	DeleteScopesByUnit(ctx context.Context, unitID id.OrgUnitID) error

	// DeleteScopesByTenant removes all assignments for a tenant.
	DeleteScopesByTenant(ctx context.Context, tenantID string) error
}
