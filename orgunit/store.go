package orgunit

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for organizational units and their
// closure relation. Hierarchy queries take an explicit tenant ID: the closure
// table is a shared multi-tenant resource and no tenant-spanning query is
// ever legitimate.
type Store interface {
	// CreateUnit persists a new unit and inserts its closure rows
	// (the self row plus one row per ancestor of the parent chain).
	CreateUnit(ctx context.Context, u *Unit) error

	// GetUnit retrieves a unit by ID.
	GetUnit(ctx context.Context, unitID id.OrgUnitID) (*Unit, error)

	// UpdateUnit updates a unit's name, type, and metadata. Reparenting
	// goes through MoveUnit so closure rows stay consistent.
	UpdateUnit(ctx context.Context, u *Unit) error

	// DeleteUnit removes a unit and its entire subtree, cascading to
	// closure rows, scope assignments, and employees of the deleted units.
	DeleteUnit(ctx context.Context, unitID id.OrgUnitID) error

	// ListUnits returns units matching the filter.
	ListUnits(ctx context.Context, filter *ListFilter) ([]*Unit, error)

	// CountUnits returns the number of units matching the filter.
	CountUnits(ctx context.Context, filter *ListFilter) (int64, error)

	// SetInheritanceBlock replaces the unit's inheritance block
	// configuration. A nil config clears it.
	SetInheritanceBlock(ctx context.Context, unitID id.OrgUnitID, cfg *BlockConfig) error

	// Ancestors returns the unit's proper ancestors (depth > 0) ordered by
	// increasing depth: direct parent first, root last.
	Ancestors(ctx context.Context, tenantID string, unitID id.OrgUnitID) ([]ClosureEntry, error)

	// Descendants returns the unit's proper descendants (depth > 0).
	Descendants(ctx context.Context, tenantID string, unitID id.OrgUnitID) ([]ClosureEntry, error)

	// IsDescendant reports whether descendantID lies strictly below
	// ancestorID in the hierarchy.
	IsDescendant(ctx context.Context, tenantID string, ancestorID, descendantID id.OrgUnitID) (bool, error)

	// MoveUnit reparents a unit (nil newParentID makes it a root) and
	// rewrites closure rows for the whole moved subtree in one
	// transaction. Returns ErrCycleDetected, before any mutation, if the
	// new parent is the unit itself or one of its descendants.
	MoveUnit(ctx context.Context, tenantID string, unitID id.OrgUnitID, newParentID *id.OrgUnitID) error

	// DeleteUnitsByTenant removes all units and closure rows for a tenant.
	DeleteUnitsByTenant(ctx context.Context, tenantID string) error
}
