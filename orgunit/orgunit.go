// Package orgunit defines the organizational unit entity, its closure
// relation, and the store interface for hierarchy queries.
//
// Units form a forest per tenant. Every ancestor→descendant pair, including
// the depth-0 self pair, is materialized as a ClosureEntry so that subtree
// and ancestor-chain queries never recurse over parent pointers.
package orgunit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/steward/id"
)

var (
	// ErrNotFound is returned when an organizational unit cannot be found.
	ErrNotFound = errors.New("orgunit: unit not found")

	// ErrCycleDetected is returned when a move would make a unit its own
	// ancestor. The hierarchy is never mutated in that case.
	ErrCycleDetected = errors.New("orgunit: move would create a cycle")

	// ErrInvalidBlock is returned when an inheritance block configuration
	// carries a malformed permission pattern.
	ErrInvalidBlock = errors.New("orgunit: invalid inheritance block")
)

// Unit represents a node in a tenant's organizational hierarchy
// (holding, branch, division, team — the type is free-form).
type Unit struct {
	ID       id.OrgUnitID   `json:"id" db:"id"`
	TenantID string         `json:"tenant_id" db:"tenant_id"`
	AppID    string         `json:"app_id" db:"app_id"`
	ParentID *id.OrgUnitID  `json:"parent_id,omitempty" db:"parent_id"`
	Name     string         `json:"name" db:"name"`
	Type     string         `json:"type,omitempty" db:"type"`
	Block    *BlockConfig   `json:"inheritance_blocks,omitempty" db:"inheritance_blocks"`
	Metadata map[string]any `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the unit has no parent.
func (u *Unit) IsRoot() bool { return u.ParentID == nil }

// BlockConfig declares which permissions must not be satisfied through an
// ancestor's descendant-including scope. Blocks never propagate downward on
// their own: a unit's protection extends to its subtree only when
// AppliesToDescendants is set, and each unit decides that independently.
type BlockConfig struct {
	BlockedPermissions   []string `json:"blocked_permissions"`
	AppliesToDescendants bool     `json:"applies_to_descendants"`
	Reason               string   `json:"reason,omitempty"`
}

// Validate checks every blocked permission pattern. Patterns are either an
// exact "resource.action" name or a "resource.*" wildcard.
func (b *BlockConfig) Validate() error {
	if len(b.BlockedPermissions) == 0 {
		return fmt.Errorf("%w: blocked_permissions cannot be empty", ErrInvalidBlock)
	}
	for _, p := range b.BlockedPermissions {
		if err := ValidatePermissionPattern(p); err != nil {
			return err
		}
	}
	return nil
}

// Blocks reports whether the configuration blocks the given permission,
// by exact match or by "resource.*" wildcard.
func (b *BlockConfig) Blocks(permission string) bool {
	for _, pattern := range b.BlockedPermissions {
		if pattern == permission {
			return true
		}
		if strings.HasSuffix(pattern, ".*") &&
			strings.HasPrefix(permission, strings.TrimSuffix(pattern, "*")) {
			return true
		}
	}
	return false
}

// ValidatePermissionPattern validates a "resource.action" permission name or
// a "resource.*" wildcard. The wildcard is only legal as the final segment.
func ValidatePermissionPattern(pattern string) error {
	segments := strings.Split(pattern, ".")
	if len(segments) < 2 {
		return fmt.Errorf("%w: pattern %q must have at least resource and action segments", ErrInvalidBlock, pattern)
	}
	for i, seg := range segments {
		if seg == "" {
			return fmt.Errorf("%w: pattern %q has an empty segment", ErrInvalidBlock, pattern)
		}
		if strings.Contains(seg, "*") && (seg != "*" || i != len(segments)-1) {
			return fmt.Errorf("%w: pattern %q may only use '*' as its final segment", ErrInvalidBlock, pattern)
		}
	}
	return nil
}

// ClosureEntry is one row of the materialized ancestor-descendant relation.
// Depth 0 is the self pair; depth 1 is the direct parent, and so on.
type ClosureEntry struct {
	AncestorID   id.OrgUnitID `json:"ancestor_id" db:"ancestor_id"`
	DescendantID id.OrgUnitID `json:"descendant_id" db:"descendant_id"`
	Depth        int          `json:"depth" db:"depth"`
}

// ListFilter contains filters for listing units.
type ListFilter struct {
	TenantID string        `json:"tenant_id,omitempty"`
	ParentID *id.OrgUnitID `json:"parent_id,omitempty"`
	Type     string        `json:"type,omitempty"`
	Search   string        `json:"search,omitempty"`
	Limit    int           `json:"limit,omitempty"`
	Offset   int           `json:"offset,omitempty"`
}
