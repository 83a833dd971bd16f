// Package scope defines the scope Assignment entity and its store interface.
//
// An assignment binds a user to an organizational unit, optionally including
// the unit's descendants, with separate viewable and assignable rank windows.
// Rank semantics are load-bearing: a nil or zero maximum means the window
// covers only non-management employees (rank 0), while any non-zero maximum
// covers only management ranks and explicitly excludes rank 0. Covering both
// populations takes two assignments.
package scope

import (
	"errors"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
)

var (
	// ErrNotFound is returned when a scope assignment cannot be found.
	ErrNotFound = errors.New("scope: assignment not found")

	// ErrInvalidRankRange is returned when a rank window is malformed or
	// its bounds cannot overlap.
	ErrInvalidRankRange = errors.New("scope: invalid rank range")
)

// MaxRank is the least senior management level. Rank 1 is the most senior;
// rank 0 marks a non-management employee.
const MaxRank = 255

// Assignment grants a user access to an organizational unit.
type Assignment struct {
	ID        id.ScopeID   `json:"id" db:"id"`
	TenantID  string       `json:"tenant_id" db:"tenant_id"`
	AppID     string       `json:"app_id" db:"app_id"`
	UserID    string       `json:"user_id" db:"user_id"`
	OrgUnitID id.OrgUnitID `json:"org_unit_id" db:"org_unit_id"`

	// IncludeDescendants extends the grant to every unit below OrgUnitID.
	IncludeDescendants bool `json:"include_descendants" db:"include_descendants"`

	// Viewable rank window. Nil-or-zero max covers rank 0 only; a
	// non-zero max covers [min ?? 1, max] and excludes rank 0.
	MinViewableRank *int `json:"min_viewable_rank,omitempty" db:"min_viewable_rank"`
	MaxViewableRank *int `json:"max_viewable_rank,omitempty" db:"max_viewable_rank"`

	// Assignable rank window, same arithmetic, governing which management
	// levels the holder may assign to others.
	MinAssignableRank *int `json:"min_assignable_rank,omitempty" db:"min_assignable_rank"`
	MaxAssignableRank *int `json:"max_assignable_rank,omitempty" db:"max_assignable_rank"`

	// AllowSelfAccess lets the holder act on their own employee record
	// through this assignment. Off by default.
	AllowSelfAccess bool `json:"allow_self_access" db:"allow_self_access"`

	GrantedBy string         `json:"granted_by,omitempty" db:"granted_by"`
	Reason    string         `json:"reason,omitempty" db:"reason"`
	Metadata  map[string]any `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks required fields and both rank windows. Invalid
// combinations are rejected at write time, never silently corrected.
func (a *Assignment) Validate() error {
	if a.UserID == "" {
		return errors.New("scope: user_id is required")
	}
	if a.OrgUnitID.IsNil() {
		return errors.New("scope: org_unit_id is required")
	}
	if err := validateWindow(a.MinViewableRank, a.MaxViewableRank, "viewable"); err != nil {
		return err
	}
	return validateWindow(a.MinAssignableRank, a.MaxAssignableRank, "assignable")
}

func validateWindow(min, max *int, label string) error {
	if min != nil && (*min < 0 || *min > MaxRank) {
		return fmt.Errorf("%w: min_%s_rank %d outside 0..%d", ErrInvalidRankRange, label, *min, MaxRank)
	}
	if max != nil && (*max < 0 || *max > MaxRank) {
		return fmt.Errorf("%w: max_%s_rank %d outside 0..%d", ErrInvalidRankRange, label, *max, MaxRank)
	}
	// A positive min next to a nil-or-zero max can never overlap: the max
	// side claims rank 0 only while the min side excludes it.
	if min != nil && *min > 0 && (max == nil || *max == 0) {
		return fmt.Errorf("%w: min_%s_rank %d cannot combine with a nil or zero max", ErrInvalidRankRange, label, *min)
	}
	if max != nil && *max > 0 {
		lo := 1
		if min != nil && *min > 0 {
			lo = *min
		}
		if lo > *max {
			return fmt.Errorf("%w: min_%s_rank %d exceeds max %d", ErrInvalidRankRange, label, lo, *max)
		}
	}
	return nil
}

// ListFilter contains filters for listing scope assignments.
type ListFilter struct {
	TenantID  string        `json:"tenant_id,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
	OrgUnitID *id.OrgUnitID `json:"org_unit_id,omitempty"`
	Limit     int           `json:"limit,omitempty"`
	Offset    int           `json:"offset,omitempty"`
}
