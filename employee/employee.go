// Package employee defines the Employee entity and its store interface.
package employee

import (
	"errors"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
)

var (
	// ErrNotFound is returned when an employee cannot be found.
	ErrNotFound = errors.New("employee: not found")

	// ErrInvalidRank is returned when a management level is outside 0..255.
	ErrInvalidRank = errors.New("employee: invalid management level")

	// ErrAlreadyExists is returned when a tenant already has an employee
	// record for the user.
	ErrAlreadyExists = errors.New("employee: user already registered")
)

// Employee is a person placed in an organizational unit. ManagementLevel 0
// marks a front-line (non-management) employee; 1 is the most senior
// management level and larger numbers are progressively less senior.
type Employee struct {
	ID        id.EmployeeID `json:"id" db:"id"`
	TenantID  string        `json:"tenant_id" db:"tenant_id"`
	AppID     string        `json:"app_id" db:"app_id"`
	UserID    string        `json:"user_id" db:"user_id"`
	OrgUnitID id.OrgUnitID  `json:"org_unit_id" db:"org_unit_id"`

	DisplayName     string `json:"display_name,omitempty" db:"display_name"`
	ManagementLevel int    `json:"management_level" db:"management_level"`

	Metadata map[string]any `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsManagement reports whether the employee holds a management level.
func (e *Employee) IsManagement() bool { return e.ManagementLevel > 0 }

// Validate checks required fields and the management level bounds.
func (e *Employee) Validate() error {
	if e.UserID == "" {
		return errors.New("employee: user_id is required")
	}
	if e.OrgUnitID.IsNil() {
		return errors.New("employee: org_unit_id is required")
	}
	return ValidateRank(e.ManagementLevel)
}

// ValidateRank checks that a management level lies in 0..255.
func ValidateRank(rank int) error {
	if rank < 0 || rank > 255 {
		return fmt.Errorf("%w: %d outside 0..255", ErrInvalidRank, rank)
	}
	return nil
}

// ListFilter contains filters for listing employees.
type ListFilter struct {
	TenantID  string        `json:"tenant_id,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
	OrgUnitID *id.OrgUnitID `json:"org_unit_id,omitempty"`
	Search    string        `json:"search,omitempty"`
	Limit     int           `json:"limit,omitempty"`
	Offset    int           `json:"offset,omitempty"`
}
