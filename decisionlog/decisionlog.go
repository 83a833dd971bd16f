// Package decisionlog defines the authorization decision audit Entry entity.
package decisionlog

import (
	"errors"
	"time"

	"github.com/xraph/steward/id"
)

// ErrNotFound is returned when a decision log entry cannot be found.
var ErrNotFound = errors.New("decisionlog: entry not found")

// Entry is a single authorization decision audit record. One entry is
// written per Authorize call so auditors can distinguish "legitimately no
// access" from "blocked by subsidiary policy".
type Entry struct {
	ID       id.DecisionLogID `json:"id" db:"id"`
	TenantID string           `json:"tenant_id" db:"tenant_id"`
	AppID    string           `json:"app_id" db:"app_id"`

	UserID     string         `json:"user_id" db:"user_id"`
	Permission string         `json:"permission" db:"permission"`
	OrgUnitID  id.OrgUnitID   `json:"org_unit_id" db:"org_unit_id"`
	EmployeeID *id.EmployeeID `json:"employee_id,omitempty" db:"employee_id"`

	Verdict    string `json:"verdict" db:"verdict"`
	Reason     string `json:"reason,omitempty" db:"reason"`
	EvalTimeNs int64  `json:"eval_time_ns" db:"eval_time_ns"`

	RequestIP string         `json:"request_ip,omitempty" db:"request_ip"`
	Metadata  map[string]any `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	TenantID   string         `json:"tenant_id,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	Permission string         `json:"permission,omitempty"`
	OrgUnitID  *id.OrgUnitID  `json:"org_unit_id,omitempty"`
	EmployeeID *id.EmployeeID `json:"employee_id,omitempty"`
	Verdict    string         `json:"verdict,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	After      *time.Time     `json:"after,omitempty"`
	Before     *time.Time     `json:"before,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	Offset     int            `json:"offset,omitempty"`
}
