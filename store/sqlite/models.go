package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
)

// ──────────────────────────────────────────────────
// Org unit model
// ──────────────────────────────────────────────────

type unitModel struct {
	grove.BaseModel `grove:"table:steward_org_units"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	AppID           string    `grove:"app_id,notnull"`
	ParentID        *string   `grove:"parent_id"`
	Name            string    `grove:"name,notnull"`
	Type            string    `grove:"type"`
	Block           string    `grove:"inheritance_blocks"` // JSON text, empty when unset
	Metadata        string    `grove:"metadata"`           // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func unitToModel(u *orgunit.Unit) (*unitModel, error) {
	metadata, err := json.Marshal(u.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal unit metadata: %w", err)
	}
	m := &unitModel{
		ID:        u.ID.String(),
		TenantID:  u.TenantID,
		AppID:     u.AppID,
		Name:      u.Name,
		Type:      u.Type,
		Metadata:  string(metadata),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.ParentID != nil {
		s := u.ParentID.String()
		m.ParentID = &s
	}
	if u.Block != nil {
		block, err := json.Marshal(u.Block)
		if err != nil {
			return nil, fmt.Errorf("marshal inheritance block: %w", err)
		}
		m.Block = string(block)
	}
	return m, nil
}

func unitFromModel(m *unitModel) (*orgunit.Unit, error) {
	uid, _ := id.ParseOrgUnitID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal unit metadata: %w", err)
		}
	}
	u := &orgunit.Unit{
		ID:        uid,
		TenantID:  m.TenantID,
		AppID:     m.AppID,
		Name:      m.Name,
		Type:      m.Type,
		Metadata:  metadata,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ParentID != nil {
		pid, err := id.ParseOrgUnitID(*m.ParentID)
		if err == nil {
			u.ParentID = &pid
		}
	}
	if m.Block != "" {
		var block orgunit.BlockConfig
		if err := json.Unmarshal([]byte(m.Block), &block); err != nil {
			return nil, fmt.Errorf("unmarshal inheritance block: %w", err)
		}
		u.Block = &block
	}
	return u, nil
}

// ──────────────────────────────────────────────────
// Closure model
// ──────────────────────────────────────────────────

type closureModel struct {
	grove.BaseModel `grove:"table:steward_org_closure"`
	AncestorID      string `grove:"ancestor_id,pk"`
	DescendantID    string `grove:"descendant_id,pk"`
	TenantID        string `grove:"tenant_id,notnull"`
	Depth           int    `grove:"depth,notnull"`
}

func closureFromModel(m *closureModel) orgunit.ClosureEntry {
	aid, _ := id.ParseOrgUnitID(m.AncestorID)   //nolint:errcheck // stored IDs are always valid
	did, _ := id.ParseOrgUnitID(m.DescendantID) //nolint:errcheck // stored IDs are always valid
	return orgunit.ClosureEntry{
		AncestorID:   aid,
		DescendantID: did,
		Depth:        m.Depth,
	}
}

// ──────────────────────────────────────────────────
// Scope model
// ──────────────────────────────────────────────────

type scopeModel struct {
	grove.BaseModel `grove:"table:steward_scopes"`
	ID              string `grove:"id,pk"`
	TenantID        string `grove:"tenant_id,notnull"`
	AppID           string `grove:"app_id,notnull"`
	UserID          string `grove:"user_id,notnull"`
	OrgUnitID       string `grove:"org_unit_id,notnull"`

	IncludeDescendants bool `grove:"include_descendants,notnull"`

	MinViewableRank   *int `grove:"min_viewable_rank"`
	MaxViewableRank   *int `grove:"max_viewable_rank"`
	MinAssignableRank *int `grove:"min_assignable_rank"`
	MaxAssignableRank *int `grove:"max_assignable_rank"`

	AllowSelfAccess bool      `grove:"allow_self_access,notnull"`
	GrantedBy       string    `grove:"granted_by"`
	Reason          string    `grove:"reason"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func scopeToModel(a *scope.Assignment) (*scopeModel, error) {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal scope metadata: %w", err)
	}
	return &scopeModel{
		ID:                 a.ID.String(),
		TenantID:           a.TenantID,
		AppID:              a.AppID,
		UserID:             a.UserID,
		OrgUnitID:          a.OrgUnitID.String(),
		IncludeDescendants: a.IncludeDescendants,
		MinViewableRank:    a.MinViewableRank,
		MaxViewableRank:    a.MaxViewableRank,
		MinAssignableRank:  a.MinAssignableRank,
		MaxAssignableRank:  a.MaxAssignableRank,
		AllowSelfAccess:    a.AllowSelfAccess,
		GrantedBy:          a.GrantedBy,
		Reason:             a.Reason,
		Metadata:           string(metadata),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}, nil
}

func scopeFromModel(m *scopeModel) (*scope.Assignment, error) {
	sid, _ := id.ParseScopeID(m.ID)          //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseOrgUnitID(m.OrgUnitID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal scope metadata: %w", err)
		}
	}
	return &scope.Assignment{
		ID:                 sid,
		TenantID:           m.TenantID,
		AppID:              m.AppID,
		UserID:             m.UserID,
		OrgUnitID:          uid,
		IncludeDescendants: m.IncludeDescendants,
		MinViewableRank:    m.MinViewableRank,
		MaxViewableRank:    m.MaxViewableRank,
		MinAssignableRank:  m.MinAssignableRank,
		MaxAssignableRank:  m.MaxAssignableRank,
		AllowSelfAccess:    m.AllowSelfAccess,
		GrantedBy:          m.GrantedBy,
		Reason:             m.Reason,
		Metadata:           metadata,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Employee model
// ──────────────────────────────────────────────────

type employeeModel struct {
	grove.BaseModel `grove:"table:steward_employees"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	AppID           string    `grove:"app_id,notnull"`
	UserID          string    `grove:"user_id,notnull"`
	OrgUnitID       string    `grove:"org_unit_id,notnull"`
	DisplayName     string    `grove:"display_name"`
	ManagementLevel int       `grove:"management_level,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func employeeToModel(e *employee.Employee) (*employeeModel, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal employee metadata: %w", err)
	}
	return &employeeModel{
		ID:              e.ID.String(),
		TenantID:        e.TenantID,
		AppID:           e.AppID,
		UserID:          e.UserID,
		OrgUnitID:       e.OrgUnitID.String(),
		DisplayName:     e.DisplayName,
		ManagementLevel: e.ManagementLevel,
		Metadata:        string(metadata),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}, nil
}

func employeeFromModel(m *employeeModel) (*employee.Employee, error) {
	eid, _ := id.ParseEmployeeID(m.ID)       //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseOrgUnitID(m.OrgUnitID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal employee metadata: %w", err)
		}
	}
	return &employee.Employee{
		ID:              eid,
		TenantID:        m.TenantID,
		AppID:           m.AppID,
		UserID:          m.UserID,
		OrgUnitID:       uid,
		DisplayName:     m.DisplayName,
		ManagementLevel: m.ManagementLevel,
		Metadata:        metadata,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:steward_decision_logs"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	AppID           string    `grove:"app_id,notnull"`
	UserID          string    `grove:"user_id,notnull"`
	Permission      string    `grove:"permission,notnull"`
	OrgUnitID       string    `grove:"org_unit_id,notnull"`
	EmployeeID      *string   `grove:"employee_id"`
	Verdict         string    `grove:"verdict,notnull"`
	Reason          string    `grove:"reason"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	RequestIP       string    `grove:"request_ip"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func decisionLogToModel(e *decisionlog.Entry) (*decisionLogModel, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal decision log metadata: %w", err)
	}
	m := &decisionLogModel{
		ID:         e.ID.String(),
		TenantID:   e.TenantID,
		AppID:      e.AppID,
		UserID:     e.UserID,
		Permission: e.Permission,
		OrgUnitID:  e.OrgUnitID.String(),
		Verdict:    e.Verdict,
		Reason:     e.Reason,
		EvalTimeNs: e.EvalTimeNs,
		RequestIP:  e.RequestIP,
		Metadata:   string(metadata),
		CreatedAt:  e.CreatedAt,
	}
	if e.EmployeeID != nil {
		s := e.EmployeeID.String()
		m.EmployeeID = &s
	}
	return m, nil
}

func decisionLogFromModel(m *decisionLogModel) (*decisionlog.Entry, error) {
	lid, _ := id.ParseDecisionLogID(m.ID)    //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseOrgUnitID(m.OrgUnitID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal decision log metadata: %w", err)
		}
	}
	e := &decisionlog.Entry{
		ID:         lid,
		TenantID:   m.TenantID,
		AppID:      m.AppID,
		UserID:     m.UserID,
		Permission: m.Permission,
		OrgUnitID:  uid,
		Verdict:    m.Verdict,
		Reason:     m.Reason,
		EvalTimeNs: m.EvalTimeNs,
		RequestIP:  m.RequestIP,
		Metadata:   metadata,
		CreatedAt:  m.CreatedAt,
	}
	if m.EmployeeID != nil {
		eid, err := id.ParseEmployeeID(*m.EmployeeID)
		if err == nil {
			e.EmployeeID = &eid
		}
	}
	return e, nil
}
