package postgres

import (
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
	ID              string               `grove:"id,pk"`
	TenantID        string               `grove:"tenant_id,notnull"`
	AppID           string               `grove:"app_id,notnull"`
	ParentID        *string              `grove:"parent_id"`
	Name            string               `grove:"name,notnull"`
	Type            string               `grove:"type"`
	Block           *orgunit.BlockConfig `grove:"inheritance_blocks,type:jsonb"`
	Metadata        map[string]any       `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time            `grove:"created_at,notnull"`
	UpdatedAt       time.Time            `grove:"updated_at,notnull"`
}

func unitToModel(u *orgunit.Unit) *unitModel {
	m := &unitModel{
		ID:        u.ID.String(),
		TenantID:  u.TenantID,
		AppID:     u.AppID,
		Name:      u.Name,
		Type:      u.Type,
		Block:     u.Block,
		Metadata:  u.Metadata,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.ParentID != nil {
		s := u.ParentID.String()
		m.ParentID = &s
	}
	return m
}

func unitFromModel(m *unitModel) *orgunit.Unit {
	uid, _ := id.ParseOrgUnitID(m.ID) //nolint:errcheck // stored IDs are always valid
	u := &orgunit.Unit{
		ID:        uid,
		TenantID:  m.TenantID,
		AppID:     m.AppID,
		Name:      m.Name,
		Type:      m.Type,
		Block:     m.Block,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ParentID != nil {
		pid, err := id.ParseOrgUnitID(*m.ParentID)
		if err == nil {
			u.ParentID = &pid
		}
	}
	return u
}

// ──────────────────────────────────────────────────
// Closure model
// ──────────────────────────────────────────────────

// closureModel materializes one ancestor-descendant pair. The depth-0 self
// pair is stored for every unit. tenant_id is denormalized so hierarchy
// queries never join against the units table.
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

	AllowSelfAccess bool           `grove:"allow_self_access,notnull"`
	GrantedBy       string         `grove:"granted_by"`
	Reason          string         `grove:"reason"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func scopeToModel(a *scope.Assignment) *scopeModel {
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
		Metadata:           a.Metadata,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func scopeFromModel(m *scopeModel) *scope.Assignment {
	sid, _ := id.ParseScopeID(m.ID)        //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseOrgUnitID(m.OrgUnitID) //nolint:errcheck // stored IDs are always valid
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
		Metadata:           m.Metadata,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Employee model
// ──────────────────────────────────────────────────

type employeeModel struct {
	grove.BaseModel `grove:"table:steward_employees"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	AppID           string         `grove:"app_id,notnull"`
	UserID          string         `grove:"user_id,notnull"`
	OrgUnitID       string         `grove:"org_unit_id,notnull"`
	DisplayName     string         `grove:"display_name"`
	ManagementLevel int            `grove:"management_level,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func employeeToModel(e *employee.Employee) *employeeModel {
	return &employeeModel{
		ID:              e.ID.String(),
		TenantID:        e.TenantID,
		AppID:           e.AppID,
		UserID:          e.UserID,
		OrgUnitID:       e.OrgUnitID.String(),
		DisplayName:     e.DisplayName,
		ManagementLevel: e.ManagementLevel,
		Metadata:        e.Metadata,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func employeeFromModel(m *employeeModel) *employee.Employee {
	eid, _ := id.ParseEmployeeID(m.ID)       //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseOrgUnitID(m.OrgUnitID) //nolint:errcheck // stored IDs are always valid
	return &employee.Employee{
		ID:              eid,
		TenantID:        m.TenantID,
		AppID:           m.AppID,
		UserID:          m.UserID,
		OrgUnitID:       uid,
		DisplayName:     m.DisplayName,
		ManagementLevel: m.ManagementLevel,
		Metadata:        m.Metadata,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:steward_decision_logs"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	AppID           string         `grove:"app_id,notnull"`
	UserID          string         `grove:"user_id,notnull"`
	Permission      string         `grove:"permission,notnull"`
	OrgUnitID       string         `grove:"org_unit_id,notnull"`
	EmployeeID      *string        `grove:"employee_id"`
	Verdict         string         `grove:"verdict,notnull"`
	Reason          string         `grove:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns,notnull"`
	RequestIP       string         `grove:"request_ip"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func decisionLogToModel(e *decisionlog.Entry) *decisionLogModel {
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
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
	if e.EmployeeID != nil {
		s := e.EmployeeID.String()
		m.EmployeeID = &s
	}
	return m
}

func decisionLogFromModel(m *decisionLogModel) *decisionlog.Entry {
	lid, _ := id.ParseDecisionLogID(m.ID)    //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseOrgUnitID(m.OrgUnitID) //nolint:errcheck // stored IDs are always valid
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
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
	if m.EmployeeID != nil {
		eid, err := id.ParseEmployeeID(*m.EmployeeID)
		if err == nil {
			e.EmployeeID = &eid
		}
	}
	return e
}
