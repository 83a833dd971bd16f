package mongo

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
	ID              string               `grove:"id,pk"               bson:"_id"`
	TenantID        string               `grove:"tenant_id"           bson:"tenant_id"`
	AppID           string               `grove:"app_id"              bson:"app_id"`
	ParentID        *string              `grove:"parent_id"           bson:"parent_id,omitempty"`
	Name            string               `grove:"name"                bson:"name"`
	Type            string               `grove:"type"                bson:"type"`
	Block           *orgunit.BlockConfig `grove:"inheritance_blocks"  bson:"inheritance_blocks,omitempty"`
	Metadata        map[string]any       `grove:"metadata"            bson:"metadata,omitempty"`
	CreatedAt       time.Time            `grove:"created_at"          bson:"created_at"`
	UpdatedAt       time.Time            `grove:"updated_at"          bson:"updated_at"`
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

// closureModel materializes one ancestor-descendant pair, including the
// depth-0 self pair for every unit. tenant_id is denormalized so hierarchy
// queries never touch the units collection.
type closureModel struct {
	grove.BaseModel `grove:"table:steward_org_closure"`
	AncestorID      string `grove:"ancestor_id,pk"    bson:"ancestor_id"`
	DescendantID    string `grove:"descendant_id,pk"  bson:"descendant_id"`
	TenantID        string `grove:"tenant_id"         bson:"tenant_id"`
	Depth           int    `grove:"depth"             bson:"depth"`
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
	ID              string `grove:"id,pk"         bson:"_id"`
	TenantID        string `grove:"tenant_id"     bson:"tenant_id"`
	AppID           string `grove:"app_id"        bson:"app_id"`
	UserID          string `grove:"user_id"       bson:"user_id"`
	OrgUnitID       string `grove:"org_unit_id"   bson:"org_unit_id"`

	IncludeDescendants bool `grove:"include_descendants" bson:"include_descendants"`

	MinViewableRank   *int `grove:"min_viewable_rank"   bson:"min_viewable_rank,omitempty"`
	MaxViewableRank   *int `grove:"max_viewable_rank"   bson:"max_viewable_rank,omitempty"`
	MinAssignableRank *int `grove:"min_assignable_rank" bson:"min_assignable_rank,omitempty"`
	MaxAssignableRank *int `grove:"max_assignable_rank" bson:"max_assignable_rank,omitempty"`

	AllowSelfAccess bool           `grove:"allow_self_access" bson:"allow_self_access"`
	GrantedBy       string         `grove:"granted_by"        bson:"granted_by"`
	Reason          string         `grove:"reason"            bson:"reason"`
	Metadata        map[string]any `grove:"metadata"          bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"        bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"        bson:"updated_at"`
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
	sid, _ := id.ParseScopeID(m.ID)          //nolint:errcheck // stored IDs are always valid
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
	ID              string         `grove:"id,pk"            bson:"_id"`
	TenantID        string         `grove:"tenant_id"        bson:"tenant_id"`
	AppID           string         `grove:"app_id"           bson:"app_id"`
	UserID          string         `grove:"user_id"          bson:"user_id"`
	OrgUnitID       string         `grove:"org_unit_id"      bson:"org_unit_id"`
	DisplayName     string         `grove:"display_name"     bson:"display_name"`
	ManagementLevel int            `grove:"management_level" bson:"management_level"`
	Metadata        map[string]any `grove:"metadata"         bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"       bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"       bson:"updated_at"`
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
	ID              string         `grove:"id,pk"        bson:"_id"`
	TenantID        string         `grove:"tenant_id"    bson:"tenant_id"`
	AppID           string         `grove:"app_id"       bson:"app_id"`
	UserID          string         `grove:"user_id"      bson:"user_id"`
	Permission      string         `grove:"permission"   bson:"permission"`
	OrgUnitID       string         `grove:"org_unit_id"  bson:"org_unit_id"`
	EmployeeID      *string        `grove:"employee_id"  bson:"employee_id,omitempty"`
	Verdict         string         `grove:"verdict"      bson:"verdict"`
	Reason          string         `grove:"reason"       bson:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns" bson:"eval_time_ns"`
	RequestIP       string         `grove:"request_ip"   bson:"request_ip"`
	Metadata        map[string]any `grove:"metadata"     bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"   bson:"created_at"`
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
