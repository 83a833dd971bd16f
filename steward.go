// Package steward provides hierarchy-scoped authorization for multi-tenant
// organizations.
//
// Steward decides whether a user may exercise a permission on a target
// organizational unit, and optionally on an employee inside it. Units form an
// unbounded-depth forest backed by a closure table; access flows through
// scope assignments that may include a unit's descendants, filtered by
// per-unit inheritance blocks, management-level (rank) windows, and a
// self-access rule.
//
//	eng, err := steward.NewEngine(
//	    steward.WithStore(memStore),
//	    steward.WithCatalog(catalog),
//	)
//	result, err := eng.Authorize(ctx, &steward.AuthorizeRequest{
//	    UserID:     "user_123",
//	    Permission: "employee.read",
//	    OrgUnitID:  unitID,
//	})
package steward

import "github.com/xraph/steward/id"

// Verdict is the authorization outcome.
type Verdict string

const (
	// VerdictAllow means the request is permitted.
	VerdictAllow Verdict = "allow"

	// VerdictDeny means the request is denied.
	VerdictDeny Verdict = "deny"
)

// Reason is the machine-readable explanation of a deny verdict. Reasons are
// for administrators and auditors; end users only ever see a generic denial.
type Reason string

const (
	// ReasonNoPermission means the permission catalog does not grant the
	// permission to the user at all.
	ReasonNoPermission Reason = "no_permission"

	// ReasonNoScope means no scope assignment of the user covers the
	// target unit.
	ReasonNoScope Reason = "no_scope"

	// ReasonBlockedByInheritance means the target unit (or an ancestor
	// with a descendant-reaching block) blocks the permission and the
	// user holds no scope directly on the unit.
	ReasonBlockedByInheritance Reason = "blocked_by_inheritance"

	// ReasonRankNotInRange means no covering scope's viewable rank window
	// admits the target employee's management level.
	ReasonRankNotInRange Reason = "rank_not_in_range"

	// ReasonSelfAccessDenied means the target employee is the requesting
	// user and no surviving scope allows self access.
	ReasonSelfAccessDenied Reason = "self_access_denied"
)

// AuthorizeRequest is the input to an authorization decision.
type AuthorizeRequest struct {
	// UserID identifies the requesting user.
	UserID string `json:"user_id"`

	// Permission is the opaque "resource.action" permission name.
	Permission string `json:"permission"`

	// OrgUnitID is the target organizational unit.
	OrgUnitID id.OrgUnitID `json:"org_unit_id"`

	// EmployeeID optionally narrows the target to one employee, engaging
	// the rank and self-access filters.
	EmployeeID *id.EmployeeID `json:"employee_id,omitempty"`

	// RequestIP is recorded in the decision log when set.
	RequestIP string `json:"request_ip,omitempty"`
}

// AuthorizeResult is the outcome of an authorization decision. A deny is a
// successful, well-defined negative result, not an error; infrastructure
// failures surface as ErrDecisionUnavailable instead.
type AuthorizeResult struct {
	Allowed       bool         `json:"allowed"`
	Verdict       Verdict      `json:"verdict"`
	Reason        Reason       `json:"reason,omitempty"`
	Detail        string       `json:"detail,omitempty"`
	MatchedScopes []id.ScopeID `json:"matched_scopes,omitempty"`
	EvalTimeNs    int64        `json:"eval_time_ns"`
}
