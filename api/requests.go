package api

// ──────────────────────────────────────────────────
// Authorize requests
// ──────────────────────────────────────────────────

// AuthorizeRequest is the request body for an authorization decision.
type AuthorizeRequest struct {
	UserID     string `json:"user_id" description:"Requesting user identifier"`
	Permission string `json:"permission" description:"Permission name (resource.action)"`
	OrgUnitID  string `json:"org_unit_id" description:"Target organizational unit ID"`
	EmployeeID string `json:"employee_id,omitempty" description:"Target employee ID (engages rank and self-access filters)"`
}

// BatchAuthorizeRequest contains multiple authorization decisions.
type BatchAuthorizeRequest struct {
	Requests []AuthorizeRequest `json:"requests" description:"List of authorization requests"`
}

// ──────────────────────────────────────────────────
// Org unit requests
// ──────────────────────────────────────────────────

// CreateUnitRequest is the body for creating an organizational unit.
type CreateUnitRequest struct {
	Name     string            `json:"name" description:"Unit name"`
	Type     string            `json:"type,omitempty" description:"Free-form unit type (holding, branch, division, team)"`
	ParentID string            `json:"parent_id,omitempty" description:"Parent unit ID (omit for a root unit)"`
	Block    *BlockConfigInput `json:"inheritance_blocks,omitempty" description:"Inheritance block configuration"`
	Metadata map[string]any    `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateUnitRequest is the body for updating a unit. Reparenting goes through
// the move endpoint.
type UpdateUnitRequest struct {
	Name     string         `json:"name,omitempty" description:"Unit name"`
	Type     string         `json:"type,omitempty" description:"Unit type"`
	Metadata map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetUnitRequest is the path parameter for getting a unit.
type GetUnitRequest struct {
	UnitID string `path:"unitId" description:"Organizational unit ID"`
}

// ListUnitsRequest holds query parameters for listing units.
type ListUnitsRequest struct {
	ParentID string `query:"parent_id" description:"Filter by direct parent"`
	Type     string `query:"type" description:"Filter by unit type"`
	Search   string `query:"search" description:"Search by name"`
	Limit    int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// MoveUnitRequest is the body for reparenting a unit.
type MoveUnitRequest struct {
	NewParentID string `json:"new_parent_id,omitempty" description:"New parent unit ID (omit to move to root)"`
}

// BlockConfigInput is the input format for an inheritance block.
type BlockConfigInput struct {
	BlockedPermissions   []string `json:"blocked_permissions" description:"Exact names or resource.* wildcards"`
	AppliesToDescendants bool     `json:"applies_to_descendants,omitempty" description:"Extend the block to the unit's subtree"`
	Reason               string   `json:"reason,omitempty" description:"Why the block exists"`
}

// SetBlockRequest is the body for replacing a unit's inheritance block.
// An empty blocked_permissions list clears the block.
type SetBlockRequest struct {
	BlockedPermissions   []string `json:"blocked_permissions" description:"Exact names or resource.* wildcards (empty clears the block)"`
	AppliesToDescendants bool     `json:"applies_to_descendants,omitempty" description:"Extend the block to the unit's subtree"`
	Reason               string   `json:"reason,omitempty" description:"Why the block exists"`
}

// ──────────────────────────────────────────────────
// Scope requests
// ──────────────────────────────────────────────────

// CreateScopeRequest is the body for creating a scope assignment.
type CreateScopeRequest struct {
	UserID             string         `json:"user_id" description:"User receiving the grant"`
	OrgUnitID          string         `json:"org_unit_id" description:"Unit the grant is anchored on"`
	IncludeDescendants bool           `json:"include_descendants,omitempty" description:"Extend the grant to the unit's subtree"`
	MinViewableRank    *int           `json:"min_viewable_rank,omitempty" description:"Viewable window lower bound"`
	MaxViewableRank    *int           `json:"max_viewable_rank,omitempty" description:"Viewable window upper bound (nil or 0 covers rank 0 only)"`
	MinAssignableRank  *int           `json:"min_assignable_rank,omitempty" description:"Assignable window lower bound"`
	MaxAssignableRank  *int           `json:"max_assignable_rank,omitempty" description:"Assignable window upper bound (nil or 0 covers rank 0 only)"`
	AllowSelfAccess    bool           `json:"allow_self_access,omitempty" description:"Permit acting on the holder's own record"`
	Reason             string         `json:"reason,omitempty" description:"Why the grant exists"`
	Metadata           map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateScopeRequest is the body for updating a scope assignment.
type UpdateScopeRequest struct {
	IncludeDescendants *bool          `json:"include_descendants,omitempty" description:"Extend the grant to the unit's subtree"`
	MinViewableRank    *int           `json:"min_viewable_rank,omitempty" description:"Viewable window lower bound"`
	MaxViewableRank    *int           `json:"max_viewable_rank,omitempty" description:"Viewable window upper bound"`
	MinAssignableRank  *int           `json:"min_assignable_rank,omitempty" description:"Assignable window lower bound"`
	MaxAssignableRank  *int           `json:"max_assignable_rank,omitempty" description:"Assignable window upper bound"`
	AllowSelfAccess    *bool          `json:"allow_self_access,omitempty" description:"Permit acting on the holder's own record"`
	Reason             string         `json:"reason,omitempty" description:"Why the grant exists"`
	Metadata           map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetScopeRequest is the path parameter for getting a scope assignment.
type GetScopeRequest struct {
	ScopeID string `path:"scopeId" description:"Scope assignment ID"`
}

// ListScopesRequest holds query parameters for listing scope assignments.
type ListScopesRequest struct {
	UserID    string `query:"user_id" description:"Filter by user"`
	OrgUnitID string `query:"org_unit_id" description:"Filter by unit"`
	Limit     int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset    int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Employee requests
// ──────────────────────────────────────────────────

// CreateEmployeeRequest is the body for creating an employee record.
type CreateEmployeeRequest struct {
	UserID          string         `json:"user_id" description:"User the record belongs to"`
	OrgUnitID       string         `json:"org_unit_id" description:"Home organizational unit"`
	DisplayName     string         `json:"display_name,omitempty" description:"Display name"`
	ManagementLevel int            `json:"management_level,omitempty" description:"Rank 0..255 (0 = non-management, 1 = most senior)"`
	Metadata        map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetEmployeeRequest is the path parameter for getting an employee.
type GetEmployeeRequest struct {
	EmployeeID string `path:"employeeId" description:"Employee ID"`
}

// ListEmployeesRequest holds query parameters for listing employees.
type ListEmployeesRequest struct {
	UserID    string `query:"user_id" description:"Filter by user"`
	OrgUnitID string `query:"org_unit_id" description:"Filter by unit"`
	Search    string `query:"search" description:"Search by display name"`
	Limit     int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset    int    `query:"offset" description:"Results to skip"`
}

// AssignRankRequest is the body for setting an employee's management level.
type AssignRankRequest struct {
	Rank int `json:"rank" description:"New management level 0..255"`
}

// ──────────────────────────────────────────────────
// Decision log requests
// ──────────────────────────────────────────────────

// ListDecisionLogsRequest holds query parameters for querying decision logs.
type ListDecisionLogsRequest struct {
	UserID     string `query:"user_id" description:"Filter by requesting user"`
	Permission string `query:"permission" description:"Filter by permission"`
	OrgUnitID  string `query:"org_unit_id" description:"Filter by target unit"`
	EmployeeID string `query:"employee_id" description:"Filter by target employee"`
	Verdict    string `query:"verdict" description:"Filter by verdict (allow/deny)"`
	Reason     string `query:"reason" description:"Filter by deny reason"`
	After      string `query:"after" description:"After timestamp (RFC3339)"`
	Before     string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit      int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset     int    `query:"offset" description:"Results to skip"`
}

// GetDecisionLogRequest is the path parameter for getting a decision log entry.
type GetDecisionLogRequest struct {
	LogID string `path:"logId" description:"Decision log entry ID"`
}
