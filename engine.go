package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/plugin"
	"github.com/xraph/steward/scope"
	"github.com/xraph/steward/store"
)

// Engine is the central authorization engine. Decisions are pure,
// synchronous, single-pass evaluations over the store's current state; the
// engine holds no mutable decision state and may be called from any number
// of goroutines.
type Engine struct {
	store   store.Store
	catalog PermissionCatalog
	cache   Cache
	plugins *plugin.Registry
	logger  *slog.Logger
	config  Config
}

// NewEngine creates a new Steward engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("steward: store is required")
	}
	if e.catalog == nil {
		return nil, errors.New("steward: permission catalog is required")
	}
	if e.config.MaxHierarchyDepth <= 0 {
		e.config.MaxHierarchyDepth = DefaultConfig().MaxHierarchyDepth
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(_ context.Context) error { return nil }

// ──────────────────────────────────────────────────
// Decision path
// ──────────────────────────────────────────────────

// Authorize evaluates an authorization decision. This is the hot path.
//
// The pipeline: permission check → scope discovery over the closure table →
// inheritance-block filter → rank filter → self-access filter. A deny is a
// normal result; only infrastructure failures return an error, wrapped in
// ErrDecisionUnavailable so callers never mistake an outage for a denial.
func (e *Engine) Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error) {
	start := time.Now()
	sc := scopeFromContext(ctx)

	if req.UserID == "" || req.Permission == "" || req.OrgUnitID.IsNil() {
		return nil, errors.New("steward: user_id, permission, and org_unit_id are required")
	}

	// 1. Cache hit?
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, sc.tenantID, req); ok {
			cached.EvalTimeNs = time.Since(start).Nanoseconds()
			return cached, nil
		}
	}

	// 1b. Extension hook: before decision.
	if e.plugins != nil {
		e.plugins.EmitBeforeAuthorize(ctx, req)
	}

	result, err := e.evaluate(ctx, sc, req)
	if err != nil {
		return nil, err
	}
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	// Record the decision. Audit failures are logged, never allowed to
	// flip a verdict.
	if e.config.decisionLogEnabled() {
		e.record(ctx, sc, req, result)
	}

	// Cache the result.
	if e.cache != nil {
		e.cache.Set(ctx, sc.tenantID, req, result)
	}

	// Extension hook: after decision.
	if e.plugins != nil {
		e.plugins.EmitAfterAuthorize(ctx, req, result)
	}

	return result, nil
}

// Enforce returns an error if the authorization decision is deny.
func (e *Engine) Enforce(ctx context.Context, req *AuthorizeRequest) error {
	result, err := e.Authorize(ctx, req)
	if err != nil {
		return fmt.Errorf("steward authorize: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s", ErrAccessDenied, result.Reason)
	}
	return nil
}

// CanAccess is a shorthand for a simple authorization decision.
func (e *Engine) CanAccess(ctx context.Context, userID, permission string, unitID id.OrgUnitID) (bool, error) {
	result, err := e.Authorize(ctx, &AuthorizeRequest{
		UserID:     userID,
		Permission: permission,
		OrgUnitID:  unitID,
	})
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}

func (e *Engine) evaluate(ctx context.Context, sc tenantScope, req *AuthorizeRequest) (*AuthorizeResult, error) {
	// 1. Permission check against the external catalog.
	held, err := e.catalog.UserHasPermission(ctx, sc.tenantID, req.UserID, req.Permission)
	if err != nil {
		return nil, fmt.Errorf("%w: permission catalog: %w", ErrDecisionUnavailable, err)
	}
	if !held {
		return deny(ReasonNoPermission, "user does not hold the permission"), nil
	}

	// 2. Target unit must exist within the caller's tenant.
	unit, err := e.getTenantUnit(ctx, sc, req.OrgUnitID)
	if err != nil {
		return nil, err
	}

	// 3. Scope discovery: direct scopes plus descendant-including scopes
	// on ancestors, resolved through the closure table.
	scopes, err := e.store.ScopesCovering(ctx, sc.tenantID, req.UserID, unit.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: scope discovery: %w", ErrDecisionUnavailable, err)
	}
	if len(scopes) == 0 {
		return deny(ReasonNoScope, "no scope covers the target unit"), nil
	}

	// 4. Inheritance block: when the unit blocks the permission, only a
	// direct scope on the exact unit survives.
	blocked, err := e.blocksPermission(ctx, sc, unit, req.Permission)
	if err != nil {
		return nil, err
	}
	if blocked {
		scopes = filterScopes(scopes, func(a *scope.Assignment) bool {
			return a.OrgUnitID.String() == unit.ID.String()
		})
		if len(scopes) == 0 {
			return deny(ReasonBlockedByInheritance, "permission is blocked from inheritance on this unit"), nil
		}
	}

	// 5–6. Rank and self-access filters, only when an employee is targeted.
	if req.EmployeeID != nil {
		emp, err := e.getTenantEmployee(ctx, sc, *req.EmployeeID)
		if err != nil {
			return nil, err
		}
		if emp.OrgUnitID.String() != unit.ID.String() {
			return nil, fmt.Errorf("steward: employee %s is not in unit %s", emp.ID, unit.ID)
		}

		scopes = filterScopes(scopes, func(a *scope.Assignment) bool {
			return Admits(a, emp.ManagementLevel)
		})
		if len(scopes) == 0 {
			return deny(ReasonRankNotInRange, "employee's management level is outside every viewable range"), nil
		}

		if emp.UserID == req.UserID {
			scopes = filterScopes(scopes, func(a *scope.Assignment) bool {
				return a.AllowSelfAccess
			})
			if len(scopes) == 0 {
				return deny(ReasonSelfAccessDenied, "scope does not permit access to own record"), nil
			}
		}
	}

	matched := make([]id.ScopeID, len(scopes))
	for i, a := range scopes {
		matched[i] = a.ID
	}
	return &AuthorizeResult{
		Allowed:       true,
		Verdict:       VerdictAllow,
		MatchedScopes: matched,
	}, nil
}

// blocksPermission checks the unit's own block configuration, then walks the
// ancestor chain counting only ancestors whose block reaches descendants.
func (e *Engine) blocksPermission(ctx context.Context, sc tenantScope, unit *orgunit.Unit, permission string) (bool, error) {
	if unit.Block != nil && unit.Block.Blocks(permission) {
		return true, nil
	}

	ancestors, err := e.store.Ancestors(ctx, sc.tenantID, unit.ID)
	if err != nil {
		return false, fmt.Errorf("%w: ancestor walk: %w", ErrDecisionUnavailable, err)
	}
	for i, entry := range ancestors {
		if i >= e.config.MaxHierarchyDepth {
			break
		}
		anc, err := e.getTenantUnit(ctx, sc, entry.AncestorID)
		if err != nil {
			return false, err
		}
		if anc.Block != nil && anc.Block.AppliesToDescendants && anc.Block.Blocks(permission) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) record(ctx context.Context, sc tenantScope, req *AuthorizeRequest, result *AuthorizeResult) {
	entry := &decisionlog.Entry{
		ID:         id.NewDecisionLogID(),
		TenantID:   sc.tenantID,
		AppID:      sc.appID,
		UserID:     req.UserID,
		Permission: req.Permission,
		OrgUnitID:  req.OrgUnitID,
		EmployeeID: req.EmployeeID,
		Verdict:    string(result.Verdict),
		Reason:     string(result.Reason),
		EvalTimeNs: result.EvalTimeNs,
		RequestIP:  req.RequestIP,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.CreateDecisionLog(ctx, entry); err != nil {
		e.logger.ErrorContext(ctx, "steward: decision log write failed",
			"error", err, "user_id", req.UserID, "permission", req.Permission)
	}
}

func deny(reason Reason, detail string) *AuthorizeResult {
	return &AuthorizeResult{Verdict: VerdictDeny, Reason: reason, Detail: detail}
}

func filterScopes(scopes []*scope.Assignment, keep func(*scope.Assignment) bool) []*scope.Assignment {
	out := scopes[:0]
	for _, a := range scopes {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// ──────────────────────────────────────────────────
// Hierarchy administration
// ──────────────────────────────────────────────────

// CreateUnit creates an organizational unit under the caller's tenant. The
// closure rows for the new unit are inserted by the store in the same
// transaction as the unit itself.
func (e *Engine) CreateUnit(ctx context.Context, u *orgunit.Unit) error {
	sc := scopeFromContext(ctx)
	if u.ID.IsNil() {
		u.ID = id.NewOrgUnitID()
	}
	if u.TenantID == "" {
		u.TenantID = sc.tenantID
	}
	if u.AppID == "" {
		u.AppID = sc.appID
	}
	if u.TenantID != sc.tenantID {
		return fmt.Errorf("%w: unit tenant %q", ErrTenantMismatch, u.TenantID)
	}
	if u.Block != nil {
		if err := u.Block.Validate(); err != nil {
			return err
		}
	}
	if u.ParentID != nil {
		if _, err := e.getTenantUnit(ctx, sc, *u.ParentID); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := e.store.CreateUnit(ctx, u); err != nil {
		return fmt.Errorf("steward: create unit: %w", err)
	}

	e.invalidateTenant(ctx, sc.tenantID)
	if e.plugins != nil {
		e.plugins.EmitUnitCreated(ctx, u)
	}
	return nil
}

// MoveUnit reparents a unit. The store rewrites the closure rows for the
// whole moved subtree in a single transaction; a move that would create a
// cycle fails with ErrCycleDetected before any mutation.
func (e *Engine) MoveUnit(ctx context.Context, unitID id.OrgUnitID, newParentID *id.OrgUnitID) error {
	sc := scopeFromContext(ctx)
	if _, err := e.getTenantUnit(ctx, sc, unitID); err != nil {
		return err
	}
	if newParentID != nil {
		if _, err := e.getTenantUnit(ctx, sc, *newParentID); err != nil {
			return err
		}
	}

	if err := e.store.MoveUnit(ctx, sc.tenantID, unitID, newParentID); err != nil {
		if errors.Is(err, ErrCycleDetected) {
			return err
		}
		return fmt.Errorf("steward: move unit: %w", err)
	}

	e.invalidateTenant(ctx, sc.tenantID)
	if e.plugins != nil {
		e.plugins.EmitUnitMoved(ctx, unitID, newParentID)
	}
	return nil
}

// DeleteUnit removes a unit and its subtree, cascading to closure rows,
// scope assignments, and employees of the deleted units.
func (e *Engine) DeleteUnit(ctx context.Context, unitID id.OrgUnitID) error {
	sc := scopeFromContext(ctx)
	if _, err := e.getTenantUnit(ctx, sc, unitID); err != nil {
		return err
	}

	if err := e.store.DeleteUnit(ctx, unitID); err != nil {
		return fmt.Errorf("steward: delete unit: %w", err)
	}

	e.invalidateTenant(ctx, sc.tenantID)
	if e.plugins != nil {
		e.plugins.EmitUnitDeleted(ctx, unitID)
	}
	return nil
}

// SetInheritanceBlock replaces a unit's inheritance block configuration.
// A nil config clears it.
func (e *Engine) SetInheritanceBlock(ctx context.Context, unitID id.OrgUnitID, cfg *orgunit.BlockConfig) error {
	sc := scopeFromContext(ctx)
	if _, err := e.getTenantUnit(ctx, sc, unitID); err != nil {
		return err
	}
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := e.store.SetInheritanceBlock(ctx, unitID, cfg); err != nil {
		return fmt.Errorf("steward: set inheritance block: %w", err)
	}

	e.invalidateTenant(ctx, sc.tenantID)
	if e.plugins != nil {
		e.plugins.EmitBlockConfigured(ctx, unitID, cfg)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Scope administration
// ──────────────────────────────────────────────────

// CreateScope creates a scope assignment on behalf of actorUserID. The write
// is itself authorized: the actor's assignable ceiling on the target unit
// must reach every management rank window the new assignment grants. An
// empty actor marks a trusted system caller (bootstrap, migrations) and
// bypasses the guard.
func (e *Engine) CreateScope(ctx context.Context, actorUserID string, a *scope.Assignment) error {
	sc := scopeFromContext(ctx)
	if a.ID.IsNil() {
		a.ID = id.NewScopeID()
	}
	if a.TenantID == "" {
		a.TenantID = sc.tenantID
	}
	if a.AppID == "" {
		a.AppID = sc.appID
	}
	if a.TenantID != sc.tenantID {
		return fmt.Errorf("%w: scope tenant %q", ErrTenantMismatch, a.TenantID)
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := e.getTenantUnit(ctx, sc, a.OrgUnitID); err != nil {
		return err
	}
	if err := e.guardScopeWrite(ctx, sc, actorUserID, a); err != nil {
		return err
	}
	if a.GrantedBy == "" {
		a.GrantedBy = actorUserID
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := e.store.CreateScope(ctx, a); err != nil {
		return fmt.Errorf("steward: create scope: %w", err)
	}

	e.invalidateUser(ctx, sc.tenantID, a.UserID)
	if e.plugins != nil {
		e.plugins.EmitScopeCreated(ctx, a)
	}
	return nil
}

// UpdateScope updates an existing scope assignment on behalf of actorUserID,
// under the same privilege-escalation guard as CreateScope.
func (e *Engine) UpdateScope(ctx context.Context, actorUserID string, a *scope.Assignment) error {
	sc := scopeFromContext(ctx)
	existing, err := e.store.GetScope(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("steward: update scope: %w", err)
	}
	if existing.TenantID != sc.tenantID {
		return fmt.Errorf("scope %s: %w", a.ID, ErrScopeNotFound)
	}
	if a.TenantID == "" {
		a.TenantID = existing.TenantID
	}
	if a.AppID == "" {
		a.AppID = existing.AppID
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := e.getTenantUnit(ctx, sc, a.OrgUnitID); err != nil {
		return err
	}
	if err := e.guardScopeWrite(ctx, sc, actorUserID, a); err != nil {
		return err
	}

	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateScope(ctx, a); err != nil {
		return fmt.Errorf("steward: update scope: %w", err)
	}

	e.invalidateUser(ctx, sc.tenantID, existing.UserID)
	e.invalidateUser(ctx, sc.tenantID, a.UserID)
	if e.plugins != nil {
		e.plugins.EmitScopeUpdated(ctx, a)
	}
	return nil
}

// DeleteScope removes a scope assignment.
func (e *Engine) DeleteScope(ctx context.Context, scopeID id.ScopeID) error {
	sc := scopeFromContext(ctx)
	existing, err := e.store.GetScope(ctx, scopeID)
	if err != nil {
		return fmt.Errorf("steward: delete scope: %w", err)
	}
	if existing.TenantID != sc.tenantID {
		return fmt.Errorf("scope %s: %w", scopeID, ErrScopeNotFound)
	}

	if err := e.store.DeleteScope(ctx, scopeID); err != nil {
		return fmt.Errorf("steward: delete scope: %w", err)
	}

	e.invalidateUser(ctx, sc.tenantID, existing.UserID)
	if e.plugins != nil {
		e.plugins.EmitScopeDeleted(ctx, scopeID)
	}
	return nil
}

// guardScopeWrite enforces the privilege-escalation rule: no actor may grant
// a viewable or assignable window reaching higher authority (numerically
// smaller ranks) than the actor's own assignable ceiling on that unit.
func (e *Engine) guardScopeWrite(ctx context.Context, sc tenantScope, actorUserID string, a *scope.Assignment) error {
	if actorUserID == "" {
		return nil
	}

	ceiling, held, err := e.assignableCeiling(ctx, sc, actorUserID, a.OrgUnitID)
	if err != nil {
		return err
	}

	for _, w := range []struct {
		label string
		min   *int
		max   *int
	}{
		{"viewable", a.MinViewableRank, a.MaxViewableRank},
		{"assignable", a.MinAssignableRank, a.MaxAssignableRank},
	} {
		if w.max == nil || *w.max == 0 {
			// Non-management window; there is no seniority to escalate.
			continue
		}
		reqMin := HighestRank
		if w.min != nil && *w.min > 0 {
			reqMin = *w.min
		}
		if !held {
			return fmt.Errorf("%w: actor %s holds no assignable range on unit %s", ErrPrivilegeEscalation, actorUserID, a.OrgUnitID)
		}
		if ceiling > reqMin {
			return fmt.Errorf("%w: %s range reaches rank %d above actor ceiling %d", ErrPrivilegeEscalation, w.label, reqMin, ceiling)
		}
	}
	return nil
}

// assignableCeiling computes the most senior rank the actor may assign on
// the unit: the numerically smallest effective MinAssignableRank across the
// actor's covering scopes with a management assignable window.
func (e *Engine) assignableCeiling(ctx context.Context, sc tenantScope, actorUserID string, unitID id.OrgUnitID) (int, bool, error) {
	scopes, err := e.store.ScopesCovering(ctx, sc.tenantID, actorUserID, unitID)
	if err != nil {
		return 0, false, fmt.Errorf("steward: actor scope lookup: %w", err)
	}
	ceiling := 0
	held := false
	for _, s := range scopes {
		if s.MaxAssignableRank == nil || *s.MaxAssignableRank == 0 {
			continue
		}
		lo := HighestRank
		if s.MinAssignableRank != nil && *s.MinAssignableRank > 0 {
			lo = *s.MinAssignableRank
		}
		if !held || lo < ceiling {
			ceiling = lo
			held = true
		}
	}
	return ceiling, held, nil
}

// ──────────────────────────────────────────────────
// Employee administration
// ──────────────────────────────────────────────────

// CreateEmployee creates an employee record under the caller's tenant.
func (e *Engine) CreateEmployee(ctx context.Context, emp *employee.Employee) error {
	sc := scopeFromContext(ctx)
	if emp.ID.IsNil() {
		emp.ID = id.NewEmployeeID()
	}
	if emp.TenantID == "" {
		emp.TenantID = sc.tenantID
	}
	if emp.AppID == "" {
		emp.AppID = sc.appID
	}
	if emp.TenantID != sc.tenantID {
		return fmt.Errorf("%w: employee tenant %q", ErrTenantMismatch, emp.TenantID)
	}
	if err := emp.Validate(); err != nil {
		return err
	}
	if _, err := e.getTenantUnit(ctx, sc, emp.OrgUnitID); err != nil {
		return err
	}

	now := time.Now().UTC()
	emp.CreatedAt = now
	emp.UpdatedAt = now
	if err := e.store.CreateEmployee(ctx, emp); err != nil {
		return fmt.Errorf("steward: create employee: %w", err)
	}

	if e.plugins != nil {
		e.plugins.EmitEmployeeCreated(ctx, emp)
	}
	return nil
}

// AssignRank sets an employee's management level on behalf of actorUserID.
// The actor needs an assignable window on the employee's unit admitting the
// new rank; demoting to 0 instead requires coverage of the employee's
// current rank, so nobody can demote a manager they could never have
// appointed. An empty actor marks a trusted system caller.
func (e *Engine) AssignRank(ctx context.Context, actorUserID string, empID id.EmployeeID, newRank int) error {
	sc := scopeFromContext(ctx)
	if err := employee.ValidateRank(newRank); err != nil {
		return err
	}
	emp, err := e.getTenantEmployee(ctx, sc, empID)
	if err != nil {
		return err
	}

	if actorUserID != "" {
		required := newRank
		if newRank == NonManagement && emp.ManagementLevel > NonManagement {
			required = emp.ManagementLevel
		}
		scopes, err := e.store.ScopesCovering(ctx, sc.tenantID, actorUserID, emp.OrgUnitID)
		if err != nil {
			return fmt.Errorf("steward: actor scope lookup: %w", err)
		}
		admitted := false
		for _, s := range scopes {
			if AdmitsAssignable(s, required) {
				admitted = true
				break
			}
		}
		if !admitted {
			return fmt.Errorf("%w: rank %d on unit %s", ErrRankNotAssignable, required, emp.OrgUnitID)
		}
	}

	previous := emp.ManagementLevel
	emp.ManagementLevel = newRank
	emp.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateEmployee(ctx, emp); err != nil {
		return fmt.Errorf("steward: assign rank: %w", err)
	}

	e.invalidateTenant(ctx, sc.tenantID)
	if e.plugins != nil {
		e.plugins.EmitRankAssigned(ctx, emp, previous)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// getTenantUnit loads a unit and hides its existence from other tenants.
func (e *Engine) getTenantUnit(ctx context.Context, sc tenantScope, unitID id.OrgUnitID) (*orgunit.Unit, error) {
	u, err := e.store.GetUnit(ctx, unitID)
	if err != nil {
		if errors.Is(err, orgunit.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: unit lookup: %w", ErrDecisionUnavailable, err)
	}
	if u.TenantID != sc.tenantID {
		return nil, fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	return u, nil
}

// getTenantEmployee loads an employee and hides its existence from other
// tenants.
func (e *Engine) getTenantEmployee(ctx context.Context, sc tenantScope, empID id.EmployeeID) (*employee.Employee, error) {
	emp, err := e.store.GetEmployee(ctx, empID)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: employee lookup: %w", ErrDecisionUnavailable, err)
	}
	if emp.TenantID != sc.tenantID {
		return nil, fmt.Errorf("employee %s: %w", empID, employee.ErrNotFound)
	}
	return emp, nil
}

func (e *Engine) invalidateTenant(ctx context.Context, tenantID string) {
	if e.cache != nil {
		e.cache.InvalidateTenant(ctx, tenantID)
	}
}

func (e *Engine) invalidateUser(ctx context.Context, tenantID, userID string) {
	if e.cache != nil {
		e.cache.InvalidateUser(ctx, tenantID, userID)
	}
}
