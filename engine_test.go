package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
	"github.com/xraph/steward/store/memory"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store, *StaticCatalog) {
	t.Helper()
	s := memory.New()
	catalog := NewStaticCatalog()
	opts = append([]Option{WithStore(s), WithCatalog(catalog)}, opts...)
	eng, err := NewEngine(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s, catalog
}

func mkUnit(t *testing.T, eng *Engine, ctx context.Context, name string, parentID *id.OrgUnitID) *orgunit.Unit {
	t.Helper()
	u := &orgunit.Unit{ID: id.NewOrgUnitID(), Name: name, ParentID: parentID}
	if err := eng.CreateUnit(ctx, u); err != nil {
		t.Fatalf("create unit %s: %v", name, err)
	}
	return u
}

func mkScope(t *testing.T, eng *Engine, ctx context.Context, a *scope.Assignment) *scope.Assignment {
	t.Helper()
	if a.ID.IsNil() {
		a.ID = id.NewScopeID()
	}
	if err := eng.CreateScope(ctx, "", a); err != nil {
		t.Fatalf("create scope: %v", err)
	}
	return a
}

func mkEmployee(t *testing.T, eng *Engine, ctx context.Context, userID string, unitID id.OrgUnitID, rank int) *employee.Employee {
	t.Helper()
	emp := &employee.Employee{ID: id.NewEmployeeID(), UserID: userID, OrgUnitID: unitID, ManagementLevel: rank}
	if err := eng.CreateEmployee(ctx, emp); err != nil {
		t.Fatalf("create employee %s: %v", userID, err)
	}
	return emp
}

func intp(v int) *int { return &v }

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine(WithCatalog(NewStaticCatalog()))
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestNewEngine_RequiresCatalog(t *testing.T) {
	_, err := NewEngine(WithStore(memory.New()))
	if err == nil {
		t.Fatal("expected error when catalog is nil")
	}
}

func TestAuthorize_DirectScope(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  unit.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed, got %s: %s", result.Reason, result.Detail)
	}
	if result.Verdict != VerdictAllow {
		t.Fatalf("expected verdict allow, got %s", result.Verdict)
	}
	if len(result.MatchedScopes) != 1 {
		t.Fatalf("expected 1 matched scope, got %d", len(result.MatchedScopes))
	}
}

func TestAuthorize_DenyNoPermission(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, _ := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  unit.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny without catalog grant")
	}
	if result.Reason != ReasonNoPermission {
		t.Fatalf("expected no_permission, got %s", result.Reason)
	}
}

func TestAuthorize_DenyNoScope(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  unit.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny without scope")
	}
	if result.Reason != ReasonNoScope {
		t.Fatalf("expected no_scope, got %s", result.Reason)
	}
}

func TestAuthorize_WildcardPermission(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.*")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  unit.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed via wildcard grant, got %s", result.Reason)
	}
}

func TestAuthorize_DescendantScope(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	dept := mkUnit(t, eng, ctx, "engineering", &root.ID)
	team := mkUnit(t, eng, ctx, "platform", &dept.ID)

	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: root.ID, IncludeDescendants: true})

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  team.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed via descendant-including scope, got %s", result.Reason)
	}
}

func TestAuthorize_AncestorScopeWithoutDescendants(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	team := mkUnit(t, eng, ctx, "platform", &root.ID)

	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: root.ID})

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  team.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny: ancestor scope does not include descendants")
	}
	if result.Reason != ReasonNoScope {
		t.Fatalf("expected no_scope, got %s", result.Reason)
	}
}

func TestAuthorize_InheritanceBlock(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	hr := mkUnit(t, eng, ctx, "hr", &root.ID)

	catalog.Grant("t1", "u1", "salary.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: root.ID, IncludeDescendants: true})

	if err := eng.SetInheritanceBlock(ctx, hr.ID, &orgunit.BlockConfig{
		BlockedPermissions: []string{"salary.read"},
	}); err != nil {
		t.Fatal(err)
	}

	// Inherited scope is cut off by the block.
	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "salary.read", OrgUnitID: hr.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny: permission blocked from inheritance")
	}
	if result.Reason != ReasonBlockedByInheritance {
		t.Fatalf("expected blocked_by_inheritance, got %s", result.Reason)
	}

	// A direct scope on the blocked unit survives.
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: hr.ID})
	result, err = eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "salary.read", OrgUnitID: hr.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed via direct scope, got %s", result.Reason)
	}
}

func TestAuthorize_BlockWildcard(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	hr := mkUnit(t, eng, ctx, "hr", &root.ID)

	catalog.Grant("t1", "u1", "salary.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: root.ID, IncludeDescendants: true})

	if err := eng.SetInheritanceBlock(ctx, hr.ID, &orgunit.BlockConfig{
		BlockedPermissions: []string{"salary.*"},
	}); err != nil {
		t.Fatal(err)
	}

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "salary.read", OrgUnitID: hr.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Reason != ReasonBlockedByInheritance {
		t.Fatalf("expected wildcard block to apply, got %s", result.Reason)
	}
}

func TestAuthorize_BlockAppliesToDescendants(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	dept := mkUnit(t, eng, ctx, "finance", &root.ID)
	team := mkUnit(t, eng, ctx, "payroll", &dept.ID)

	catalog.Grant("t1", "u1", "salary.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: root.ID, IncludeDescendants: true})

	// Block on the department reaches the team below it.
	if err := eng.SetInheritanceBlock(ctx, dept.ID, &orgunit.BlockConfig{
		BlockedPermissions:   []string{"salary.read"},
		AppliesToDescendants: true,
	}); err != nil {
		t.Fatal(err)
	}

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "salary.read", OrgUnitID: team.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Reason != ReasonBlockedByInheritance {
		t.Fatalf("expected descendant-reaching block to apply, got %s", result.Reason)
	}

	// Without AppliesToDescendants the same block only affects the unit itself.
	if err := eng.SetInheritanceBlock(ctx, dept.ID, &orgunit.BlockConfig{
		BlockedPermissions: []string{"salary.read"},
	}); err != nil {
		t.Fatal(err)
	}
	result, err = eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "salary.read", OrgUnitID: team.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed below non-propagating block, got %s", result.Reason)
	}
}

func TestAuthorize_RankFilter(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{
		UserID: "u1", OrgUnitID: unit.ID,
		MinViewableRank: intp(3), MaxViewableRank: intp(5),
	})

	manager := mkEmployee(t, eng, ctx, "m1", unit.ID, 4)
	senior := mkEmployee(t, eng, ctx, "m2", unit.ID, 2)

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID, EmployeeID: &manager.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected rank 4 admitted by [3,5], got %s", result.Reason)
	}

	result, err = eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID, EmployeeID: &senior.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny: rank 2 above window [3,5]")
	}
	if result.Reason != ReasonRankNotInRange {
		t.Fatalf("expected rank_not_in_range, got %s", result.Reason)
	}
}

func TestAuthorize_NonManagementWindow(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")

	// No max rank: the window covers only front-line employees.
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	frontline := mkEmployee(t, eng, ctx, "f1", unit.ID, 0)
	manager := mkEmployee(t, eng, ctx, "m1", unit.ID, 3)

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID, EmployeeID: &frontline.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected rank 0 admitted by non-management window, got %s", result.Reason)
	}

	result, err = eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID, EmployeeID: &manager.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny: management rank not admitted by non-management window")
	}
}

func TestAuthorize_SelfAccess(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	self := mkEmployee(t, eng, ctx, "u1", unit.ID, 0)

	granted := mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID, EmployeeID: &self.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny: self access is off by default")
	}
	if result.Reason != ReasonSelfAccessDenied {
		t.Fatalf("expected self_access_denied, got %s", result.Reason)
	}

	granted.AllowSelfAccess = true
	if err := eng.UpdateScope(ctx, "", granted); err != nil {
		t.Fatal(err)
	}
	result, err = eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID, EmployeeID: &self.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed with AllowSelfAccess, got %s", result.Reason)
	}
}

func TestAuthorize_TenantIsolation(t *testing.T) {
	ctx1 := WithTenant(context.Background(), "app1", "t1")
	ctx2 := WithTenant(context.Background(), "app1", "t2")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx1, "engineering", nil)
	catalog.Grant("t2", "u1", "employee.read")

	// The unit exists only in t1; t2 must not even learn that.
	_, err := eng.Authorize(ctx2, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID,
	})
	if !errors.Is(err, ErrUnitNotFound) {
		t.Fatalf("expected unit not found for foreign tenant, got %v", err)
	}
}

func TestAuthorize_DecisionUnavailable(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	s := memory.New()
	failing := CatalogFunc(func(_ context.Context, _, _, _ string) (bool, error) {
		return false, errors.New("catalog offline")
	})
	eng, err := NewEngine(WithStore(s), WithCatalog(failing))
	if err != nil {
		t.Fatal(err)
	}

	_, err = eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: id.NewOrgUnitID(),
	})
	if !errors.Is(err, ErrDecisionUnavailable) {
		t.Fatalf("expected ErrDecisionUnavailable, got %v", err)
	}
}

func TestAuthorize_WritesDecisionLog(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	if _, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID,
	}); err != nil {
		t.Fatal(err)
	}

	logs, err := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 decision log entry, got %d", len(logs))
	}
	if logs[0].Verdict != string(VerdictAllow) {
		t.Fatalf("expected allow verdict in log, got %s", logs[0].Verdict)
	}
	if logs[0].UserID != "u1" || logs[0].Permission != "employee.read" {
		t.Fatalf("unexpected log entry: %+v", logs[0])
	}
}

func TestAuthorize_DecisionLogDisabled(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	off := false
	eng, s, catalog := newTestEngine(t, WithConfig(Config{EnableDecisionLog: &off}))

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	if _, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID,
	}); err != nil {
		t.Fatal(err)
	}

	logs, err := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected no decision logs when disabled, got %d", len(logs))
	}
}

// fakeCache records Get/Set traffic so cache interaction can be asserted
// without importing the cache package.
type fakeCache struct {
	entries map[string]*AuthorizeResult
	hits    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string]*AuthorizeResult)} }

func (c *fakeCache) key(tenantID string, req *AuthorizeRequest) string {
	return tenantID + "|" + req.UserID + "|" + req.Permission + "|" + req.OrgUnitID.String()
}

func (c *fakeCache) Get(_ context.Context, tenantID string, req *AuthorizeRequest) (*AuthorizeResult, bool) {
	r, ok := c.entries[c.key(tenantID, req)]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *fakeCache) Set(_ context.Context, tenantID string, req *AuthorizeRequest, result *AuthorizeResult) {
	c.entries[c.key(tenantID, req)] = result
}

func (c *fakeCache) InvalidateTenant(_ context.Context, _ string) {
	c.entries = make(map[string]*AuthorizeResult)
}

func (c *fakeCache) InvalidateUser(_ context.Context, _, _ string) {
	c.entries = make(map[string]*AuthorizeResult)
}

func TestAuthorize_CacheHit(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	fc := newFakeCache()
	eng, _, catalog := newTestEngine(t, WithCache(fc))

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	req := &AuthorizeRequest{UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID}
	if _, err := eng.Authorize(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Authorize(ctx, req); err != nil {
		t.Fatal(err)
	}
	if fc.hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", fc.hits)
	}

	// A scope write for the user invalidates the cached result.
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID, AllowSelfAccess: true})
	if _, err := eng.Authorize(ctx, req); err != nil {
		t.Fatal(err)
	}
	if fc.hits != 1 {
		t.Fatalf("expected cache miss after invalidation, got %d hits", fc.hits)
	}
}

func TestEnforce(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	if err := eng.Enforce(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID,
	}); err != nil {
		t.Fatalf("expected no error for allowed request, got %v", err)
	}

	err := eng.Enforce(ctx, &AuthorizeRequest{
		UserID: "u2", Permission: "employee.read", OrgUnitID: unit.ID,
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestCanAccess(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: unit.ID})

	allowed, err := eng.CanAccess(ctx, "u1", "employee.read", unit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected allowed")
	}
}

func TestMoveUnit_CycleDetected(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, _ := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	dept := mkUnit(t, eng, ctx, "engineering", &root.ID)
	team := mkUnit(t, eng, ctx, "platform", &dept.ID)

	err := eng.MoveUnit(ctx, root.ID, &team.ID)
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
	if err := eng.MoveUnit(ctx, root.ID, &root.ID); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected for self-parent, got %v", err)
	}
}

func TestMoveUnit_SubtreeFollows(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	a := mkUnit(t, eng, ctx, "a", &root.ID)
	b := mkUnit(t, eng, ctx, "b", &root.ID)
	leaf := mkUnit(t, eng, ctx, "leaf", &a.ID)

	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: b.ID, IncludeDescendants: true})

	// Before the move, b's scope does not reach the leaf.
	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: leaf.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny before move")
	}

	if err := eng.MoveUnit(ctx, a.ID, &b.ID); err != nil {
		t.Fatal(err)
	}

	result, err = eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: leaf.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allowed after subtree moved under b, got %s", result.Reason)
	}
}

func TestDeleteUnit_Cascades(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s, catalog := newTestEngine(t)

	root := mkUnit(t, eng, ctx, "company", nil)
	dept := mkUnit(t, eng, ctx, "engineering", &root.ID)
	mkEmployee(t, eng, ctx, "e1", dept.ID, 0)
	catalog.Grant("t1", "u1", "employee.read")
	mkScope(t, eng, ctx, &scope.Assignment{UserID: "u1", OrgUnitID: dept.ID})

	if err := eng.DeleteUnit(ctx, root.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetUnit(ctx, dept.ID); !errors.Is(err, ErrUnitNotFound) {
		t.Fatalf("expected subtree unit deleted, got %v", err)
	}
	scopes, err := s.ScopesCovering(ctx, "t1", "u1", dept.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scopes) != 0 {
		t.Fatalf("expected cascaded scope deletion, got %d scopes", len(scopes))
	}
}

func TestCreateScope_PrivilegeEscalation(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, _ := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)

	// The actor may assign ranks 3..5 on the unit.
	mkScope(t, eng, ctx, &scope.Assignment{
		UserID: "actor", OrgUnitID: unit.ID,
		MinAssignableRank: intp(3), MaxAssignableRank: intp(5),
	})

	// Granting a window that reaches rank 1 exceeds the actor's ceiling.
	err := eng.CreateScope(ctx, "actor", &scope.Assignment{
		ID: id.NewScopeID(), UserID: "u2", OrgUnitID: unit.ID,
		MinViewableRank: intp(1), MaxViewableRank: intp(5),
	})
	if !errors.Is(err, ErrPrivilegeEscalation) {
		t.Fatalf("expected ErrPrivilegeEscalation, got %v", err)
	}

	// A window within the ceiling is fine.
	if err := eng.CreateScope(ctx, "actor", &scope.Assignment{
		ID: id.NewScopeID(), UserID: "u2", OrgUnitID: unit.ID,
		MinViewableRank: intp(3), MaxViewableRank: intp(4),
	}); err != nil {
		t.Fatalf("expected create within ceiling to succeed, got %v", err)
	}

	// An actor with no assignable range cannot grant management windows.
	err = eng.CreateScope(ctx, "bystander", &scope.Assignment{
		ID: id.NewScopeID(), UserID: "u3", OrgUnitID: unit.ID,
		MaxViewableRank: intp(5),
	})
	if !errors.Is(err, ErrPrivilegeEscalation) {
		t.Fatalf("expected ErrPrivilegeEscalation for scopeless actor, got %v", err)
	}
}

func TestCreateScope_NonManagementWindowUnguarded(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, _ := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)

	// A scope granting only front-line visibility carries no seniority, so
	// any actor may create it.
	if err := eng.CreateScope(ctx, "actor", &scope.Assignment{
		ID: id.NewScopeID(), UserID: "u2", OrgUnitID: unit.ID,
	}); err != nil {
		t.Fatalf("expected non-management scope to pass the guard, got %v", err)
	}
}

func TestAssignRank(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s, _ := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	emp := mkEmployee(t, eng, ctx, "e1", unit.ID, 0)

	mkScope(t, eng, ctx, &scope.Assignment{
		UserID: "actor", OrgUnitID: unit.ID,
		MinAssignableRank: intp(3), MaxAssignableRank: intp(5),
	})

	if err := eng.AssignRank(ctx, "actor", emp.ID, 4); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetEmployee(ctx, emp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ManagementLevel != 4 {
		t.Fatalf("expected rank 4, got %d", got.ManagementLevel)
	}

	// Rank 2 is above the actor's window.
	if err := eng.AssignRank(ctx, "actor", emp.ID, 2); !errors.Is(err, ErrRankNotAssignable) {
		t.Fatalf("expected ErrRankNotAssignable, got %v", err)
	}

	// Demotion to 0 requires coverage of the employee's current rank,
	// which the actor's [3,5] window provides for rank 4.
	if err := eng.AssignRank(ctx, "actor", emp.ID, 0); err != nil {
		t.Fatal(err)
	}
}

func TestAssignRank_DemotionGuard(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, _ := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	emp := mkEmployee(t, eng, ctx, "e1", unit.ID, 2)

	mkScope(t, eng, ctx, &scope.Assignment{
		UserID: "actor", OrgUnitID: unit.ID,
		MinAssignableRank: intp(3), MaxAssignableRank: intp(5),
	})

	// The employee holds rank 2, which the actor could never have
	// assigned, so the actor cannot demote them either.
	if err := eng.AssignRank(ctx, "actor", emp.ID, 0); !errors.Is(err, ErrRankNotAssignable) {
		t.Fatalf("expected ErrRankNotAssignable for demotion, got %v", err)
	}
}

func TestAssignRank_SystemActor(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, _ := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	emp := mkEmployee(t, eng, ctx, "e1", unit.ID, 0)

	// An empty actor is a trusted system caller and bypasses the guard.
	if err := eng.AssignRank(ctx, "", emp.ID, 1); err != nil {
		t.Fatal(err)
	}

	if err := eng.AssignRank(ctx, "", emp.ID, 300); !errors.Is(err, ErrInvalidRank) {
		t.Fatalf("expected ErrInvalidRank, got %v", err)
	}
}

func TestCreateEmployee_DuplicateUser(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, _ := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	mkEmployee(t, eng, ctx, "e1", unit.ID, 0)

	err := eng.CreateEmployee(ctx, &employee.Employee{
		ID: id.NewEmployeeID(), UserID: "e1", OrgUnitID: unit.ID,
	})
	if !errors.Is(err, ErrEmployeeExists) {
		t.Fatalf("expected ErrEmployeeExists, got %v", err)
	}
}

func TestAuthorize_EvalTime(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _, catalog := newTestEngine(t)

	unit := mkUnit(t, eng, ctx, "engineering", nil)
	catalog.Grant("t1", "u1", "employee.read")

	result, err := eng.Authorize(ctx, &AuthorizeRequest{
		UserID: "u1", Permission: "employee.read", OrgUnitID: unit.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.EvalTimeNs <= 0 {
		t.Fatal("expected positive eval time")
	}
}
