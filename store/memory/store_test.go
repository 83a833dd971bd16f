package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
	"github.com/xraph/steward/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

// buildTree creates holding -> branch -> {division, team} under tenant t1
// and returns the four units.
func buildTree(t *testing.T, s *Store) (holding, branch, division, team *orgunit.Unit) {
	t.Helper()
	ctx := context.Background()

	holding = &orgunit.Unit{ID: id.NewOrgUnitID(), TenantID: "t1", AppID: "app1", Name: "Holding"}
	if err := s.CreateUnit(ctx, holding); err != nil {
		t.Fatal(err)
	}
	branch = &orgunit.Unit{ID: id.NewOrgUnitID(), TenantID: "t1", AppID: "app1", Name: "Branch", ParentID: &holding.ID}
	if err := s.CreateUnit(ctx, branch); err != nil {
		t.Fatal(err)
	}
	division = &orgunit.Unit{ID: id.NewOrgUnitID(), TenantID: "t1", AppID: "app1", Name: "Division", ParentID: &branch.ID}
	if err := s.CreateUnit(ctx, division); err != nil {
		t.Fatal(err)
	}
	team = &orgunit.Unit{ID: id.NewOrgUnitID(), TenantID: "t1", AppID: "app1", Name: "Team", ParentID: &branch.ID}
	if err := s.CreateUnit(ctx, team); err != nil {
		t.Fatal(err)
	}
	return holding, branch, division, team
}

func TestUnitCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &orgunit.Unit{
		ID:       id.NewOrgUnitID(),
		TenantID: "t1",
		AppID:    "app1",
		Name:     "Engineering",
		Type:     "division",
	}
	if err := s.CreateUnit(ctx, u); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetUnit(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Engineering" {
		t.Fatalf("expected Engineering, got %s", got.Name)
	}

	u.Name = "Platform Engineering"
	if err := s.UpdateUnit(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUnit(ctx, u.ID)
	if got.Name != "Platform Engineering" {
		t.Fatal("update failed")
	}

	list, _ := s.ListUnits(ctx, &orgunit.ListFilter{TenantID: "t1"})
	if len(list) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(list))
	}
	count, _ := s.CountUnits(ctx, &orgunit.ListFilter{TenantID: "t1"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	if err := s.DeleteUnit(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetUnit(ctx, u.ID); !errors.Is(err, orgunit.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestClosureOnCreate(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, branch, division, _ := buildTree(t, s)

	anc, err := s.Ancestors(ctx, "t1", division.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(anc) != 2 {
		t.Fatalf("expected 2 ancestors, got %d", len(anc))
	}
	if anc[0].AncestorID.String() != branch.ID.String() || anc[0].Depth != 1 {
		t.Fatalf("expected branch at depth 1, got %s depth %d", anc[0].AncestorID, anc[0].Depth)
	}
	if anc[1].AncestorID.String() != holding.ID.String() || anc[1].Depth != 2 {
		t.Fatalf("expected holding at depth 2, got %s depth %d", anc[1].AncestorID, anc[1].Depth)
	}

	desc, err := s.Descendants(ctx, "t1", holding.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(desc) != 3 {
		t.Fatalf("expected 3 descendants, got %d", len(desc))
	}

	ok, err := s.IsDescendant(ctx, "t1", holding.ID, division.ID)
	if err != nil || !ok {
		t.Fatalf("division should be a descendant of holding: ok=%v err=%v", ok, err)
	}
	ok, _ = s.IsDescendant(ctx, "t1", division.ID, holding.ID)
	if ok {
		t.Fatal("holding must not be a descendant of division")
	}
	// Self pairs are not proper descendants.
	ok, _ = s.IsDescendant(ctx, "t1", holding.ID, holding.ID)
	if ok {
		t.Fatal("a unit must not be its own descendant")
	}
}

func TestMoveUnitRewritesClosure(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, branch, division, team := buildTree(t, s)

	// Hang a child off division so the moved subtree has depth.
	leaf := &orgunit.Unit{ID: id.NewOrgUnitID(), TenantID: "t1", AppID: "app1", Name: "Leaf", ParentID: &division.ID}
	if err := s.CreateUnit(ctx, leaf); err != nil {
		t.Fatal(err)
	}

	// Move division (with leaf) under team.
	if err := s.MoveUnit(ctx, "t1", division.ID, &team.ID); err != nil {
		t.Fatal(err)
	}

	anc, err := s.Ancestors(ctx, "t1", leaf.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		id    string
		depth int
	}{
		{division.ID.String(), 1},
		{team.ID.String(), 2},
		{branch.ID.String(), 3},
		{holding.ID.String(), 4},
	}
	if len(anc) != len(want) {
		t.Fatalf("expected %d ancestors, got %d", len(want), len(anc))
	}
	for i, w := range want {
		if anc[i].AncestorID.String() != w.id || anc[i].Depth != w.depth {
			t.Fatalf("ancestor %d: got %s depth %d, want %s depth %d",
				i, anc[i].AncestorID, anc[i].Depth, w.id, w.depth)
		}
	}

	got, _ := s.GetUnit(ctx, division.ID)
	if got.ParentID == nil || got.ParentID.String() != team.ID.String() {
		t.Fatal("parent pointer not updated")
	}
}

func TestMoveUnitToRoot(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, branch, _, _ := buildTree(t, s)

	if err := s.MoveUnit(ctx, "t1", branch.ID, nil); err != nil {
		t.Fatal(err)
	}
	anc, _ := s.Ancestors(ctx, "t1", branch.ID)
	if len(anc) != 0 {
		t.Fatalf("root must have no ancestors, got %d", len(anc))
	}
	desc, _ := s.Descendants(ctx, "t1", holding.ID)
	if len(desc) != 0 {
		t.Fatalf("holding must have no descendants after the move, got %d", len(desc))
	}
	got, _ := s.GetUnit(ctx, branch.ID)
	if got.ParentID != nil {
		t.Fatal("parent pointer should be nil")
	}
}

func TestMoveUnitCycleDetection(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, branch, division, _ := buildTree(t, s)

	err := s.MoveUnit(ctx, "t1", holding.ID, &division.ID)
	if !errors.Is(err, orgunit.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
	err = s.MoveUnit(ctx, "t1", branch.ID, &branch.ID)
	if !errors.Is(err, orgunit.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected for self-parent, got %v", err)
	}

	// The failed moves must not have touched the hierarchy.
	anc, _ := s.Ancestors(ctx, "t1", division.ID)
	if len(anc) != 2 {
		t.Fatalf("hierarchy mutated by rejected move: %d ancestors", len(anc))
	}
}

func TestDeleteUnitCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, branch, division, team := buildTree(t, s)

	sc := &scope.Assignment{
		ID: id.NewScopeID(), TenantID: "t1", AppID: "app1",
		UserID: "u1", OrgUnitID: division.ID,
	}
	if err := s.CreateScope(ctx, sc); err != nil {
		t.Fatal(err)
	}
	emp := &employee.Employee{
		ID: id.NewEmployeeID(), TenantID: "t1", AppID: "app1",
		UserID: "u2", OrgUnitID: division.ID,
	}
	if err := s.CreateEmployee(ctx, emp); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteUnit(ctx, branch.ID); err != nil {
		t.Fatal(err)
	}
	for _, uid := range []id.OrgUnitID{branch.ID, division.ID, team.ID} {
		if _, err := s.GetUnit(ctx, uid); !errors.Is(err, orgunit.ErrNotFound) {
			t.Fatalf("unit %s should be gone, got %v", uid, err)
		}
	}
	if _, err := s.GetScope(ctx, sc.ID); !errors.Is(err, scope.ErrNotFound) {
		t.Fatal("scope bound to deleted subtree should be gone")
	}
	if _, err := s.GetEmployee(ctx, emp.ID); !errors.Is(err, employee.ErrNotFound) {
		t.Fatal("employee in deleted subtree should be gone")
	}
}

func TestScopesCovering(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, branch, division, team := buildTree(t, s)

	direct := &scope.Assignment{
		ID: id.NewScopeID(), TenantID: "t1", AppID: "app1",
		UserID: "mgr", OrgUnitID: division.ID,
	}
	inherited := &scope.Assignment{
		ID: id.NewScopeID(), TenantID: "t1", AppID: "app1",
		UserID: "mgr", OrgUnitID: holding.ID, IncludeDescendants: true,
	}
	nonRecursive := &scope.Assignment{
		ID: id.NewScopeID(), TenantID: "t1", AppID: "app1",
		UserID: "mgr", OrgUnitID: branch.ID, IncludeDescendants: false,
	}
	otherUser := &scope.Assignment{
		ID: id.NewScopeID(), TenantID: "t1", AppID: "app1",
		UserID: "other", OrgUnitID: division.ID,
	}
	for _, a := range []*scope.Assignment{direct, inherited, nonRecursive, otherUser} {
		if err := s.CreateScope(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	covering, err := s.ScopesCovering(ctx, "t1", "mgr", division.ID)
	if err != nil {
		t.Fatal(err)
	}
	ids := make(map[string]bool, len(covering))
	for _, a := range covering {
		ids[a.ID.String()] = true
	}
	if len(covering) != 2 || !ids[direct.ID.String()] || !ids[inherited.ID.String()] {
		t.Fatalf("expected direct + inherited scopes, got %d: %v", len(covering), ids)
	}

	// A non-recursive scope on the unit itself still covers it.
	covering, _ = s.ScopesCovering(ctx, "t1", "mgr", branch.ID)
	if len(covering) != 2 { // nonRecursive (direct) + inherited from holding
		t.Fatalf("expected 2 covering scopes on branch, got %d", len(covering))
	}

	covering, _ = s.ScopesCovering(ctx, "t1", "mgr", team.ID)
	if len(covering) != 1 || covering[0].ID.String() != inherited.ID.String() {
		t.Fatalf("only the holding-wide scope should cover team, got %d", len(covering))
	}
}

func TestScopeCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, _, _, _ := buildTree(t, s)

	maxV := 5
	a := &scope.Assignment{
		ID: id.NewScopeID(), TenantID: "t1", AppID: "app1",
		UserID: "u1", OrgUnitID: holding.ID,
		MaxViewableRank: &maxV,
	}
	if err := s.CreateScope(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetScope(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxViewableRank == nil || *got.MaxViewableRank != 5 {
		t.Fatal("rank window not persisted")
	}

	// Stored copy must be isolated from caller mutation.
	*a.MaxViewableRank = 99
	got, _ = s.GetScope(ctx, a.ID)
	if *got.MaxViewableRank != 5 {
		t.Fatal("stored scope aliases caller memory")
	}

	a2, _ := s.GetScope(ctx, a.ID)
	a2.Reason = "coverage"
	if err := s.UpdateScope(ctx, a2); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetScope(ctx, a.ID)
	if got.Reason != "coverage" {
		t.Fatal("update failed")
	}

	count, _ := s.CountScopes(ctx, &scope.ListFilter{TenantID: "t1"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	if err := s.DeleteScope(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetScope(ctx, a.ID); !errors.Is(err, scope.ErrNotFound) {
		t.Fatal("expected not found after delete")
	}
}

func TestEmployeeCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, _, _, _ := buildTree(t, s)

	e := &employee.Employee{
		ID: id.NewEmployeeID(), TenantID: "t1", AppID: "app1",
		UserID: "u1", OrgUnitID: holding.ID,
		DisplayName: "Dana", ManagementLevel: 2,
	}
	if err := s.CreateEmployee(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetEmployeeByUser(ctx, "t1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != e.ID.String() {
		t.Fatal("user lookup mismatch")
	}
	if _, err := s.GetEmployeeByUser(ctx, "t2", "u1"); !errors.Is(err, employee.ErrNotFound) {
		t.Fatal("lookup must be tenant scoped")
	}

	e.ManagementLevel = 3
	if err := s.UpdateEmployee(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetEmployee(ctx, e.ID)
	if got.ManagementLevel != 3 {
		t.Fatal("update failed")
	}

	list, _ := s.ListEmployees(ctx, &employee.ListFilter{TenantID: "t1", Search: "dana"})
	if len(list) != 1 {
		t.Fatalf("expected 1 employee by search, got %d", len(list))
	}

	if err := s.DeleteEmployee(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEmployee(ctx, e.ID); !errors.Is(err, employee.ErrNotFound) {
		t.Fatal("expected not found after delete")
	}
}

func TestDecisionLogPurge(t *testing.T) {
	ctx := context.Background()
	s := New()

	old := &decisionlog.Entry{
		ID: id.NewDecisionLogID(), TenantID: "t1", AppID: "app1",
		UserID: "u1", Permission: "employee.read", OrgUnitID: id.NewOrgUnitID(),
		Verdict: "deny", Reason: "no_scope",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	fresh := &decisionlog.Entry{
		ID: id.NewDecisionLogID(), TenantID: "t1", AppID: "app1",
		UserID: "u1", Permission: "employee.read", OrgUnitID: id.NewOrgUnitID(),
		Verdict: "allow",
		CreatedAt: time.Now(),
	}
	for _, e := range []*decisionlog.Entry{old, fresh} {
		if err := s.CreateDecisionLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	purged, err := s.PurgeDecisionLogs(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged entry, got %d", purged)
	}
	if _, err := s.GetDecisionLog(ctx, fresh.ID); err != nil {
		t.Fatal("fresh entry should survive the purge")
	}

	list, _ := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{TenantID: "t1", Verdict: "allow"})
	if len(list) != 1 {
		t.Fatalf("expected 1 allow entry, got %d", len(list))
	}
}

func TestCrossTenantHierarchyIsInvisible(t *testing.T) {
	ctx := context.Background()
	s := New()
	holding, _, _, _ := buildTree(t, s)

	if _, err := s.Ancestors(ctx, "t2", holding.ID); !errors.Is(err, orgunit.ErrNotFound) {
		t.Fatalf("cross-tenant ancestor query must report not found, got %v", err)
	}
	ok, _ := s.IsDescendant(ctx, "t2", holding.ID, holding.ID)
	if ok {
		t.Fatal("cross-tenant descendant check must be false")
	}
}
