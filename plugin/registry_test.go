package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
)

// testPlugin implements every hook and counts invocations.
type testPlugin struct {
	name string
	err  error

	beforeAuthorize int
	afterAuthorize  int
	unitCreated     int
	unitMoved       int
	unitDeleted     int
	blockConfigured int
	scopeCreated    int
	scopeUpdated    int
	scopeDeleted    int
	employeeCreated int
	rankAssigned    int

	lastPreviousRank int
}

func (p *testPlugin) Name() string { return p.name }

func (p *testPlugin) OnBeforeAuthorize(ctx context.Context, req any) error {
	p.beforeAuthorize++
	return p.err
}

func (p *testPlugin) OnAfterAuthorize(ctx context.Context, req, result any) error {
	p.afterAuthorize++
	return p.err
}

func (p *testPlugin) OnUnitCreated(ctx context.Context, u *orgunit.Unit) error {
	p.unitCreated++
	return p.err
}

func (p *testPlugin) OnUnitMoved(ctx context.Context, unitID id.OrgUnitID, newParentID *id.OrgUnitID) error {
	p.unitMoved++
	return p.err
}

func (p *testPlugin) OnUnitDeleted(ctx context.Context, unitID id.OrgUnitID) error {
	p.unitDeleted++
	return p.err
}

func (p *testPlugin) OnBlockConfigured(ctx context.Context, unitID id.OrgUnitID, cfg *orgunit.BlockConfig) error {
	p.blockConfigured++
	return p.err
}

func (p *testPlugin) OnScopeCreated(ctx context.Context, a *scope.Assignment) error {
	p.scopeCreated++
	return p.err
}

func (p *testPlugin) OnScopeUpdated(ctx context.Context, a *scope.Assignment) error {
	p.scopeUpdated++
	return p.err
}

func (p *testPlugin) OnScopeDeleted(ctx context.Context, scopeID id.ScopeID) error {
	p.scopeDeleted++
	return p.err
}

func (p *testPlugin) OnEmployeeCreated(ctx context.Context, e *employee.Employee) error {
	p.employeeCreated++
	return p.err
}

func (p *testPlugin) OnRankAssigned(ctx context.Context, e *employee.Employee, previousRank int) error {
	p.rankAssigned++
	p.lastPreviousRank = previousRank
	return p.err
}

// minimalPlugin implements only the base interface.
type minimalPlugin struct{}

func (minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatchesAllHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)

	p := &testPlugin{name: "counter"}
	r.Register(p)
	r.Register(minimalPlugin{})

	if got := len(r.Plugins()); got != 2 {
		t.Fatalf("Plugins() = %d, want 2", got)
	}

	unitID := id.NewOrgUnitID()
	parentID := id.NewOrgUnitID()
	scopeID := id.NewScopeID()

	r.EmitBeforeAuthorize(ctx, nil)
	r.EmitAfterAuthorize(ctx, nil, nil)
	r.EmitUnitCreated(ctx, &orgunit.Unit{ID: unitID})
	r.EmitUnitMoved(ctx, unitID, &parentID)
	r.EmitUnitDeleted(ctx, unitID)
	r.EmitBlockConfigured(ctx, unitID, &orgunit.BlockConfig{})
	r.EmitScopeCreated(ctx, &scope.Assignment{})
	r.EmitScopeUpdated(ctx, &scope.Assignment{})
	r.EmitScopeDeleted(ctx, scopeID)
	r.EmitEmployeeCreated(ctx, &employee.Employee{})
	r.EmitRankAssigned(ctx, &employee.Employee{ManagementLevel: 3}, 5)

	counts := map[string]int{
		"beforeAuthorize": p.beforeAuthorize,
		"afterAuthorize":  p.afterAuthorize,
		"unitCreated":     p.unitCreated,
		"unitMoved":       p.unitMoved,
		"unitDeleted":     p.unitDeleted,
		"blockConfigured": p.blockConfigured,
		"scopeCreated":    p.scopeCreated,
		"scopeUpdated":    p.scopeUpdated,
		"scopeDeleted":    p.scopeDeleted,
		"employeeCreated": p.employeeCreated,
		"rankAssigned":    p.rankAssigned,
	}
	for hook, n := range counts {
		if n != 1 {
			t.Errorf("%s fired %d times, want 1", hook, n)
		}
	}
	if p.lastPreviousRank != 5 {
		t.Errorf("previousRank = %d, want 5", p.lastPreviousRank)
	}
}

func TestRegistryHookErrorDoesNotStopDispatch(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)

	failing := &testPlugin{name: "failing", err: errors.New("boom")}
	healthy := &testPlugin{name: "healthy"}
	r.Register(failing)
	r.Register(healthy)

	r.EmitUnitCreated(ctx, &orgunit.Unit{ID: id.NewOrgUnitID()})

	if failing.unitCreated != 1 {
		t.Errorf("failing plugin fired %d times, want 1", failing.unitCreated)
	}
	if healthy.unitCreated != 1 {
		t.Errorf("healthy plugin fired %d times, want 1 despite earlier error", healthy.unitCreated)
	}
}

func TestRegistryIgnoresUnimplementedHooks(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(minimalPlugin{})

	if len(r.beforeAuthorize) != 0 || len(r.unitCreated) != 0 || len(r.rankAssigned) != 0 {
		t.Error("minimal plugin should not be cached in any hook slice")
	}
}
