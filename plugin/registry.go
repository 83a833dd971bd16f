package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeAuthorizeEntry struct {
	name string
	hook BeforeAuthorize
}
type afterAuthorizeEntry struct {
	name string
	hook AfterAuthorize
}
type unitCreatedEntry struct {
	name string
	hook UnitCreated
}
type unitMovedEntry struct {
	name string
	hook UnitMoved
}
type unitDeletedEntry struct {
	name string
	hook UnitDeleted
}
type blockConfiguredEntry struct {
	name string
	hook BlockConfigured
}
type scopeCreatedEntry struct {
	name string
	hook ScopeCreated
}
type scopeUpdatedEntry struct {
	name string
	hook ScopeUpdated
}
type scopeDeletedEntry struct {
	name string
	hook ScopeDeleted
}
type employeeCreatedEntry struct {
	name string
	hook EmployeeCreated
}
type rankAssignedEntry struct {
	name string
	hook RankAssigned
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeAuthorize []beforeAuthorizeEntry
	afterAuthorize  []afterAuthorizeEntry
	unitCreated     []unitCreatedEntry
	unitMoved       []unitMovedEntry
	unitDeleted     []unitDeletedEntry
	blockConfigured []blockConfiguredEntry
	scopeCreated    []scopeCreatedEntry
	scopeUpdated    []scopeUpdatedEntry
	scopeDeleted    []scopeDeletedEntry
	employeeCreated []employeeCreatedEntry
	rankAssigned    []rankAssignedEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeAuthorize); ok {
		r.beforeAuthorize = append(r.beforeAuthorize, beforeAuthorizeEntry{name, h})
	}
	if h, ok := p.(AfterAuthorize); ok {
		r.afterAuthorize = append(r.afterAuthorize, afterAuthorizeEntry{name, h})
	}
	if h, ok := p.(UnitCreated); ok {
		r.unitCreated = append(r.unitCreated, unitCreatedEntry{name, h})
	}
	if h, ok := p.(UnitMoved); ok {
		r.unitMoved = append(r.unitMoved, unitMovedEntry{name, h})
	}
	if h, ok := p.(UnitDeleted); ok {
		r.unitDeleted = append(r.unitDeleted, unitDeletedEntry{name, h})
	}
	if h, ok := p.(BlockConfigured); ok {
		r.blockConfigured = append(r.blockConfigured, blockConfiguredEntry{name, h})
	}
	if h, ok := p.(ScopeCreated); ok {
		r.scopeCreated = append(r.scopeCreated, scopeCreatedEntry{name, h})
	}
	if h, ok := p.(ScopeUpdated); ok {
		r.scopeUpdated = append(r.scopeUpdated, scopeUpdatedEntry{name, h})
	}
	if h, ok := p.(ScopeDeleted); ok {
		r.scopeDeleted = append(r.scopeDeleted, scopeDeletedEntry{name, h})
	}
	if h, ok := p.(EmployeeCreated); ok {
		r.employeeCreated = append(r.employeeCreated, employeeCreatedEntry{name, h})
	}
	if h, ok := p.(RankAssigned); ok {
		r.rankAssigned = append(r.rankAssigned, rankAssignedEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Decision event emitters
// ──────────────────────────────────────────────────

// EmitBeforeAuthorize notifies all plugins that implement BeforeAuthorize.
func (r *Registry) EmitBeforeAuthorize(ctx context.Context, req any) {
	for _, e := range r.beforeAuthorize {
		if err := e.hook.OnBeforeAuthorize(ctx, req); err != nil {
			r.logHookError("OnBeforeAuthorize", e.name, err)
		}
	}
}

// EmitAfterAuthorize notifies all plugins that implement AfterAuthorize.
func (r *Registry) EmitAfterAuthorize(ctx context.Context, req, result any) {
	for _, e := range r.afterAuthorize {
		if err := e.hook.OnAfterAuthorize(ctx, req, result); err != nil {
			r.logHookError("OnAfterAuthorize", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Hierarchy event emitters
// ──────────────────────────────────────────────────

// EmitUnitCreated notifies all plugins that implement UnitCreated.
func (r *Registry) EmitUnitCreated(ctx context.Context, u *orgunit.Unit) {
	for _, e := range r.unitCreated {
		if err := e.hook.OnUnitCreated(ctx, u); err != nil {
			r.logHookError("OnUnitCreated", e.name, err)
		}
	}
}

// EmitUnitMoved notifies all plugins that implement UnitMoved.
func (r *Registry) EmitUnitMoved(ctx context.Context, unitID id.OrgUnitID, newParentID *id.OrgUnitID) {
	for _, e := range r.unitMoved {
		if err := e.hook.OnUnitMoved(ctx, unitID, newParentID); err != nil {
			r.logHookError("OnUnitMoved", e.name, err)
		}
	}
}

// EmitUnitDeleted notifies all plugins that implement UnitDeleted.
func (r *Registry) EmitUnitDeleted(ctx context.Context, unitID id.OrgUnitID) {
	for _, e := range r.unitDeleted {
		if err := e.hook.OnUnitDeleted(ctx, unitID); err != nil {
			r.logHookError("OnUnitDeleted", e.name, err)
		}
	}
}

// EmitBlockConfigured notifies all plugins that implement BlockConfigured.
func (r *Registry) EmitBlockConfigured(ctx context.Context, unitID id.OrgUnitID, cfg *orgunit.BlockConfig) {
	for _, e := range r.blockConfigured {
		if err := e.hook.OnBlockConfigured(ctx, unitID, cfg); err != nil {
			r.logHookError("OnBlockConfigured", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Scope event emitters
// ──────────────────────────────────────────────────

// EmitScopeCreated notifies all plugins that implement ScopeCreated.
func (r *Registry) EmitScopeCreated(ctx context.Context, a *scope.Assignment) {
	for _, e := range r.scopeCreated {
		if err := e.hook.OnScopeCreated(ctx, a); err != nil {
			r.logHookError("OnScopeCreated", e.name, err)
		}
	}
}

// EmitScopeUpdated notifies all plugins that implement ScopeUpdated.
func (r *Registry) EmitScopeUpdated(ctx context.Context, a *scope.Assignment) {
	for _, e := range r.scopeUpdated {
		if err := e.hook.OnScopeUpdated(ctx, a); err != nil {
			r.logHookError("OnScopeUpdated", e.name, err)
		}
	}
}

// EmitScopeDeleted notifies all plugins that implement ScopeDeleted.
func (r *Registry) EmitScopeDeleted(ctx context.Context, scopeID id.ScopeID) {
	for _, e := range r.scopeDeleted {
		if err := e.hook.OnScopeDeleted(ctx, scopeID); err != nil {
			r.logHookError("OnScopeDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Employee event emitters
// ──────────────────────────────────────────────────

// EmitEmployeeCreated notifies all plugins that implement EmployeeCreated.
func (r *Registry) EmitEmployeeCreated(ctx context.Context, emp *employee.Employee) {
	for _, e := range r.employeeCreated {
		if err := e.hook.OnEmployeeCreated(ctx, emp); err != nil {
			r.logHookError("OnEmployeeCreated", e.name, err)
		}
	}
}

// EmitRankAssigned notifies all plugins that implement RankAssigned.
func (r *Registry) EmitRankAssigned(ctx context.Context, emp *employee.Employee, previousRank int) {
	for _, e := range r.rankAssigned {
		if err := e.hook.OnRankAssigned(ctx, emp, previousRank); err != nil {
			r.logHookError("OnRankAssigned", e.name, err)
		}
	}
}

func (r *Registry) logHookError(hook, plugin string, err error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("steward: plugin hook failed",
		"hook", hook, "plugin", plugin, "error", err)
}
