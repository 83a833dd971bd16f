// Package memory provides an in-memory implementation of the Steward
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
)

// Compile-time interface checks.
var (
	_ orgunit.Store     = (*Store)(nil)
	_ scope.Store       = (*Store)(nil)
	_ employee.Store    = (*Store)(nil)
	_ decisionlog.Store = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Steward entities.
// The closure relation is kept in both directions so ancestor-chain and
// subtree queries are single map lookups.
type Store struct {
	mu sync.RWMutex

	units        map[string]*orgunit.Unit
	closureDown  map[string]map[string]int // ancestor -> descendant -> depth
	closureUp    map[string]map[string]int // descendant -> ancestor -> depth
	scopes       map[string]*scope.Assignment
	employees    map[string]*employee.Employee
	decisionLogs map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		units:        make(map[string]*orgunit.Unit),
		closureDown:  make(map[string]map[string]int),
		closureUp:    make(map[string]map[string]int),
		scopes:       make(map[string]*scope.Assignment),
		employees:    make(map[string]*employee.Employee),
		decisionLogs: make(map[string]*decisionlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// OrgUnit Store
// ──────────────────────────────────────────────────

func (s *Store) CreateUnit(_ context.Context, u *orgunit.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uk := u.ID.String()
	if u.ParentID != nil {
		pk := u.ParentID.String()
		parent, ok := s.units[pk]
		if !ok {
			return fmt.Errorf("parent unit %s: %w", pk, orgunit.ErrNotFound)
		}
		if parent.TenantID != u.TenantID {
			return fmt.Errorf("parent unit %s: %w", pk, orgunit.ErrNotFound)
		}
	}
	s.units[uk] = copyUnit(u)
	s.insertClosure(uk, uk, 0)
	if u.ParentID != nil {
		// Parent's ancestor chain includes the parent itself at depth 0.
		for anc, d := range s.closureUp[u.ParentID.String()] {
			s.insertClosure(anc, uk, d+1)
		}
	}
	return nil
}

func (s *Store) GetUnit(_ context.Context, unitID id.OrgUnitID) (*orgunit.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[unitID.String()]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	return copyUnit(u), nil
}

func (s *Store) UpdateUnit(_ context.Context, u *orgunit.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.units[u.ID.String()]
	if !ok {
		return fmt.Errorf("unit %s: %w", u.ID, orgunit.ErrNotFound)
	}
	c := copyUnit(u)
	// Reparenting goes through MoveUnit; keep the stored parent.
	c.ParentID = existing.ParentID
	s.units[u.ID.String()] = c
	return nil
}

func (s *Store) DeleteUnit(_ context.Context, unitID id.OrgUnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uk := unitID.String()
	if _, ok := s.units[uk]; !ok {
		return fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	subtree := make(map[string]struct{})
	for desc := range s.closureDown[uk] {
		subtree[desc] = struct{}{}
	}
	for member := range subtree {
		s.removeUnitLocked(member)
	}
	return nil
}

// removeUnitLocked deletes one unit, its closure rows in both directions,
// and the scopes and employees bound to it. Caller holds the write lock.
func (s *Store) removeUnitLocked(uk string) {
	delete(s.units, uk)
	for anc := range s.closureUp[uk] {
		delete(s.closureDown[anc], uk)
	}
	for desc := range s.closureDown[uk] {
		delete(s.closureUp[desc], uk)
	}
	delete(s.closureUp, uk)
	delete(s.closureDown, uk)
	for k, a := range s.scopes {
		if a.OrgUnitID.String() == uk {
			delete(s.scopes, k)
		}
	}
	for k, e := range s.employees {
		if e.OrgUnitID.String() == uk {
			delete(s.employees, k)
		}
	}
}

func (s *Store) ListUnits(_ context.Context, filter *orgunit.ListFilter) ([]*orgunit.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*orgunit.Unit, 0, len(s.units))
	for _, u := range s.units {
		if filter != nil {
			if filter.TenantID != "" && u.TenantID != filter.TenantID {
				continue
			}
			if filter.ParentID != nil {
				if u.ParentID == nil || u.ParentID.String() != filter.ParentID.String() {
					continue
				}
			}
			if filter.Type != "" && u.Type != filter.Type {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyUnit(u))
	}
	var limit, offset int
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountUnits(ctx context.Context, filter *orgunit.ListFilter) (int64, error) {
	f := unpaginated(filter)
	list, err := s.ListUnits(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) SetInheritanceBlock(_ context.Context, unitID id.OrgUnitID, cfg *orgunit.BlockConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID.String()]
	if !ok {
		return fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	u.Block = copyBlock(cfg)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) Ancestors(_ context.Context, tenantID string, unitID id.OrgUnitID) ([]orgunit.ClosureEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uk := unitID.String()
	u, ok := s.units[uk]
	if !ok || u.TenantID != tenantID {
		return nil, fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	var entries []orgunit.ClosureEntry
	for anc, d := range s.closureUp[uk] {
		if d == 0 {
			continue
		}
		ancID, err := id.ParseOrgUnitID(anc)
		if err != nil {
			continue
		}
		entries = append(entries, orgunit.ClosureEntry{
			AncestorID:   ancID,
			DescendantID: unitID,
			Depth:        d,
		})
	}
	sortByDepth(entries)
	return entries, nil
}

func (s *Store) Descendants(_ context.Context, tenantID string, unitID id.OrgUnitID) ([]orgunit.ClosureEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uk := unitID.String()
	u, ok := s.units[uk]
	if !ok || u.TenantID != tenantID {
		return nil, fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	var entries []orgunit.ClosureEntry
	for desc, d := range s.closureDown[uk] {
		if d == 0 {
			continue
		}
		descID, err := id.ParseOrgUnitID(desc)
		if err != nil {
			continue
		}
		entries = append(entries, orgunit.ClosureEntry{
			AncestorID:   unitID,
			DescendantID: descID,
			Depth:        d,
		})
	}
	sortByDepth(entries)
	return entries, nil
}

func (s *Store) IsDescendant(_ context.Context, tenantID string, ancestorID, descendantID id.OrgUnitID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[descendantID.String()]
	if !ok || u.TenantID != tenantID {
		return false, nil
	}
	d, ok := s.closureUp[descendantID.String()][ancestorID.String()]
	return ok && d > 0, nil
}

func (s *Store) MoveUnit(_ context.Context, tenantID string, unitID id.OrgUnitID, newParentID *id.OrgUnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uk := unitID.String()
	u, ok := s.units[uk]
	if !ok || u.TenantID != tenantID {
		return fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	if newParentID != nil {
		pk := newParentID.String()
		parent, ok := s.units[pk]
		if !ok || parent.TenantID != tenantID {
			return fmt.Errorf("parent unit %s: %w", pk, orgunit.ErrNotFound)
		}
		if pk == uk {
			return fmt.Errorf("unit %s cannot be its own parent: %w", unitID, orgunit.ErrCycleDetected)
		}
		if _, inSubtree := s.closureDown[uk][pk]; inSubtree {
			return fmt.Errorf("unit %s is a descendant of %s: %w", pk, unitID, orgunit.ErrCycleDetected)
		}
	}

	// Subtree members keyed by their depth relative to the moved unit.
	subtree := make(map[string]int)
	for desc, d := range s.closureDown[uk] {
		subtree[desc] = d
	}

	// Sever the subtree from every ancestor outside it.
	for member := range subtree {
		for anc := range s.closureUp[member] {
			if _, inside := subtree[anc]; inside {
				continue
			}
			delete(s.closureUp[member], anc)
			delete(s.closureDown[anc], member)
		}
	}

	// Reattach below the new parent's ancestor chain (including the
	// parent itself at depth 0).
	if newParentID != nil {
		for anc, ad := range s.closureUp[newParentID.String()] {
			for member, md := range subtree {
				s.insertClosure(anc, member, ad+md+1)
			}
		}
	}

	u.ParentID = copyUnitID(newParentID)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) DeleteUnitsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, u := range s.units {
		if u.TenantID == tenantID {
			s.removeUnitLocked(k)
		}
	}
	return nil
}

func (s *Store) insertClosure(ancestor, descendant string, depth int) {
	if s.closureDown[ancestor] == nil {
		s.closureDown[ancestor] = make(map[string]int)
	}
	s.closureDown[ancestor][descendant] = depth
	if s.closureUp[descendant] == nil {
		s.closureUp[descendant] = make(map[string]int)
	}
	s.closureUp[descendant][ancestor] = depth
}

// ──────────────────────────────────────────────────
// Scope Store
// ──────────────────────────────────────────────────

func (s *Store) CreateScope(_ context.Context, a *scope.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes[a.ID.String()] = copyScope(a)
	return nil
}

func (s *Store) GetScope(_ context.Context, scopeID id.ScopeID) (*scope.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.scopes[scopeID.String()]
	if !ok {
		return nil, fmt.Errorf("scope %s: %w", scopeID, scope.ErrNotFound)
	}
	return copyScope(a), nil
}

func (s *Store) UpdateScope(_ context.Context, a *scope.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scopes[a.ID.String()]; !ok {
		return fmt.Errorf("scope %s: %w", a.ID, scope.ErrNotFound)
	}
	s.scopes[a.ID.String()] = copyScope(a)
	return nil
}

func (s *Store) DeleteScope(_ context.Context, scopeID id.ScopeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scopes, scopeID.String())
	return nil
}

func (s *Store) ListScopes(_ context.Context, filter *scope.ListFilter) ([]*scope.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*scope.Assignment, 0, len(s.scopes))
	for _, a := range s.scopes {
		if filter != nil {
			if filter.TenantID != "" && a.TenantID != filter.TenantID {
				continue
			}
			if filter.UserID != "" && a.UserID != filter.UserID {
				continue
			}
			if filter.OrgUnitID != nil && a.OrgUnitID.String() != filter.OrgUnitID.String() {
				continue
			}
		}
		result = append(result, copyScope(a))
	}
	var limit, offset int
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountScopes(ctx context.Context, filter *scope.ListFilter) (int64, error) {
	f := unpaginatedScope(filter)
	list, err := s.ListScopes(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ScopesCovering(_ context.Context, tenantID, userID string, unitID id.OrgUnitID) ([]*scope.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uk := unitID.String()
	ancestors := s.closureUp[uk] // includes the unit itself at depth 0
	var result []*scope.Assignment
	for _, a := range s.scopes {
		if a.TenantID != tenantID || a.UserID != userID {
			continue
		}
		ak := a.OrgUnitID.String()
		if ak == uk {
			result = append(result, copyScope(a))
			continue
		}
		if !a.IncludeDescendants {
			continue
		}
		if d, ok := ancestors[ak]; ok && d > 0 {
			result = append(result, copyScope(a))
		}
	}
	return result, nil
}

func (s *Store) DeleteScopesByUnit(_ context.Context, unitID id.OrgUnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uk := unitID.String()
	for k, a := range s.scopes {
		if a.OrgUnitID.String() == uk {
			delete(s.scopes, k)
		}
	}
	return nil
}

func (s *Store) DeleteScopesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.scopes {
		if a.TenantID == tenantID {
			delete(s.scopes, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Employee Store
// ──────────────────────────────────────────────────

func (s *Store) CreateEmployee(_ context.Context, e *employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.employees {
		if existing.TenantID == e.TenantID && existing.UserID == e.UserID {
			return fmt.Errorf("user %q in tenant %q: %w", e.UserID, e.TenantID, employee.ErrAlreadyExists)
		}
	}
	s.employees[e.ID.String()] = copyEmployee(e)
	return nil
}

func (s *Store) GetEmployee(_ context.Context, empID id.EmployeeID) (*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[empID.String()]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", empID, employee.ErrNotFound)
	}
	return copyEmployee(e), nil
}

func (s *Store) GetEmployeeByUser(_ context.Context, tenantID, userID string) (*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.TenantID == tenantID && e.UserID == userID {
			return copyEmployee(e), nil
		}
	}
	return nil, fmt.Errorf("employee for user %q: %w", userID, employee.ErrNotFound)
}

func (s *Store) UpdateEmployee(_ context.Context, e *employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[e.ID.String()]; !ok {
		return fmt.Errorf("employee %s: %w", e.ID, employee.ErrNotFound)
	}
	s.employees[e.ID.String()] = copyEmployee(e)
	return nil
}

func (s *Store) DeleteEmployee(_ context.Context, empID id.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.employees, empID.String())
	return nil
}

func (s *Store) ListEmployees(_ context.Context, filter *employee.ListFilter) ([]*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*employee.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.UserID != "" && e.UserID != filter.UserID {
				continue
			}
			if filter.OrgUnitID != nil && e.OrgUnitID.String() != filter.OrgUnitID.String() {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(e.DisplayName), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyEmployee(e))
	}
	var limit, offset int
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountEmployees(ctx context.Context, filter *employee.ListFilter) (int64, error) {
	f := unpaginatedEmployee(filter)
	list, err := s.ListEmployees(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteEmployeesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.employees {
		if e.TenantID == tenantID {
			delete(s.employees, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// DecisionLog Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisionLogs[e.ID.String()] = copyDecisionLog(e)
	return nil
}

func (s *Store) GetDecisionLog(_ context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.decisionLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("decision log %s: %w", logID, decisionlog.ErrNotFound)
	}
	return copyDecisionLog(e), nil
}

func (s *Store) ListDecisionLogs(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*decisionlog.Entry, 0, len(s.decisionLogs))
	for _, e := range s.decisionLogs {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.UserID != "" && e.UserID != filter.UserID {
				continue
			}
			if filter.Permission != "" && e.Permission != filter.Permission {
				continue
			}
			if filter.OrgUnitID != nil && e.OrgUnitID.String() != filter.OrgUnitID.String() {
				continue
			}
			if filter.EmployeeID != nil {
				if e.EmployeeID == nil || e.EmployeeID.String() != filter.EmployeeID.String() {
					continue
				}
			}
			if filter.Verdict != "" && e.Verdict != filter.Verdict {
				continue
			}
			if filter.Reason != "" && e.Reason != filter.Reason {
				continue
			}
			if filter.After != nil && e.CreatedAt.Before(*filter.After) {
				continue
			}
			if filter.Before != nil && e.CreatedAt.After(*filter.Before) {
				continue
			}
		}
		result = append(result, copyDecisionLog(e))
	}
	var limit, offset int
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	return applyPagination(result, limit, offset), nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	f := unpaginatedLog(filter)
	list, err := s.ListDecisionLogs(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeDecisionLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.decisionLogs {
		if e.CreatedAt.Before(before) {
			delete(s.decisionLogs, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteDecisionLogsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.decisionLogs {
		if e.TenantID == tenantID {
			delete(s.decisionLogs, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func copyUnit(u *orgunit.Unit) *orgunit.Unit {
	c := *u
	c.ParentID = copyUnitID(u.ParentID)
	c.Block = copyBlock(u.Block)
	return &c
}

func copyUnitID(uid *id.OrgUnitID) *id.OrgUnitID {
	if uid == nil {
		return nil
	}
	c := *uid
	return &c
}

func copyBlock(b *orgunit.BlockConfig) *orgunit.BlockConfig {
	if b == nil {
		return nil
	}
	c := *b
	if b.BlockedPermissions != nil {
		c.BlockedPermissions = make([]string, len(b.BlockedPermissions))
		copy(c.BlockedPermissions, b.BlockedPermissions)
	}
	return &c
}

func copyScope(a *scope.Assignment) *scope.Assignment {
	c := *a
	c.MinViewableRank = copyInt(a.MinViewableRank)
	c.MaxViewableRank = copyInt(a.MaxViewableRank)
	c.MinAssignableRank = copyInt(a.MinAssignableRank)
	c.MaxAssignableRank = copyInt(a.MaxAssignableRank)
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyEmployee(e *employee.Employee) *employee.Employee {
	c := *e
	return &c
}

func copyDecisionLog(e *decisionlog.Entry) *decisionlog.Entry {
	c := *e
	return &c
}

func applyPagination[T any](items []*T, limit, offset int) []*T {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) && offset > 0 {
		return nil
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortByDepth(entries []orgunit.ClosureEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Depth < entries[j].Depth })
}

func unpaginated(f *orgunit.ListFilter) *orgunit.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func unpaginatedScope(f *scope.ListFilter) *scope.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func unpaginatedEmployee(f *employee.ListFilter) *employee.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func unpaginatedLog(f *decisionlog.QueryFilter) *decisionlog.QueryFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}
