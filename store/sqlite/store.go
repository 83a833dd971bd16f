// Package sqlite provides a SQLite implementation of the Steward composite
// store using grove ORM with Go-based migrations. JSON columns are stored as
// text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
	"github.com/xraph/steward/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a SQLite implementation of the composite Steward store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("steward/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("steward/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ──────────────────────────────────────────────────
// OrgUnit operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUnit(ctx context.Context, u *orgunit.Unit) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	var parentChain []closureModel
	if u.ParentID != nil {
		parent, err := s.GetUnit(ctx, *u.ParentID)
		if err != nil {
			return err
		}
		if parent.TenantID != u.TenantID {
			return fmt.Errorf("parent unit %s: %w", u.ParentID, orgunit.ErrNotFound)
		}
		err = s.sdb.NewSelect(&parentChain).
			Where("descendant_id = ?", u.ParentID.String()).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("steward: load parent chain: %w", err)
		}
	}

	m, err := unitToModel(u)
	if err != nil {
		return fmt.Errorf("steward: create unit: %w", err)
	}

	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create unit: %w", err)
	}

	rows := make([]closureModel, 0, len(parentChain)+1)
	rows = append(rows, closureModel{
		AncestorID:   u.ID.String(),
		DescendantID: u.ID.String(),
		TenantID:     u.TenantID,
		Depth:        0,
	})
	for _, c := range parentChain {
		rows = append(rows, closureModel{
			AncestorID:   c.AncestorID,
			DescendantID: u.ID.String(),
			TenantID:     u.TenantID,
			Depth:        c.Depth + 1,
		})
	}
	if _, err := tx.NewInsert(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("steward: insert closure rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetUnit(ctx context.Context, unitID id.OrgUnitID) (*orgunit.Unit, error) {
	m := new(unitModel)
	err := s.sdb.NewSelect(m).Where("id = ?", unitID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get unit: %w", err)
	}
	return unitFromModel(m)
}

func (s *Store) UpdateUnit(ctx context.Context, u *orgunit.Unit) error {
	existing, err := s.GetUnit(ctx, u.ID)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	m, err := unitToModel(u)
	if err != nil {
		return fmt.Errorf("steward: update unit: %w", err)
	}
	// Reparenting goes through MoveUnit; keep the stored parent.
	if existing.ParentID != nil {
		p := existing.ParentID.String()
		m.ParentID = &p
	} else {
		m.ParentID = nil
	}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update unit: %w", err)
	}
	return nil
}

func (s *Store) DeleteUnit(ctx context.Context, unitID id.OrgUnitID) error {
	if _, err := s.GetUnit(ctx, unitID); err != nil {
		return err
	}
	subtree, err := s.subtreeIDs(ctx, unitID)
	if err != nil {
		return err
	}

	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewDelete((*scopeModel)(nil)).
		Where("org_unit_id IN (?)", subtree).Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete subtree scopes: %w", err)
	}
	if _, err := tx.NewDelete((*employeeModel)(nil)).
		Where("org_unit_id IN (?)", subtree).Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete subtree employees: %w", err)
	}
	if _, err := tx.NewDelete((*closureModel)(nil)).
		Where("descendant_id IN (?)", subtree).Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete closure rows: %w", err)
	}
	if _, err := tx.NewDelete((*unitModel)(nil)).
		Where("id IN (?)", subtree).Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete units: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListUnits(ctx context.Context, filter *orgunit.ListFilter) ([]*orgunit.Unit, error) {
	var models []unitModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.ParentID != nil {
			q = q.Where("parent_id = ?", filter.ParentID.String())
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list units: %w", err)
	}
	result := make([]*orgunit.Unit, 0, len(models))
	for i := range models {
		u, err := unitFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("steward: list units: %w", err)
		}
		result = append(result, u)
	}
	return result, nil
}

func (s *Store) CountUnits(ctx context.Context, filter *orgunit.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*unitModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.ParentID != nil {
			q = q.Where("parent_id = ?", filter.ParentID.String())
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count units: %w", err)
	}
	return count, nil
}

func (s *Store) SetInheritanceBlock(ctx context.Context, unitID id.OrgUnitID, cfg *orgunit.BlockConfig) error {
	u, err := s.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	u.Block = cfg
	u.UpdatedAt = time.Now().UTC()
	m, err := unitToModel(u)
	if err != nil {
		return fmt.Errorf("steward: set inheritance block: %w", err)
	}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: set inheritance block: %w", err)
	}
	return nil
}

func (s *Store) Ancestors(ctx context.Context, tenantID string, unitID id.OrgUnitID) ([]orgunit.ClosureEntry, error) {
	if err := s.checkTenantUnit(ctx, tenantID, unitID); err != nil {
		return nil, err
	}
	var models []closureModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("descendant_id = ?", unitID.String()).
		Where("depth > ?", 0).
		OrderExpr("depth ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list ancestors: %w", err)
	}
	entries := make([]orgunit.ClosureEntry, len(models))
	for i := range models {
		entries[i] = closureFromModel(&models[i])
	}
	return entries, nil
}

func (s *Store) Descendants(ctx context.Context, tenantID string, unitID id.OrgUnitID) ([]orgunit.ClosureEntry, error) {
	if err := s.checkTenantUnit(ctx, tenantID, unitID); err != nil {
		return nil, err
	}
	var models []closureModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("ancestor_id = ?", unitID.String()).
		Where("depth > ?", 0).
		OrderExpr("depth ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list descendants: %w", err)
	}
	entries := make([]orgunit.ClosureEntry, len(models))
	for i := range models {
		entries[i] = closureFromModel(&models[i])
	}
	return entries, nil
}

func (s *Store) IsDescendant(ctx context.Context, tenantID string, ancestorID, descendantID id.OrgUnitID) (bool, error) {
	count, err := s.sdb.NewSelect((*closureModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("ancestor_id = ?", ancestorID.String()).
		Where("descendant_id = ?", descendantID.String()).
		Where("depth > ?", 0).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("steward: check descendant: %w", err)
	}
	return count > 0, nil
}

func (s *Store) MoveUnit(ctx context.Context, tenantID string, unitID id.OrgUnitID, newParentID *id.OrgUnitID) error {
	u, err := s.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	if u.TenantID != tenantID {
		return fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}

	var newParentChain []closureModel
	if newParentID != nil {
		if newParentID.String() == unitID.String() {
			return fmt.Errorf("unit %s cannot be its own parent: %w", unitID, orgunit.ErrCycleDetected)
		}
		parent, err := s.GetUnit(ctx, *newParentID)
		if err != nil {
			return err
		}
		if parent.TenantID != tenantID {
			return fmt.Errorf("parent unit %s: %w", newParentID, orgunit.ErrNotFound)
		}
		inSubtree, err := s.IsDescendant(ctx, tenantID, unitID, *newParentID)
		if err != nil {
			return err
		}
		if inSubtree {
			return fmt.Errorf("unit %s is a descendant of %s: %w", newParentID, unitID, orgunit.ErrCycleDetected)
		}
		err = s.sdb.NewSelect(&newParentChain).
			Where("descendant_id = ?", newParentID.String()).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("steward: load parent chain: %w", err)
		}
	}

	var subtreeRows []closureModel
	err = s.sdb.NewSelect(&subtreeRows).
		Where("ancestor_id = ?", unitID.String()).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("steward: load subtree: %w", err)
	}
	subtreeIDs := make([]string, len(subtreeRows))
	for i, r := range subtreeRows {
		subtreeIDs[i] = r.DescendantID
	}

	u.ParentID = newParentID
	u.UpdatedAt = time.Now().UTC()
	um, err := unitToModel(u)
	if err != nil {
		return fmt.Errorf("steward: move unit: %w", err)
	}

	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewDelete((*closureModel)(nil)).
		Where("descendant_id IN (?)", subtreeIDs).
		Where("ancestor_id NOT IN (?)", subtreeIDs).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: sever subtree: %w", err)
	}

	if len(newParentChain) > 0 {
		rows := make([]closureModel, 0, len(newParentChain)*len(subtreeRows))
		for _, anc := range newParentChain {
			for _, member := range subtreeRows {
				rows = append(rows, closureModel{
					AncestorID:   anc.AncestorID,
					DescendantID: member.DescendantID,
					TenantID:     tenantID,
					Depth:        anc.Depth + member.Depth + 1,
				})
			}
		}
		if _, err := tx.NewInsert(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("steward: reattach subtree: %w", err)
		}
	}

	// The grove tx surface is delete/insert only, so the parent pointer is
	// rewritten the same way.
	if _, err := tx.NewDelete((*unitModel)(nil)).
		Where("id = ?", unitID.String()).Exec(ctx); err != nil {
		return fmt.Errorf("steward: rewrite unit row: %w", err)
	}
	if _, err := tx.NewInsert(um).Exec(ctx); err != nil {
		return fmt.Errorf("steward: rewrite unit row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) DeleteUnitsByTenant(ctx context.Context, tenantID string) error {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewDelete((*closureModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete tenant closure rows: %w", err)
	}
	if _, err := tx.NewDelete((*unitModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete tenant units: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) subtreeIDs(ctx context.Context, unitID id.OrgUnitID) ([]string, error) {
	var rows []closureModel
	err := s.sdb.NewSelect(&rows).
		Where("ancestor_id = ?", unitID.String()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: load subtree: %w", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.DescendantID
	}
	return ids, nil
}

func (s *Store) checkTenantUnit(ctx context.Context, tenantID string, unitID id.OrgUnitID) error {
	u, err := s.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	if u.TenantID != tenantID {
		return fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Scope operations
// ──────────────────────────────────────────────────

func (s *Store) CreateScope(ctx context.Context, a *scope.Assignment) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	m, err := scopeToModel(a)
	if err != nil {
		return fmt.Errorf("steward: create scope: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create scope: %w", err)
	}
	return nil
}

func (s *Store) GetScope(ctx context.Context, scopeID id.ScopeID) (*scope.Assignment, error) {
	m := new(scopeModel)
	err := s.sdb.NewSelect(m).Where("id = ?", scopeID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("scope %s: %w", scopeID, scope.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get scope: %w", err)
	}
	return scopeFromModel(m)
}

func (s *Store) UpdateScope(ctx context.Context, a *scope.Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	m, err := scopeToModel(a)
	if err != nil {
		return fmt.Errorf("steward: update scope: %w", err)
	}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update scope: %w", err)
	}
	return nil
}

func (s *Store) DeleteScope(ctx context.Context, scopeID id.ScopeID) error {
	_, err := s.sdb.NewDelete((*scopeModel)(nil)).
		Where("id = ?", scopeID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scope: %w", err)
	}
	return nil
}

func (s *Store) ListScopes(ctx context.Context, filter *scope.ListFilter) ([]*scope.Assignment, error) {
	var models []scopeModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.OrgUnitID != nil {
			q = q.Where("org_unit_id = ?", filter.OrgUnitID.String())
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list scopes: %w", err)
	}
	result := make([]*scope.Assignment, 0, len(models))
	for i := range models {
		a, err := scopeFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("steward: list scopes: %w", err)
		}
		result = append(result, a)
	}
	return result, nil
}

func (s *Store) CountScopes(ctx context.Context, filter *scope.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*scopeModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.OrgUnitID != nil {
			q = q.Where("org_unit_id = ?", filter.OrgUnitID.String())
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count scopes: %w", err)
	}
	return count, nil
}

func (s *Store) ScopesCovering(ctx context.Context, tenantID, userID string, unitID id.OrgUnitID) ([]*scope.Assignment, error) {
	var chain []closureModel
	err := s.sdb.NewSelect(&chain).
		Where("tenant_id = ?", tenantID).
		Where("descendant_id = ?", unitID.String()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: load ancestor chain: %w", err)
	}
	if len(chain) == 0 {
		return nil, nil
	}
	ancestorIDs := make([]string, len(chain))
	properAncestors := make(map[string]bool, len(chain))
	for i, c := range chain {
		ancestorIDs[i] = c.AncestorID
		if c.Depth > 0 {
			properAncestors[c.AncestorID] = true
		}
	}

	var models []scopeModel
	err = s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		Where("org_unit_id IN (?)", ancestorIDs).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: load covering scopes: %w", err)
	}

	result := make([]*scope.Assignment, 0, len(models))
	for i := range models {
		m := &models[i]
		if properAncestors[m.OrgUnitID] && !m.IncludeDescendants {
			continue
		}
		a, err := scopeFromModel(m)
		if err != nil {
			return nil, fmt.Errorf("steward: load covering scopes: %w", err)
		}
		result = append(result, a)
	}
	return result, nil
}

func (s *Store) DeleteScopesByUnit(ctx context.Context, unitID id.OrgUnitID) error {
	_, err := s.sdb.NewDelete((*scopeModel)(nil)).
		Where("org_unit_id = ?", unitID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scopes by unit: %w", err)
	}
	return nil
}

func (s *Store) DeleteScopesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.sdb.NewDelete((*scopeModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scopes by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Employee operations
// ──────────────────────────────────────────────────

func (s *Store) CreateEmployee(ctx context.Context, e *employee.Employee) error {
	// SQLite reports constraint violations as opaque driver errors, so the
	// uniqueness check runs up front.
	if _, err := s.GetEmployeeByUser(ctx, e.TenantID, e.UserID); err == nil {
		return fmt.Errorf("user %q in tenant %q: %w", e.UserID, e.TenantID, employee.ErrAlreadyExists)
	} else if !errors.Is(err, employee.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	m, err := employeeToModel(e)
	if err != nil {
		return fmt.Errorf("steward: create employee: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, empID id.EmployeeID) (*employee.Employee, error) {
	m := new(employeeModel)
	err := s.sdb.NewSelect(m).Where("id = ?", empID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("employee %s: %w", empID, employee.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get employee: %w", err)
	}
	return employeeFromModel(m)
}

func (s *Store) GetEmployeeByUser(ctx context.Context, tenantID, userID string) (*employee.Employee, error) {
	m := new(employeeModel)
	err := s.sdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("employee for user %q: %w", userID, employee.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get employee by user: %w", err)
	}
	return employeeFromModel(m)
}

func (s *Store) UpdateEmployee(ctx context.Context, e *employee.Employee) error {
	e.UpdatedAt = time.Now().UTC()
	m, err := employeeToModel(e)
	if err != nil {
		return fmt.Errorf("steward: update employee: %w", err)
	}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update employee: %w", err)
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, empID id.EmployeeID) error {
	_, err := s.sdb.NewDelete((*employeeModel)(nil)).
		Where("id = ?", empID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete employee: %w", err)
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context, filter *employee.ListFilter) ([]*employee.Employee, error) {
	var models []employeeModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.OrgUnitID != nil {
			q = q.Where("org_unit_id = ?", filter.OrgUnitID.String())
		}
		if filter.Search != "" {
			q = q.Where("LOWER(display_name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list employees: %w", err)
	}
	result := make([]*employee.Employee, 0, len(models))
	for i := range models {
		e, err := employeeFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("steward: list employees: %w", err)
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *Store) CountEmployees(ctx context.Context, filter *employee.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*employeeModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.OrgUnitID != nil {
			q = q.Where("org_unit_id = ?", filter.OrgUnitID.String())
		}
		if filter.Search != "" {
			q = q.Where("LOWER(display_name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count employees: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteEmployeesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.sdb.NewDelete((*employeeModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete employees by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(ctx context.Context, e *decisionlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m, err := decisionLogToModel(e)
	if err != nil {
		return fmt.Errorf("steward: create decision log: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	m := new(decisionLogModel)
	err := s.sdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("decision log %s: %w", logID, decisionlog.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get decision log: %w", err)
	}
	return decisionLogFromModel(m)
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", filter.Permission)
		}
		if filter.OrgUnitID != nil {
			q = q.Where("org_unit_id = ?", filter.OrgUnitID.String())
		}
		if filter.EmployeeID != nil {
			q = q.Where("employee_id = ?", filter.EmployeeID.String())
		}
		if filter.Verdict != "" {
			q = q.Where("verdict = ?", filter.Verdict)
		}
		if filter.Reason != "" {
			q = q.Where("reason = ?", filter.Reason)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list decision logs: %w", err)
	}
	result := make([]*decisionlog.Entry, 0, len(models))
	for i := range models {
		e, err := decisionLogFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("steward: list decision logs: %w", err)
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	q := s.sdb.NewSelect((*decisionLogModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", filter.Permission)
		}
		if filter.OrgUnitID != nil {
			q = q.Where("org_unit_id = ?", filter.OrgUnitID.String())
		}
		if filter.EmployeeID != nil {
			q = q.Where("employee_id = ?", filter.EmployeeID.String())
		}
		if filter.Verdict != "" {
			q = q.Where("verdict = ?", filter.Verdict)
		}
		if filter.Reason != "" {
			q = q.Where("reason = ?", filter.Reason)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count decision logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.sdb.NewDelete((*decisionLogModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: purge decision logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("steward: purge decision logs rows: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteDecisionLogsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.sdb.NewDelete((*decisionLogModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete decision logs by tenant: %w", err)
	}
	return nil
}
