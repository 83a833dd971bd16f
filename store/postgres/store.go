// Package postgres provides a PostgreSQL implementation of the Steward
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
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

// Store is a PostgreSQL implementation of the composite Steward store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("steward: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("steward: migration failed: %w", err)
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ──────────────────────────────────────────────────
// OrgUnit operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUnit(ctx context.Context, u *orgunit.Unit) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	// Resolve the parent's ancestor chain before opening the transaction;
	// it includes the parent itself at depth 0.
	var parentChain []closureModel
	if u.ParentID != nil {
		parent, err := s.GetUnit(ctx, *u.ParentID)
		if err != nil {
			return err
		}
		if parent.TenantID != u.TenantID {
			return fmt.Errorf("parent unit %s: %w", u.ParentID, orgunit.ErrNotFound)
		}
		err = s.pgdb.NewSelect(&parentChain).
			Where("descendant_id = ?", u.ParentID.String()).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("steward: load parent chain: %w", err)
		}
	}

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewInsert(unitToModel(u)).Exec(ctx); err != nil {
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
	err := s.pgdb.NewSelect(m).Where("id = ?", unitID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get unit: %w", err)
	}
	return unitFromModel(m), nil
}

func (s *Store) UpdateUnit(ctx context.Context, u *orgunit.Unit) error {
	existing, err := s.GetUnit(ctx, u.ID)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	m := unitToModel(u)
	// Reparenting goes through MoveUnit; keep the stored parent.
	if existing.ParentID != nil {
		p := existing.ParentID.String()
		m.ParentID = &p
	} else {
		m.ParentID = nil
	}
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
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

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
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
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
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
	result := make([]*orgunit.Unit, len(models))
	for i := range models {
		result[i] = unitFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountUnits(ctx context.Context, filter *orgunit.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*unitModel)(nil))
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
	if _, err := s.pgdb.NewUpdate(unitToModel(u)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: set inheritance block: %w", err)
	}
	return nil
}

func (s *Store) Ancestors(ctx context.Context, tenantID string, unitID id.OrgUnitID) ([]orgunit.ClosureEntry, error) {
	if err := s.checkTenantUnit(ctx, tenantID, unitID); err != nil {
		return nil, err
	}
	var models []closureModel
	err := s.pgdb.NewSelect(&models).
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
	err := s.pgdb.NewSelect(&models).
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
	count, err := s.pgdb.NewSelect((*closureModel)(nil)).
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
		err = s.pgdb.NewSelect(&newParentChain).
			Where("descendant_id = ?", newParentID.String()).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("steward: load parent chain: %w", err)
		}
	}

	// Subtree members keyed by depth relative to the moved unit.
	var subtreeRows []closureModel
	err = s.pgdb.NewSelect(&subtreeRows).
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

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	// Sever the subtree from every ancestor outside it.
	if _, err := tx.NewDelete((*closureModel)(nil)).
		Where("descendant_id IN (?)", subtreeIDs).
		Where("ancestor_id NOT IN (?)", subtreeIDs).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: sever subtree: %w", err)
	}

	// Reattach below the new parent's ancestor chain.
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
	if _, err := tx.NewInsert(unitToModel(u)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: rewrite unit row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) DeleteUnitsByTenant(ctx context.Context, tenantID string) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
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

// subtreeIDs returns the IDs of the unit and all its descendants.
func (s *Store) subtreeIDs(ctx context.Context, unitID id.OrgUnitID) ([]string, error) {
	var rows []closureModel
	err := s.pgdb.NewSelect(&rows).
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

// checkTenantUnit verifies the unit exists and belongs to the tenant.
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
	if _, err := s.pgdb.NewInsert(scopeToModel(a)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create scope: %w", err)
	}
	return nil
}

func (s *Store) GetScope(ctx context.Context, scopeID id.ScopeID) (*scope.Assignment, error) {
	m := new(scopeModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", scopeID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scope %s: %w", scopeID, scope.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get scope: %w", err)
	}
	return scopeFromModel(m), nil
}

func (s *Store) UpdateScope(ctx context.Context, a *scope.Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	if _, err := s.pgdb.NewUpdate(scopeToModel(a)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update scope: %w", err)
	}
	return nil
}

func (s *Store) DeleteScope(ctx context.Context, scopeID id.ScopeID) error {
	_, err := s.pgdb.NewDelete((*scopeModel)(nil)).
		Where("id = ?", scopeID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scope: %w", err)
	}
	return nil
}

func (s *Store) ListScopes(ctx context.Context, filter *scope.ListFilter) ([]*scope.Assignment, error) {
	var models []scopeModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
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
	result := make([]*scope.Assignment, len(models))
	for i := range models {
		result[i] = scopeFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountScopes(ctx context.Context, filter *scope.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*scopeModel)(nil))
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
	// Ancestor chain of the unit, including the unit itself at depth 0.
	var chain []closureModel
	err := s.pgdb.NewSelect(&chain).
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
	err = s.pgdb.NewSelect(&models).
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
		// A scope on a proper ancestor covers the unit only when it
		// includes descendants.
		if properAncestors[m.OrgUnitID] && !m.IncludeDescendants {
			continue
		}
		result = append(result, scopeFromModel(m))
	}
	return result, nil
}

func (s *Store) DeleteScopesByUnit(ctx context.Context, unitID id.OrgUnitID) error {
	_, err := s.pgdb.NewDelete((*scopeModel)(nil)).
		Where("org_unit_id = ?", unitID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scopes by unit: %w", err)
	}
	return nil
}

func (s *Store) DeleteScopesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*scopeModel)(nil)).
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
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.pgdb.NewInsert(employeeToModel(e)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q in tenant %q: %w", e.UserID, e.TenantID, employee.ErrAlreadyExists)
		}
		return fmt.Errorf("steward: create employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, empID id.EmployeeID) (*employee.Employee, error) {
	m := new(employeeModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", empID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee %s: %w", empID, employee.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get employee: %w", err)
	}
	return employeeFromModel(m), nil
}

func (s *Store) GetEmployeeByUser(ctx context.Context, tenantID, userID string) (*employee.Employee, error) {
	m := new(employeeModel)
	err := s.pgdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee for user %q: %w", userID, employee.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get employee by user: %w", err)
	}
	return employeeFromModel(m), nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e *employee.Employee) error {
	e.UpdatedAt = time.Now().UTC()
	if _, err := s.pgdb.NewUpdate(employeeToModel(e)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update employee: %w", err)
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, empID id.EmployeeID) error {
	_, err := s.pgdb.NewDelete((*employeeModel)(nil)).
		Where("id = ?", empID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete employee: %w", err)
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context, filter *employee.ListFilter) ([]*employee.Employee, error) {
	var models []employeeModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
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
	result := make([]*employee.Employee, len(models))
	for i := range models {
		result[i] = employeeFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountEmployees(ctx context.Context, filter *employee.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*employeeModel)(nil))
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
	_, err := s.pgdb.NewDelete((*employeeModel)(nil)).
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
	if _, err := s.pgdb.NewInsert(decisionLogToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	m := new(decisionLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("decision log %s: %w", logID, decisionlog.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get decision log: %w", err)
	}
	return decisionLogFromModel(m), nil
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
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
	result := make([]*decisionlog.Entry, len(models))
	for i := range models {
		result[i] = decisionLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*decisionLogModel)(nil))
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
	res, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
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
	_, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete decision logs by tenant: %w", err)
	}
	return nil
}
