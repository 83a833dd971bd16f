// Package mongo provides a MongoDB implementation of the Steward composite
// store using grove ORM with index-based migrations.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
	"github.com/xraph/steward/store"
)

// Collection name constants.
const (
	colUnits        = "steward_org_units"
	colClosure      = "steward_org_closure"
	colScopes       = "steward_scopes"
	colEmployees    = "steward_employees"
	colDecisionLogs = "steward_decision_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Steward store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all steward collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("steward/mongo: migrate %s indexes: %w", col, err)
		}
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

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all steward collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colUnits: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "type", Value: 1}}},
		},
		colClosure: {
			{
				Keys:    bson.D{{Key: "ancestor_id", Value: 1}, {Key: "descendant_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "descendant_id", Value: 1}, {Key: "depth", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "ancestor_id", Value: 1}, {Key: "depth", Value: 1}}},
		},
		colScopes: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "org_unit_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "org_unit_id", Value: 1}}},
		},
		colEmployees: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "org_unit_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "management_level", Value: 1}}},
		},
		colDecisionLogs: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "verdict", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// OrgUnit operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUnit(ctx context.Context, u *orgunit.Unit) error {
	t := now()
	u.CreatedAt = t
	u.UpdatedAt = t

	var parentChain []closureModel
	if u.ParentID != nil {
		parent, err := s.GetUnit(ctx, *u.ParentID)
		if err != nil {
			return err
		}
		if parent.TenantID != u.TenantID {
			return fmt.Errorf("parent unit %s: %w", u.ParentID, orgunit.ErrNotFound)
		}
		if err := s.mdb.NewFind(&parentChain).
			Filter(bson.M{"descendant_id": u.ParentID.String()}).
			Scan(ctx); err != nil {
			return fmt.Errorf("steward: load parent chain: %w", err)
		}
	}

	if _, err := s.mdb.NewInsert(unitToModel(u)).Exec(ctx); err != nil {
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
	if _, err := s.mdb.NewInsert(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("steward: insert closure rows: %w", err)
	}
	return nil
}

func (s *Store) GetUnit(ctx context.Context, unitID id.OrgUnitID) (*orgunit.Unit, error) {
	var m unitModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": unitID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get unit: %w", err)
	}
	return unitFromModel(&m), nil
}

func (s *Store) UpdateUnit(ctx context.Context, u *orgunit.Unit) error {
	existing, err := s.GetUnit(ctx, u.ID)
	if err != nil {
		return err
	}
	u.UpdatedAt = now()
	m := unitToModel(u)
	// Reparenting goes through MoveUnit; keep the stored parent.
	if existing.ParentID != nil {
		p := existing.ParentID.String()
		m.ParentID = &p
	} else {
		m.ParentID = nil
	}
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update unit: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("unit %s: %w", u.ID, orgunit.ErrNotFound)
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

	if _, err := s.mdb.NewDelete((*scopeModel)(nil)).
		Many().
		Filter(bson.M{"org_unit_id": bson.M{"$in": subtree}}).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete subtree scopes: %w", err)
	}
	if _, err := s.mdb.NewDelete((*employeeModel)(nil)).
		Many().
		Filter(bson.M{"org_unit_id": bson.M{"$in": subtree}}).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete subtree employees: %w", err)
	}
	if _, err := s.mdb.NewDelete((*closureModel)(nil)).
		Many().
		Filter(bson.M{"descendant_id": bson.M{"$in": subtree}}).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete closure rows: %w", err)
	}
	if _, err := s.mdb.NewDelete((*unitModel)(nil)).
		Many().
		Filter(bson.M{"_id": bson.M{"$in": subtree}}).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete units: %w", err)
	}
	return nil
}

func (s *Store) ListUnits(ctx context.Context, filter *orgunit.ListFilter) ([]*orgunit.Unit, error) {
	var models []unitModel
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.ParentID != nil {
			f["parent_id"] = filter.ParentID.String()
		}
		if filter.Type != "" {
			f["type"] = filter.Type
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.ParentID != nil {
			f["parent_id"] = filter.ParentID.String()
		}
		if filter.Type != "" {
			f["type"] = filter.Type
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	count, err := s.mdb.NewFind((*unitModel)(nil)).
		Filter(f).
		Count(ctx)
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
	u.UpdatedAt = now()
	m := unitToModel(u)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: set inheritance block: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("unit %s: %w", unitID, orgunit.ErrNotFound)
	}
	return nil
}

func (s *Store) Ancestors(ctx context.Context, tenantID string, unitID id.OrgUnitID) ([]orgunit.ClosureEntry, error) {
	if err := s.checkTenantUnit(ctx, tenantID, unitID); err != nil {
		return nil, err
	}
	var models []closureModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"tenant_id":     tenantID,
			"descendant_id": unitID.String(),
			"depth":         bson.M{"$gt": 0},
		}).
		Sort(bson.D{{Key: "depth", Value: 1}}).
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
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"tenant_id":   tenantID,
			"ancestor_id": unitID.String(),
			"depth":       bson.M{"$gt": 0},
		}).
		Sort(bson.D{{Key: "depth", Value: 1}}).
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
	count, err := s.mdb.NewFind((*closureModel)(nil)).
		Filter(bson.M{
			"tenant_id":     tenantID,
			"ancestor_id":   ancestorID.String(),
			"descendant_id": descendantID.String(),
			"depth":         bson.M{"$gt": 0},
		}).
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
		if err := s.mdb.NewFind(&newParentChain).
			Filter(bson.M{"descendant_id": newParentID.String()}).
			Scan(ctx); err != nil {
			return fmt.Errorf("steward: load parent chain: %w", err)
		}
	}

	var subtreeRows []closureModel
	if err := s.mdb.NewFind(&subtreeRows).
		Filter(bson.M{"ancestor_id": unitID.String()}).
		Scan(ctx); err != nil {
		return fmt.Errorf("steward: load subtree: %w", err)
	}
	subtreeIDs := make([]string, len(subtreeRows))
	for i, r := range subtreeRows {
		subtreeIDs[i] = r.DescendantID
	}

	if _, err := s.mdb.NewDelete((*closureModel)(nil)).
		Many().
		Filter(bson.M{
			"descendant_id": bson.M{"$in": subtreeIDs},
			"ancestor_id":   bson.M{"$nin": subtreeIDs},
		}).
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
		if _, err := s.mdb.NewInsert(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("steward: reattach subtree: %w", err)
		}
	}

	u.ParentID = newParentID
	u.UpdatedAt = now()
	m := unitToModel(u)
	if _, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: update unit parent: %w", err)
	}
	return nil
}

func (s *Store) DeleteUnitsByTenant(ctx context.Context, tenantID string) error {
	if _, err := s.mdb.NewDelete((*closureModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete tenant closure rows: %w", err)
	}
	if _, err := s.mdb.NewDelete((*unitModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("steward: delete tenant units: %w", err)
	}
	return nil
}

func (s *Store) subtreeIDs(ctx context.Context, unitID id.OrgUnitID) ([]string, error) {
	var rows []closureModel
	if err := s.mdb.NewFind(&rows).
		Filter(bson.M{"ancestor_id": unitID.String()}).
		Scan(ctx); err != nil {
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
	t := now()
	a.CreatedAt = t
	a.UpdatedAt = t
	if _, err := s.mdb.NewInsert(scopeToModel(a)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create scope: %w", err)
	}
	return nil
}

func (s *Store) GetScope(ctx context.Context, scopeID id.ScopeID) (*scope.Assignment, error) {
	var m scopeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": scopeID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("scope %s: %w", scopeID, scope.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get scope: %w", err)
	}
	return scopeFromModel(&m), nil
}

func (s *Store) UpdateScope(ctx context.Context, a *scope.Assignment) error {
	a.UpdatedAt = now()
	m := scopeToModel(a)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update scope: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("scope %s: %w", a.ID, scope.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteScope(ctx context.Context, scopeID id.ScopeID) error {
	_, err := s.mdb.NewDelete((*scopeModel)(nil)).
		Filter(bson.M{"_id": scopeID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scope: %w", err)
	}
	return nil
}

func (s *Store) ListScopes(ctx context.Context, filter *scope.ListFilter) ([]*scope.Assignment, error) {
	var models []scopeModel
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.UserID != "" {
			f["user_id"] = filter.UserID
		}
		if filter.OrgUnitID != nil {
			f["org_unit_id"] = filter.OrgUnitID.String()
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.UserID != "" {
			f["user_id"] = filter.UserID
		}
		if filter.OrgUnitID != nil {
			f["org_unit_id"] = filter.OrgUnitID.String()
		}
	}
	count, err := s.mdb.NewFind((*scopeModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count scopes: %w", err)
	}
	return count, nil
}

func (s *Store) ScopesCovering(ctx context.Context, tenantID, userID string, unitID id.OrgUnitID) ([]*scope.Assignment, error) {
	var chain []closureModel
	err := s.mdb.NewFind(&chain).
		Filter(bson.M{
			"tenant_id":     tenantID,
			"descendant_id": unitID.String(),
		}).
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
	err = s.mdb.NewFind(&models).
		Filter(bson.M{
			"tenant_id":   tenantID,
			"user_id":     userID,
			"org_unit_id": bson.M{"$in": ancestorIDs},
		}).
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
		result = append(result, scopeFromModel(m))
	}
	return result, nil
}

func (s *Store) DeleteScopesByUnit(ctx context.Context, unitID id.OrgUnitID) error {
	_, err := s.mdb.NewDelete((*scopeModel)(nil)).
		Many().
		Filter(bson.M{"org_unit_id": unitID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scopes by unit: %w", err)
	}
	return nil
}

func (s *Store) DeleteScopesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*scopeModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete scopes by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Employee operations
// ──────────────────────────────────────────────────

func (s *Store) CreateEmployee(ctx context.Context, e *employee.Employee) error {
	if _, err := s.GetEmployeeByUser(ctx, e.TenantID, e.UserID); err == nil {
		return fmt.Errorf("user %q in tenant %q: %w", e.UserID, e.TenantID, employee.ErrAlreadyExists)
	} else if !errors.Is(err, employee.ErrNotFound) {
		return err
	}

	t := now()
	e.CreatedAt = t
	e.UpdatedAt = t
	if _, err := s.mdb.NewInsert(employeeToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, empID id.EmployeeID) (*employee.Employee, error) {
	var m employeeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": empID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("employee %s: %w", empID, employee.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get employee: %w", err)
	}
	return employeeFromModel(&m), nil
}

func (s *Store) GetEmployeeByUser(ctx context.Context, tenantID, userID string) (*employee.Employee, error) {
	var m employeeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "user_id": userID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("employee for user %q: %w", userID, employee.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get employee by user: %w", err)
	}
	return employeeFromModel(&m), nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e *employee.Employee) error {
	e.UpdatedAt = now()
	m := employeeToModel(e)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update employee: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("employee %s: %w", e.ID, employee.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, empID id.EmployeeID) error {
	_, err := s.mdb.NewDelete((*employeeModel)(nil)).
		Filter(bson.M{"_id": empID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete employee: %w", err)
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context, filter *employee.ListFilter) ([]*employee.Employee, error) {
	var models []employeeModel
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.UserID != "" {
			f["user_id"] = filter.UserID
		}
		if filter.OrgUnitID != nil {
			f["org_unit_id"] = filter.OrgUnitID.String()
		}
		if filter.Search != "" {
			f["display_name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.UserID != "" {
			f["user_id"] = filter.UserID
		}
		if filter.OrgUnitID != nil {
			f["org_unit_id"] = filter.OrgUnitID.String()
		}
		if filter.Search != "" {
			f["display_name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	count, err := s.mdb.NewFind((*employeeModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count employees: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteEmployeesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*employeeModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
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
		e.CreatedAt = now()
	}
	if _, err := s.mdb.NewInsert(decisionLogToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	var m decisionLogModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": logID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("decision log %s: %w", logID, decisionlog.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get decision log: %w", err)
	}
	return decisionLogFromModel(&m), nil
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	f := decisionLogFilter(filter)
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*decisionLogModel)(nil)).
		Filter(decisionLogFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count decision logs: %w", err)
	}
	return count, nil
}

func decisionLogFilter(filter *decisionlog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.UserID != "" {
		f["user_id"] = filter.UserID
	}
	if filter.Permission != "" {
		f["permission"] = filter.Permission
	}
	if filter.OrgUnitID != nil {
		f["org_unit_id"] = filter.OrgUnitID.String()
	}
	if filter.EmployeeID != nil {
		f["employee_id"] = filter.EmployeeID.String()
	}
	if filter.Verdict != "" {
		f["verdict"] = filter.Verdict
	}
	if filter.Reason != "" {
		f["reason"] = filter.Reason
	}
	if filter.After != nil || filter.Before != nil {
		dateFilter := bson.M{}
		if filter.After != nil {
			dateFilter["$gte"] = *filter.After
		}
		if filter.Before != nil {
			dateFilter["$lte"] = *filter.Before
		}
		f["created_at"] = dateFilter
	}
	return f
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*decisionLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: purge decision logs: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) DeleteDecisionLogsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*decisionLogModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete decision logs by tenant: %w", err)
	}
	return nil
}
