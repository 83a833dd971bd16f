package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/orgunit"
)

func (a *API) registerUnitRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("org-units"))

	if err := g.POST("/units", a.createUnit,
		forge.WithSummary("Create organizational unit"),
		forge.WithDescription("Creates a new unit, optionally under a parent."),
		forge.WithOperationID("createUnit"),
		forge.WithRequestSchema(CreateUnitRequest{}),
		forge.WithCreatedResponse(&orgunit.Unit{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/units/:unitId", a.getUnit,
		forge.WithSummary("Get organizational unit"),
		forge.WithDescription("Returns details of a specific unit."),
		forge.WithOperationID("getUnit"),
		forge.WithResponseSchema(http.StatusOK, "Unit details", &orgunit.Unit{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/units/:unitId", a.updateUnit,
		forge.WithSummary("Update organizational unit"),
		forge.WithDescription("Updates a unit's name, type, or metadata. Reparenting goes through the move endpoint."),
		forge.WithOperationID("updateUnit"),
		forge.WithRequestSchema(UpdateUnitRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated unit", &orgunit.Unit{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/units/:unitId", a.deleteUnit,
		forge.WithSummary("Delete organizational unit"),
		forge.WithDescription("Deletes a unit and its whole subtree, cascading to scopes and employees."),
		forge.WithOperationID("deleteUnit"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/units", a.listUnits,
		forge.WithSummary("List organizational units"),
		forge.WithDescription("Lists units with optional filters."),
		forge.WithOperationID("listUnits"),
		forge.WithRequestSchema(ListUnitsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Unit list", []*orgunit.Unit{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/units/:unitId/move", a.moveUnit,
		forge.WithSummary("Move organizational unit"),
		forge.WithDescription("Reparents a unit; the whole subtree follows. Rejects moves that would create a cycle."),
		forge.WithOperationID("moveUnit"),
		forge.WithRequestSchema(MoveUnitRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/units/:unitId/block", a.setInheritanceBlock,
		forge.WithSummary("Set inheritance block"),
		forge.WithDescription("Replaces the unit's inheritance block configuration. An empty permission list clears it."),
		forge.WithOperationID("setInheritanceBlock"),
		forge.WithRequestSchema(SetBlockRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/units/:unitId/ancestors", a.listAncestors,
		forge.WithSummary("List ancestors"),
		forge.WithDescription("Returns the unit's ancestor chain ordered nearest first."),
		forge.WithOperationID("listUnitAncestors"),
		forge.WithResponseSchema(http.StatusOK, "Ancestor chain", []orgunit.ClosureEntry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/units/:unitId/descendants", a.listDescendants,
		forge.WithSummary("List descendants"),
		forge.WithDescription("Returns the unit's whole subtree ordered shallowest first."),
		forge.WithOperationID("listUnitDescendants"),
		forge.WithResponseSchema(http.StatusOK, "Descendant list", []orgunit.ClosureEntry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createUnit(ctx forge.Context, req *CreateUnitRequest) (*orgunit.Unit, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	u := &orgunit.Unit{
		ID:       id.NewOrgUnitID(),
		Name:     req.Name,
		Type:     req.Type,
		Metadata: req.Metadata,
	}
	if req.ParentID != "" {
		pid, err := id.ParseOrgUnitID(req.ParentID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid parent_id: %v", err))
		}
		u.ParentID = &pid
	}
	if req.Block != nil {
		u.Block = &orgunit.BlockConfig{
			BlockedPermissions:   req.Block.BlockedPermissions,
			AppliesToDescendants: req.Block.AppliesToDescendants,
			Reason:               req.Block.Reason,
		}
	}

	if err := a.eng.CreateUnit(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}

	return u, ctx.JSON(http.StatusCreated, u)
}

func (a *API) getUnit(ctx forge.Context, _ *GetUnitRequest) (*orgunit.Unit, error) {
	u, err := a.tenantUnit(ctx)
	if err != nil {
		return nil, err
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) updateUnit(ctx forge.Context, req *UpdateUnitRequest) (*orgunit.Unit, error) {
	u, err := a.tenantUnit(ctx)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Type != "" {
		u.Type = req.Type
	}
	if req.Metadata != nil {
		u.Metadata = req.Metadata
	}

	if err := a.eng.Store().UpdateUnit(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}

	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) deleteUnit(ctx forge.Context, _ *GetUnitRequest) (*struct{}, error) {
	unitID, err := id.ParseOrgUnitID(ctx.Param("unitId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid unit ID: %v", err))
	}

	if err := a.eng.DeleteUnit(ctx.Context(), unitID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listUnits(ctx forge.Context, req *ListUnitsRequest) (*ListResponse[*orgunit.Unit], error) {
	_, tenantID := steward.TenantFromContext(ctx.Context())
	filter := &orgunit.ListFilter{
		TenantID: tenantID,
		Type:     req.Type,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}
	if req.ParentID != "" {
		pid, err := id.ParseOrgUnitID(req.ParentID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid parent_id: %v", err))
		}
		filter.ParentID = &pid
	}

	units, err := a.eng.Store().ListUnits(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountUnits(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*orgunit.Unit]{
		Items:  units,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) moveUnit(ctx forge.Context, req *MoveUnitRequest) (*struct{}, error) {
	unitID, err := id.ParseOrgUnitID(ctx.Param("unitId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid unit ID: %v", err))
	}

	var newParentID *id.OrgUnitID
	if req.NewParentID != "" {
		pid, err := id.ParseOrgUnitID(req.NewParentID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid new_parent_id: %v", err))
		}
		newParentID = &pid
	}

	if err := a.eng.MoveUnit(ctx.Context(), unitID, newParentID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) setInheritanceBlock(ctx forge.Context, req *SetBlockRequest) (*struct{}, error) {
	unitID, err := id.ParseOrgUnitID(ctx.Param("unitId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid unit ID: %v", err))
	}

	var cfg *orgunit.BlockConfig
	if len(req.BlockedPermissions) > 0 {
		cfg = &orgunit.BlockConfig{
			BlockedPermissions:   req.BlockedPermissions,
			AppliesToDescendants: req.AppliesToDescendants,
			Reason:               req.Reason,
		}
	}

	if err := a.eng.SetInheritanceBlock(ctx.Context(), unitID, cfg); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listAncestors(ctx forge.Context, _ *GetUnitRequest) ([]orgunit.ClosureEntry, error) {
	unitID, err := id.ParseOrgUnitID(ctx.Param("unitId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid unit ID: %v", err))
	}

	_, tenantID := steward.TenantFromContext(ctx.Context())
	entries, err := a.eng.Store().Ancestors(ctx.Context(), tenantID, unitID)
	if err != nil {
		return nil, mapError(err)
	}

	return entries, ctx.JSON(http.StatusOK, entries)
}

func (a *API) listDescendants(ctx forge.Context, _ *GetUnitRequest) ([]orgunit.ClosureEntry, error) {
	unitID, err := id.ParseOrgUnitID(ctx.Param("unitId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid unit ID: %v", err))
	}

	_, tenantID := steward.TenantFromContext(ctx.Context())
	entries, err := a.eng.Store().Descendants(ctx.Context(), tenantID, unitID)
	if err != nil {
		return nil, mapError(err)
	}

	return entries, ctx.JSON(http.StatusOK, entries)
}

// tenantUnit loads the unit named by the :unitId path parameter and hides
// units of other tenants.
func (a *API) tenantUnit(ctx forge.Context) (*orgunit.Unit, error) {
	unitID, err := id.ParseOrgUnitID(ctx.Param("unitId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid unit ID: %v", err))
	}

	u, err := a.eng.Store().GetUnit(ctx.Context(), unitID)
	if err != nil {
		return nil, mapError(err)
	}
	if _, tenantID := steward.TenantFromContext(ctx.Context()); u.TenantID != tenantID {
		return nil, forge.NotFound(fmt.Sprintf("unit %s: not found", unitID))
	}
	return u, nil
}
