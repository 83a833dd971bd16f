package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/scope"
)

func (a *API) registerScopeRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("scopes"))

	if err := g.POST("/scopes", a.createScope,
		forge.WithSummary("Create scope assignment"),
		forge.WithDescription("Grants a user access to a unit. The write is guarded against privilege escalation."),
		forge.WithOperationID("createScope"),
		forge.WithRequestSchema(CreateScopeRequest{}),
		forge.WithCreatedResponse(&scope.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/scopes/:scopeId", a.getScope,
		forge.WithSummary("Get scope assignment"),
		forge.WithDescription("Returns details of a specific scope assignment."),
		forge.WithOperationID("getScope"),
		forge.WithResponseSchema(http.StatusOK, "Scope details", &scope.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/scopes/:scopeId", a.updateScope,
		forge.WithSummary("Update scope assignment"),
		forge.WithDescription("Updates an existing scope assignment under the same escalation guard as create."),
		forge.WithOperationID("updateScope"),
		forge.WithRequestSchema(UpdateScopeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated scope", &scope.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/scopes/:scopeId", a.deleteScope,
		forge.WithSummary("Delete scope assignment"),
		forge.WithDescription("Revokes a scope assignment."),
		forge.WithOperationID("deleteScope"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/scopes", a.listScopes,
		forge.WithSummary("List scope assignments"),
		forge.WithDescription("Lists scope assignments with optional filters."),
		forge.WithOperationID("listScopes"),
		forge.WithRequestSchema(ListScopesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Scope list", []*scope.Assignment{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createScope(ctx forge.Context, req *CreateScopeRequest) (*scope.Assignment, error) {
	if req.UserID == "" {
		return nil, forge.BadRequest("user_id is required")
	}
	unitID, err := id.ParseOrgUnitID(req.OrgUnitID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid org_unit_id: %v", err))
	}

	assignment := &scope.Assignment{
		ID:                 id.NewScopeID(),
		UserID:             req.UserID,
		OrgUnitID:          unitID,
		IncludeDescendants: req.IncludeDescendants,
		MinViewableRank:    req.MinViewableRank,
		MaxViewableRank:    req.MaxViewableRank,
		MinAssignableRank:  req.MinAssignableRank,
		MaxAssignableRank:  req.MaxAssignableRank,
		AllowSelfAccess:    req.AllowSelfAccess,
		Reason:             req.Reason,
		Metadata:           req.Metadata,
	}

	if err := a.eng.CreateScope(ctx.Context(), actorFromContext(ctx), assignment); err != nil {
		return nil, mapError(err)
	}

	return assignment, ctx.JSON(http.StatusCreated, assignment)
}

func (a *API) getScope(ctx forge.Context, _ *GetScopeRequest) (*scope.Assignment, error) {
	assignment, err := a.tenantScope(ctx)
	if err != nil {
		return nil, err
	}
	return assignment, ctx.JSON(http.StatusOK, assignment)
}

func (a *API) updateScope(ctx forge.Context, req *UpdateScopeRequest) (*scope.Assignment, error) {
	assignment, err := a.tenantScope(ctx)
	if err != nil {
		return nil, err
	}

	if req.IncludeDescendants != nil {
		assignment.IncludeDescendants = *req.IncludeDescendants
	}
	if req.MinViewableRank != nil {
		assignment.MinViewableRank = req.MinViewableRank
	}
	if req.MaxViewableRank != nil {
		assignment.MaxViewableRank = req.MaxViewableRank
	}
	if req.MinAssignableRank != nil {
		assignment.MinAssignableRank = req.MinAssignableRank
	}
	if req.MaxAssignableRank != nil {
		assignment.MaxAssignableRank = req.MaxAssignableRank
	}
	if req.AllowSelfAccess != nil {
		assignment.AllowSelfAccess = *req.AllowSelfAccess
	}
	if req.Reason != "" {
		assignment.Reason = req.Reason
	}
	if req.Metadata != nil {
		assignment.Metadata = req.Metadata
	}

	if err := a.eng.UpdateScope(ctx.Context(), actorFromContext(ctx), assignment); err != nil {
		return nil, mapError(err)
	}

	return assignment, ctx.JSON(http.StatusOK, assignment)
}

func (a *API) deleteScope(ctx forge.Context, _ *GetScopeRequest) (*struct{}, error) {
	scopeID, err := id.ParseScopeID(ctx.Param("scopeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid scope ID: %v", err))
	}

	if err := a.eng.DeleteScope(ctx.Context(), scopeID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listScopes(ctx forge.Context, req *ListScopesRequest) (*ListResponse[*scope.Assignment], error) {
	_, tenantID := steward.TenantFromContext(ctx.Context())
	filter := &scope.ListFilter{
		TenantID: tenantID,
		UserID:   req.UserID,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}
	if req.OrgUnitID != "" {
		unitID, err := id.ParseOrgUnitID(req.OrgUnitID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid org_unit_id: %v", err))
		}
		filter.OrgUnitID = &unitID
	}

	scopes, err := a.eng.Store().ListScopes(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountScopes(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*scope.Assignment]{
		Items:  scopes,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

// tenantScope loads the assignment named by the :scopeId path parameter and
// hides assignments of other tenants.
func (a *API) tenantScope(ctx forge.Context) (*scope.Assignment, error) {
	scopeID, err := id.ParseScopeID(ctx.Param("scopeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid scope ID: %v", err))
	}

	assignment, err := a.eng.Store().GetScope(ctx.Context(), scopeID)
	if err != nil {
		return nil, mapError(err)
	}
	if _, tenantID := steward.TenantFromContext(ctx.Context()); assignment.TenantID != tenantID {
		return nil, forge.NotFound(fmt.Sprintf("scope %s: not found", scopeID))
	}
	return assignment, nil
}
