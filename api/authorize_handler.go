package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
)

func (a *API) registerAuthorizeRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/authorize", a.authorize,
		forge.WithSummary("Authorization decision"),
		forge.WithDescription("Evaluates whether the user can exercise the permission on the organizational unit."),
		forge.WithOperationID("authzAuthorize"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision result", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/batch-authorize", a.batchAuthorize,
		forge.WithSummary("Batch authorization decisions"),
		forge.WithDescription("Evaluates multiple authorization decisions in one request."),
		forge.WithOperationID("authzBatchAuthorize"),
		forge.WithRequestSchema(BatchAuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchAuthorizeResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) authorize(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	dreq, err := toAuthorizeRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Authorize(ctx.Context(), dreq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toAuthorizeResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	dreq, err := toAuthorizeRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Authorize(ctx.Context(), dreq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toAuthorizeResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchAuthorize(ctx forge.Context, req *BatchAuthorizeRequest) (*BatchAuthorizeResponse, error) {
	if len(req.Requests) == 0 {
		return nil, forge.BadRequest("requests cannot be empty")
	}

	results := make([]AuthorizeResponse, len(req.Requests))
	for i := range req.Requests {
		dreq, err := toAuthorizeRequest(&req.Requests[i])
		if err != nil {
			return nil, err
		}
		result, err := a.eng.Authorize(ctx.Context(), dreq)
		if err != nil {
			return nil, mapError(err)
		}
		results[i] = *toAuthorizeResponse(result)
	}

	resp := &BatchAuthorizeResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toAuthorizeRequest(r *AuthorizeRequest) (*steward.AuthorizeRequest, error) {
	if r.UserID == "" || r.Permission == "" || r.OrgUnitID == "" {
		return nil, forge.BadRequest("user_id, permission, and org_unit_id are required")
	}
	unitID, err := id.ParseOrgUnitID(r.OrgUnitID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid org_unit_id: %v", err))
	}
	req := &steward.AuthorizeRequest{
		UserID:     r.UserID,
		Permission: r.Permission,
		OrgUnitID:  unitID,
	}
	if r.EmployeeID != "" {
		empID, err := id.ParseEmployeeID(r.EmployeeID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid employee_id: %v", err))
		}
		req.EmployeeID = &empID
	}
	return req, nil
}

func toAuthorizeResponse(r *steward.AuthorizeResult) *AuthorizeResponse {
	resp := &AuthorizeResponse{
		Allowed:    r.Allowed,
		Verdict:    string(r.Verdict),
		Reason:     string(r.Reason),
		Detail:     r.Detail,
		EvalTimeNs: r.EvalTimeNs,
	}
	for _, s := range r.MatchedScopes {
		resp.MatchedScopes = append(resp.MatchedScopes, s.String())
	}
	return resp
}
