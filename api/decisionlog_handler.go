package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/id"
)

func (a *API) registerDecisionLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("decision-logs"))

	if err := g.GET("/decision-logs", a.listDecisionLogs,
		forge.WithSummary("Query decision logs"),
		forge.WithDescription("Returns authorization decision audit logs with optional filters."),
		forge.WithOperationID("listDecisionLogs"),
		forge.WithRequestSchema(ListDecisionLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision log list", []*decisionlog.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/decision-logs/:logId", a.getDecisionLog,
		forge.WithSummary("Get decision log entry"),
		forge.WithDescription("Returns a single decision log entry."),
		forge.WithOperationID("getDecisionLog"),
		forge.WithResponseSchema(http.StatusOK, "Decision log entry", &decisionlog.Entry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listDecisionLogs(ctx forge.Context, req *ListDecisionLogsRequest) (*ListResponse[*decisionlog.Entry], error) {
	_, tenantID := steward.TenantFromContext(ctx.Context())
	filter := &decisionlog.QueryFilter{
		TenantID:   tenantID,
		UserID:     req.UserID,
		Permission: req.Permission,
		Verdict:    req.Verdict,
		Reason:     req.Reason,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}
	if req.OrgUnitID != "" {
		unitID, err := id.ParseOrgUnitID(req.OrgUnitID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid org_unit_id: %v", err))
		}
		filter.OrgUnitID = &unitID
	}
	if req.EmployeeID != "" {
		empID, err := id.ParseEmployeeID(req.EmployeeID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid employee_id: %v", err))
		}
		filter.EmployeeID = &empID
	}
	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	logs, err := a.eng.Store().ListDecisionLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountDecisionLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*decisionlog.Entry]{
		Items:  logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getDecisionLog(ctx forge.Context, _ *GetDecisionLogRequest) (*decisionlog.Entry, error) {
	logID, err := id.ParseDecisionLogID(ctx.Param("logId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid decision log ID: %v", err))
	}

	entry, err := a.eng.Store().GetDecisionLog(ctx.Context(), logID)
	if err != nil {
		return nil, mapError(err)
	}
	if _, tenantID := steward.TenantFromContext(ctx.Context()); entry.TenantID != tenantID {
		return nil, forge.NotFound(fmt.Sprintf("decision log %s: not found", logID))
	}

	return entry, ctx.JSON(http.StatusOK, entry)
}
