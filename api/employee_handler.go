package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/id"
)

func (a *API) registerEmployeeRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("employees"))

	if err := g.POST("/employees", a.createEmployee,
		forge.WithSummary("Create employee"),
		forge.WithDescription("Creates an employee record in an organizational unit."),
		forge.WithOperationID("createEmployee"),
		forge.WithRequestSchema(CreateEmployeeRequest{}),
		forge.WithCreatedResponse(&employee.Employee{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/employees/:employeeId", a.getEmployee,
		forge.WithSummary("Get employee"),
		forge.WithDescription("Returns details of a specific employee."),
		forge.WithOperationID("getEmployee"),
		forge.WithResponseSchema(http.StatusOK, "Employee details", &employee.Employee{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/employees/:employeeId", a.deleteEmployee,
		forge.WithSummary("Delete employee"),
		forge.WithDescription("Removes an employee record."),
		forge.WithOperationID("deleteEmployee"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/employees", a.listEmployees,
		forge.WithSummary("List employees"),
		forge.WithDescription("Lists employees with optional filters."),
		forge.WithOperationID("listEmployees"),
		forge.WithRequestSchema(ListEmployeesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Employee list", []*employee.Employee{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.PUT("/employees/:employeeId/rank", a.assignRank,
		forge.WithSummary("Assign management level"),
		forge.WithDescription("Sets an employee's management level. The actor needs an assignable window admitting the rank."),
		forge.WithOperationID("assignEmployeeRank"),
		forge.WithRequestSchema(AssignRankRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated employee", &employee.Employee{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createEmployee(ctx forge.Context, req *CreateEmployeeRequest) (*employee.Employee, error) {
	if req.UserID == "" {
		return nil, forge.BadRequest("user_id is required")
	}
	unitID, err := id.ParseOrgUnitID(req.OrgUnitID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid org_unit_id: %v", err))
	}

	emp := &employee.Employee{
		ID:              id.NewEmployeeID(),
		UserID:          req.UserID,
		OrgUnitID:       unitID,
		DisplayName:     req.DisplayName,
		ManagementLevel: req.ManagementLevel,
		Metadata:        req.Metadata,
	}

	if err := a.eng.CreateEmployee(ctx.Context(), emp); err != nil {
		return nil, mapError(err)
	}

	return emp, ctx.JSON(http.StatusCreated, emp)
}

func (a *API) getEmployee(ctx forge.Context, _ *GetEmployeeRequest) (*employee.Employee, error) {
	emp, err := a.tenantEmployee(ctx)
	if err != nil {
		return nil, err
	}
	return emp, ctx.JSON(http.StatusOK, emp)
}

func (a *API) deleteEmployee(ctx forge.Context, _ *GetEmployeeRequest) (*struct{}, error) {
	emp, err := a.tenantEmployee(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().DeleteEmployee(ctx.Context(), emp.ID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listEmployees(ctx forge.Context, req *ListEmployeesRequest) (*ListResponse[*employee.Employee], error) {
	_, tenantID := steward.TenantFromContext(ctx.Context())
	filter := &employee.ListFilter{
		TenantID: tenantID,
		UserID:   req.UserID,
		Search:   req.Search,
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

	employees, err := a.eng.Store().ListEmployees(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountEmployees(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*employee.Employee]{
		Items:  employees,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) assignRank(ctx forge.Context, req *AssignRankRequest) (*employee.Employee, error) {
	empID, err := id.ParseEmployeeID(ctx.Param("employeeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid employee ID: %v", err))
	}

	if err := a.eng.AssignRank(ctx.Context(), actorFromContext(ctx), empID, req.Rank); err != nil {
		return nil, mapError(err)
	}

	emp, err := a.eng.Store().GetEmployee(ctx.Context(), empID)
	if err != nil {
		return nil, mapError(err)
	}

	return emp, ctx.JSON(http.StatusOK, emp)
}

// tenantEmployee loads the employee named by the :employeeId path parameter
// and hides employees of other tenants.
func (a *API) tenantEmployee(ctx forge.Context) (*employee.Employee, error) {
	empID, err := id.ParseEmployeeID(ctx.Param("employeeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid employee ID: %v", err))
	}

	emp, err := a.eng.Store().GetEmployee(ctx.Context(), empID)
	if err != nil {
		return nil, mapError(err)
	}
	if _, tenantID := steward.TenantFromContext(ctx.Context()); emp.TenantID != tenantID {
		return nil, forge.NotFound(fmt.Sprintf("employee %s: not found", empID))
	}
	return emp, nil
}
