package employee

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for employees.
type Store interface {
	// CreateEmployee persists a new employee record.
	CreateEmployee(ctx context.Context, e *Employee) error

	// GetEmployee retrieves an employee by ID.
	GetEmployee(ctx context.Context, empID id.EmployeeID) (*Employee, error)

	// GetEmployeeByUser retrieves the employee record for a user within a
	// tenant.
	GetEmployeeByUser(ctx context.Context, tenantID, userID string) (*Employee, error)

	// UpdateEmployee updates an existing employee.
	UpdateEmployee(ctx context.Context, e *Employee) error

	// DeleteEmployee removes an employee.
	DeleteEmployee(ctx context.Context, empID id.EmployeeID) error

	// ListEmployees returns employees matching the filter.
	ListEmployees(ctx context.Context, filter *ListFilter) ([]*Employee, error)

	// CountEmployees returns the number of employees matching the filter.
	CountEmployees(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteEmployeesByTenant removes all employees for a tenant.
	DeleteEmployeesByTenant(ctx context.Context, tenantID string) error
}
