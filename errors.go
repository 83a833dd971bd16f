package steward

import (
	"errors"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/employee"
	"github.com/xraph/steward/orgunit"
	"github.com/xraph/steward/scope"
)

var (
	// ErrAccessDenied is returned by Enforce when an authorization
	// decision comes back deny.
	ErrAccessDenied = errors.New("steward: access denied")

	// ErrDecisionUnavailable wraps infrastructure failures during an
	// authorization decision. It must never be collapsed into a verdict:
	// callers fail closed but log it as an operational error, not a deny.
	ErrDecisionUnavailable = errors.New("steward: decision unavailable")

	// ErrPrivilegeEscalation is returned when a scope write would grant a
	// rank range more senior than the writer's own assignable ceiling.
	ErrPrivilegeEscalation = errors.New("steward: privilege escalation blocked")

	// ErrRankNotAssignable is returned when a rank assignment falls
	// outside every assignable window the actor holds on the unit.
	ErrRankNotAssignable = errors.New("steward: rank not assignable")

	// ErrTenantMismatch is returned when a referenced entity belongs to a
	// different tenant than the caller's scope.
	ErrTenantMismatch = errors.New("steward: tenant mismatch")

	// ErrUnitNotFound is returned when an organizational unit cannot be found.
	ErrUnitNotFound = orgunit.ErrNotFound

	// ErrCycleDetected is returned when a hierarchy move would create a loop.
	ErrCycleDetected = orgunit.ErrCycleDetected

	// ErrInvalidBlock is returned for malformed inheritance block patterns.
	ErrInvalidBlock = orgunit.ErrInvalidBlock

	// ErrScopeNotFound is returned when a scope assignment cannot be found.
	ErrScopeNotFound = scope.ErrNotFound

	// ErrInvalidRankRange is returned for malformed scope rank windows.
	ErrInvalidRankRange = scope.ErrInvalidRankRange

	// ErrEmployeeNotFound is returned when an employee cannot be found.
	ErrEmployeeNotFound = employee.ErrNotFound

	// ErrInvalidRank is returned for management levels outside 0..255.
	ErrInvalidRank = employee.ErrInvalidRank

	// ErrEmployeeExists is returned when a tenant already has an employee
	// record for the user.
	ErrEmployeeExists = employee.ErrAlreadyExists

	// ErrDecisionLogNotFound is returned when a decision log entry cannot
	// be found.
	ErrDecisionLogNotFound = decisionlog.ErrNotFound
)
