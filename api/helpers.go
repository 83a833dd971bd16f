package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, steward.ErrCycleDetected) || errors.Is(err, steward.ErrInvalidBlock) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrInvalidRankRange) || errors.Is(err, steward.ErrInvalidRank) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrEmployeeExists) || errors.Is(err, steward.ErrTenantMismatch) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrPrivilegeEscalation) || errors.Is(err, steward.ErrRankNotAssignable) {
		return forge.Forbidden(err.Error())
	}
	if errors.Is(err, steward.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, steward.ErrUnitNotFound) ||
		errors.Is(err, steward.ErrScopeNotFound) ||
		errors.Is(err, steward.ErrEmployeeNotFound) ||
		errors.Is(err, steward.ErrDecisionLogNotFound)
}

// actorFromContext resolves the acting user for guarded scope and rank
// writes. Empty means a trusted system caller.
func actorFromContext(ctx forge.Context) string {
	return forge.UserIDFromContext(ctx.Context())
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
