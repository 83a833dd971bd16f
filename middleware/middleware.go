// Package middleware provides HTTP authorization middleware for Steward.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
)

// Require enforces an authorization decision. It resolves the user from the
// request context and the target unit from the named path parameter, then
// checks whether the user can exercise the permission on that unit.
func Require(eng *steward.Engine, permission, unitParam string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}

			unitID, err := id.ParseOrgUnitID(ctx.Param(unitParam))
			if err != nil {
				return denyResponse(ctx)
			}

			err = eng.Enforce(ctx.Context(), &steward.AuthorizeRequest{
				UserID:     userID,
				Permission: permission,
				OrgUnitID:  unitID,
			})
			if err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if the user holds ANY of the permissions on
// the unit named by the path parameter.
func RequireAny(eng *steward.Engine, unitParam string, permissions ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}

			unitID, err := id.ParseOrgUnitID(ctx.Param(unitParam))
			if err != nil {
				return denyResponse(ctx)
			}

			for _, permission := range permissions {
				result, err := eng.Authorize(ctx.Context(), &steward.AuthorizeRequest{
					UserID:     userID,
					Permission: permission,
					OrgUnitID:  unitID,
				})
				if err == nil && result.Allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if the user holds ALL of the permissions
// on the unit named by the path parameter.
func RequireAll(eng *steward.Engine, unitParam string, permissions ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}

			unitID, err := id.ParseOrgUnitID(ctx.Param(unitParam))
			if err != nil {
				return denyResponse(ctx)
			}

			for _, permission := range permissions {
				err := eng.Enforce(ctx.Context(), &steward.AuthorizeRequest{
					UserID:     userID,
					Permission: permission,
					OrgUnitID:  unitID,
				})
				if err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
