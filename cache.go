package steward

import "context"

// Cache provides caching for authorization decision results. Implementations
// must be safe for concurrent use; the engine invalidates on every hierarchy,
// scope, block, or rank mutation.
type Cache interface {
	// Get returns a cached decision result, if available.
	Get(ctx context.Context, tenantID string, req *AuthorizeRequest) (*AuthorizeResult, bool)

	// Set stores a decision result in the cache.
	Set(ctx context.Context, tenantID string, req *AuthorizeRequest, result *AuthorizeResult)

	// InvalidateTenant removes all cached results for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)

	// InvalidateUser removes all cached results for a specific user.
	InvalidateUser(ctx context.Context, tenantID, userID string)
}
