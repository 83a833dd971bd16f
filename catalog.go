package steward

import (
	"context"
	"sync"
)

// PermissionCatalog is the external permission system collaborating with the
// engine. Steward treats permission names as opaque "resource.action"
// strings; what a user holds is the catalog's business.
type PermissionCatalog interface {
	// UserHasPermission reports whether the user holds the permission
	// within the tenant.
	UserHasPermission(ctx context.Context, tenantID, userID, permission string) (bool, error)
}

// CatalogFunc adapts a plain function to the PermissionCatalog interface.
type CatalogFunc func(ctx context.Context, tenantID, userID, permission string) (bool, error)

// UserHasPermission implements PermissionCatalog.
func (f CatalogFunc) UserHasPermission(ctx context.Context, tenantID, userID, permission string) (bool, error) {
	return f(ctx, tenantID, userID, permission)
}

// StaticCatalog is a thread-safe in-memory PermissionCatalog for tests and
// standalone deployments. Grants may use "resource.*" wildcards.
type StaticCatalog struct {
	mu     sync.RWMutex
	grants map[string]map[string][]string // tenant -> user -> granted names
}

// Compile-time interface check.
var _ PermissionCatalog = (*StaticCatalog)(nil)

// NewStaticCatalog creates an empty static catalog.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{grants: make(map[string]map[string][]string)}
}

// Grant records a permission (or wildcard) for a user.
func (c *StaticCatalog) Grant(tenantID, userID, permission string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	users, ok := c.grants[tenantID]
	if !ok {
		users = make(map[string][]string)
		c.grants[tenantID] = users
	}
	for _, p := range users[userID] {
		if p == permission {
			return
		}
	}
	users[userID] = append(users[userID], permission)
}

// Revoke removes a previously granted permission name.
func (c *StaticCatalog) Revoke(tenantID, userID, permission string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	perms := c.grants[tenantID][userID]
	for i, p := range perms {
		if p == permission {
			c.grants[tenantID][userID] = append(perms[:i], perms[i+1:]...)
			return
		}
	}
}

// UserHasPermission implements PermissionCatalog.
func (c *StaticCatalog) UserHasPermission(_ context.Context, tenantID, userID, permission string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, granted := range c.grants[tenantID][userID] {
		if matchPermission(granted, permission) {
			return true, nil
		}
	}
	return false, nil
}
