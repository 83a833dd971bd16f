package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	req := &steward.AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  id.NewOrgUnitID(),
	}
	result := &steward.AuthorizeResult{Allowed: true, Verdict: steward.VerdictAllow}

	// Miss
	_, ok := c.Get(ctx, "t1", req)
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, "t1", req, result)
	got, ok := c.Get(ctx, "t1", req)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.Allowed {
		t.Fatal("expected allowed")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	req := &steward.AuthorizeRequest{
		UserID:     "u1",
		Permission: "employee.read",
		OrgUnitID:  id.NewOrgUnitID(),
	}
	result := &steward.AuthorizeResult{Allowed: true}

	c.Set(ctx, "t1", req, result)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "t1", req)
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	unit := id.NewOrgUnitID()
	req1 := &steward.AuthorizeRequest{UserID: "u1", Permission: "employee.read", OrgUnitID: unit}
	req2 := &steward.AuthorizeRequest{UserID: "u2", Permission: "employee.update", OrgUnitID: unit}

	c.Set(ctx, "t1", req1, &steward.AuthorizeResult{Allowed: true})
	c.Set(ctx, "t1", req2, &steward.AuthorizeResult{Allowed: false})
	c.Set(ctx, "t2", req1, &steward.AuthorizeResult{Allowed: true})

	c.InvalidateTenant(ctx, "t1")

	if _, ok := c.Get(ctx, "t1", req1); ok {
		t.Fatal("t1 req1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t1", req2); ok {
		t.Fatal("t1 req2 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t2", req1); !ok {
		t.Fatal("t2 req1 should still be cached")
	}
}

func TestMemoryCacheInvalidateUser(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	unit := id.NewOrgUnitID()
	req1 := &steward.AuthorizeRequest{UserID: "u1", Permission: "employee.read", OrgUnitID: unit}
	req2 := &steward.AuthorizeRequest{UserID: "u2", Permission: "employee.read", OrgUnitID: unit}

	c.Set(ctx, "t1", req1, &steward.AuthorizeResult{Allowed: true})
	c.Set(ctx, "t1", req2, &steward.AuthorizeResult{Allowed: true})

	c.InvalidateUser(ctx, "t1", "u1")

	if _, ok := c.Get(ctx, "t1", req1); ok {
		t.Fatal("u1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t1", req2); !ok {
		t.Fatal("u2 should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		req := &steward.AuthorizeRequest{
			UserID:     "u1",
			Permission: "employee.read",
			OrgUnitID:  id.NewOrgUnitID(),
		}
		c.Set(ctx, "t1", req, &steward.AuthorizeResult{Allowed: true})
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}

func TestMemoryCacheKeyDistinguishesEmployee(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	unit := id.NewOrgUnitID()
	emp := id.NewEmployeeID()
	base := &steward.AuthorizeRequest{UserID: "u1", Permission: "employee.read", OrgUnitID: unit}
	narrowed := &steward.AuthorizeRequest{UserID: "u1", Permission: "employee.read", OrgUnitID: unit, EmployeeID: &emp}

	c.Set(ctx, "t1", base, &steward.AuthorizeResult{Allowed: true})

	if _, ok := c.Get(ctx, "t1", narrowed); ok {
		t.Fatal("employee-narrowed request must not hit the unit-level entry")
	}
}
