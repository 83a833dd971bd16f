package scope

import (
	"errors"
	"testing"

	"github.com/xraph/steward/id"
)

func intp(v int) *int { return &v }

func validAssignment() *Assignment {
	return &Assignment{
		ID:        id.NewScopeID(),
		TenantID:  "t1",
		UserID:    "u1",
		OrgUnitID: id.NewOrgUnitID(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Assignment)
		wantErr bool
	}{
		{"default non-management window", func(a *Assignment) {}, false},
		{"explicit zero max", func(a *Assignment) { a.MaxViewableRank = intp(0) }, false},
		{"management window", func(a *Assignment) {
			a.MinViewableRank = intp(1)
			a.MaxViewableRank = intp(255)
		}, false},
		{"management window without min", func(a *Assignment) {
			a.MaxViewableRank = intp(10)
		}, false},
		{"single-rank window", func(a *Assignment) {
			a.MinViewableRank = intp(5)
			a.MaxViewableRank = intp(5)
		}, false},
		{"assignable window", func(a *Assignment) {
			a.MinAssignableRank = intp(3)
			a.MaxAssignableRank = intp(20)
		}, false},
		{"missing user", func(a *Assignment) { a.UserID = "" }, true},
		{"missing unit", func(a *Assignment) { a.OrgUnitID = id.Nil }, true},
		{"positive min with nil max", func(a *Assignment) {
			a.MinViewableRank = intp(2)
		}, true},
		{"positive min with zero max", func(a *Assignment) {
			a.MinViewableRank = intp(2)
			a.MaxViewableRank = intp(0)
		}, true},
		{"min above max", func(a *Assignment) {
			a.MinViewableRank = intp(10)
			a.MaxViewableRank = intp(5)
		}, true},
		{"implicit min above max", func(a *Assignment) {
			// max > 0 implies min 1, which is fine; max must still be >= 1
			a.MaxViewableRank = intp(1)
		}, false},
		{"rank above 255", func(a *Assignment) {
			a.MaxViewableRank = intp(256)
		}, true},
		{"negative rank", func(a *Assignment) {
			a.MinViewableRank = intp(-1)
			a.MaxViewableRank = intp(5)
		}, true},
		{"invalid assignable pair", func(a *Assignment) {
			a.MinAssignableRank = intp(4)
			a.MaxAssignableRank = intp(0)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAssignment()
			tt.mutate(a)
			err := a.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidRankRange) {
				t.Fatalf("expected ErrInvalidRankRange, got %v", err)
			}
		})
	}
}
