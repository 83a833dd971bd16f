package steward

import (
	"testing"

	"github.com/xraph/steward/scope"
)

func TestAdmits(t *testing.T) {
	tests := []struct {
		name   string
		min    *int
		max    *int
		target int
		want   bool
	}{
		{"nil window admits rank 0", nil, nil, 0, true},
		{"zero max admits rank 0", nil, intp(0), 0, true},
		{"nil window rejects management", nil, nil, 3, false},
		{"zero max rejects management", nil, intp(0), 1, false},
		{"management window rejects rank 0", intp(1), intp(5), 0, false},
		{"inside window", intp(3), intp(5), 4, true},
		{"lower bound inclusive", intp(3), intp(5), 3, true},
		{"upper bound inclusive", intp(3), intp(5), 5, true},
		{"above window", intp(3), intp(5), 2, false},
		{"below window", intp(3), intp(5), 6, false},
		{"nil min defaults to most senior", nil, intp(5), 1, true},
		{"zero min defaults to most senior", intp(0), intp(5), 1, true},
		{"max-only window still rejects rank 0", nil, intp(5), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &scope.Assignment{MinViewableRank: tt.min, MaxViewableRank: tt.max}
			if got := Admits(a, tt.target); got != tt.want {
				t.Fatalf("Admits(min=%v max=%v, %d) = %v, want %v",
					ptrVal(tt.min), ptrVal(tt.max), tt.target, got, tt.want)
			}
		})
	}
}

func TestAdmitsAssignable(t *testing.T) {
	a := &scope.Assignment{
		MinViewableRank: intp(1), MaxViewableRank: intp(10),
		MinAssignableRank: intp(4), MaxAssignableRank: intp(6),
	}

	// Assignable is governed by its own window, not the viewable one.
	if AdmitsAssignable(a, 2) {
		t.Fatal("rank 2 should not be assignable with window [4,6]")
	}
	if !AdmitsAssignable(a, 5) {
		t.Fatal("rank 5 should be assignable with window [4,6]")
	}
	if AdmitsAssignable(a, 0) {
		t.Fatal("rank 0 should not be assignable with a management window")
	}
}

func ptrVal(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
