package steward

import "github.com/xraph/steward/scope"

// Management level constants. Smaller numbers denote higher authority.
const (
	// NonManagement is the level of a front-line employee.
	NonManagement = 0

	// HighestRank is the most senior management level.
	HighestRank = 1

	// LowestRank is the least senior management level.
	LowestRank = scope.MaxRank
)

// Admits reports whether the scope's viewable rank window covers targetRank.
//
// Rank 0 is admitted only by a window whose max is nil or zero. A positive
// rank is admitted only by a window with a non-zero max where
// (min ?? 1) <= targetRank <= max. The two conditions are mutually
// exclusive for a single window, so no assignment can claim both the
// non-management population and a management range at once.
func Admits(a *scope.Assignment, targetRank int) bool {
	return admitsWindow(a.MinViewableRank, a.MaxViewableRank, targetRank)
}

// AdmitsAssignable reports whether the scope's assignable rank window covers
// targetRank. It governs which management levels the scope holder may assign
// to others.
func AdmitsAssignable(a *scope.Assignment, targetRank int) bool {
	return admitsWindow(a.MinAssignableRank, a.MaxAssignableRank, targetRank)
}

func admitsWindow(min, max *int, target int) bool {
	if target == NonManagement {
		return max == nil || *max == 0
	}
	if max == nil || *max == 0 {
		return false
	}
	lo := HighestRank
	if min != nil && *min > 0 {
		lo = *min
	}
	return target >= lo && target <= *max
}
