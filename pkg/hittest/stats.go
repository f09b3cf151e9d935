package hittest

import (
	"fmt"
	"math"
)

// StatsSnapshot is a point-in-time view of the index for diagnostics.
// JSON tags match the debug server's wire shape.
type StatsSnapshot struct {
	Count     int  `json:"count"`
	XLen      int  `json:"xLen"`
	YLen      int  `json:"yLen"`
	XHeight   int  `json:"xHeight"`
	YHeight   int  `json:"yHeight"`
	XBalanced bool `json:"xBalanced"`
	YBalanced bool `json:"yBalanced"`
	// OK is VerifyIntegrity at snapshot time.
	OK bool `json:"ok"`
}

// StatsSnapshot captures current counts, tree heights, and balance status.
func (s *System) StatsSnapshot() StatsSnapshot {
	return StatsSnapshot{
		Count:     s.count,
		XLen:      s.xTree.Len(),
		YLen:      s.yTree.Len(),
		XHeight:   s.xTree.Height(),
		YHeight:   s.yTree.Height(),
		XBalanced: s.xTree.Balanced(),
		YBalanced: s.yTree.Balanced(),
		OK:        s.VerifyIntegrity(),
	}
}

// Stats returns a human-readable one-line summary for debugging, e.g.
//
//	hittest: 128 widgets, x-tree h=9 (balanced), y-tree h=8 (balanced), integrity ok
func (s *System) Stats() string {
	snap := s.StatsSnapshot()
	integrity := "ok"
	if !snap.OK {
		integrity = "BROKEN"
	}
	return fmt.Sprintf(
		"hittest: %d widgets, x-tree h=%d (%s), y-tree h=%d (%s), integrity %s",
		snap.Count,
		snap.XHeight, balanceWord(snap.XBalanced),
		snap.YHeight, balanceWord(snap.YBalanced),
		integrity,
	)
}

func balanceWord(balanced bool) string {
	if balanced {
		return "balanced"
	}
	return "UNBALANCED"
}

// IdealHeight returns the minimum possible AVL height for the current
// element count, a reference point when reading Stats output.
func (s *System) IdealHeight() int {
	if s.count == 0 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(s.count)))) + 1
}
