package castle

import (
	"slices"

	"github.com/vovakirdan/tui-castle/internal/core"
)

// CapacityTable maps level 1..6 (index 0..5) to the maximum number of
// simultaneous parts at that level.
type CapacityTable [LevelCount]int

// DefaultCapacity returns 4, 5, 6, 6, 4, 3.
func DefaultCapacity() CapacityTable {
	return CapacityTable{4, 5, 6, 6, 4, 3}
}

// Of returns the capacity of level l, or 0 for invalid levels.
func (t CapacityTable) Of(l int) int {
	if !ValidLevel(l) {
		return 0
	}
	return t[l-1]
}

// Gate computes which part levels may legally be spawned next.
type Gate struct {
	caps CapacityTable
}

// NewGate creates a gate over a capacity table.
func NewGate(caps CapacityTable) *Gate {
	return &Gate{caps: caps}
}

// Capacity returns the capacity table.
func (g *Gate) Capacity() CapacityTable {
	return g.caps
}

// Eligible returns the spawnable levels in ascending order: every level
// from 1 up to one above the current maximum that is below capacity.
// An empty castle therefore only offers level 1. An empty result is a
// deadlock, not an error.
func (g *Gate) Eligible(a CastleAggregate) Eligibility {
	top := core.Min(a.MaxLevel+1, MaxLevel)
	levels := make([]int, 0, top)
	for l := MinLevel; l <= top; l++ {
		if a.Count(l) < g.caps.Of(l) {
			levels = append(levels, l)
		}
	}
	return Eligibility{Levels: levels}
}

// Allows reports whether level l may be spawned given a.
func (g *Gate) Allows(a CastleAggregate, l int) bool {
	return g.Eligible(a).Contains(l)
}

// Eligibility is the result of a gate decision.
type Eligibility struct {
	Levels []int
}

// Deadlocked reports whether no level can be spawned.
func (e Eligibility) Deadlocked() bool {
	return len(e.Levels) == 0
}

// Contains reports whether l is eligible.
func (e Eligibility) Contains(l int) bool {
	return slices.Contains(e.Levels, l)
}

// Highest returns the highest eligible level, or 0 when deadlocked.
func (e Eligibility) Highest() int {
	if len(e.Levels) == 0 {
		return 0
	}
	return e.Levels[len(e.Levels)-1]
}

// Equal reports whether two results offer the same levels.
func (e Eligibility) Equal(o Eligibility) bool {
	return slices.Equal(e.Levels, o.Levels)
}
