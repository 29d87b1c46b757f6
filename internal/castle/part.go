// Package castle implements the stability and progression rules of the
// castle stacker: it turns per-tick kinematic samples into stability
// classifications, collapse detection, spawn eligibility, placement
// validation and scoring.
//
// The package never talks to a physics engine directly. Samples arrive
// through a SampleProvider and results leave as Events, so the rules can
// be driven by a live simulation or by synthetic trajectories in tests.
package castle

import (
	"fmt"

	"github.com/vovakirdan/tui-castle/internal/core"
)

// Level bounds. Level 1 is the foundation, level 6 the pinnacle.
const (
	MinLevel   = 1
	MaxLevel   = 6
	LevelCount = MaxLevel - MinLevel + 1
)

// ValidLevel reports whether l is a legal part level.
func ValidLevel(l int) bool {
	return l >= MinLevel && l <= MaxLevel
}

// PartID is a stable handle to a part slot.
// The low 32 bits hold the slot index and the high 32 bits its generation,
// so a handle to a freed slot never aliases the slot's next occupant.
// The zero PartID never refers to a live part.
type PartID uint64

// NoPart is the zero handle.
const NoPart PartID = 0

func makePartID(index, gen uint32) PartID {
	return PartID(uint64(gen)<<32 | uint64(index))
}

func (id PartID) index() uint32 { return uint32(id) }
func (id PartID) gen() uint32   { return uint32(id >> 32) }

// String returns a short human-readable form like "#3.1".
func (id PartID) String() string {
	if id == NoPart {
		return "#-"
	}
	return fmt.Sprintf("#%d.%d", id.index(), id.gen())
}

// StabilityLevel is the discrete stability classification of a part.
// The ordering is meaningful: a higher value is more severe.
type StabilityLevel uint8

const (
	Stable StabilityLevel = iota
	Warning
	Unstable
)

// String returns the classification name.
func (s StabilityLevel) String() string {
	switch s {
	case Stable:
		return "stable"
	case Warning:
		return "warning"
	case Unstable:
		return "unstable"
	default:
		return "unknown"
	}
}

// PartRecord is the public view of one placed castle piece.
type PartRecord struct {
	ID       PartID
	Level    int
	Position core.Vec2
	Velocity core.Vec2

	// Stability is the last full classification. Parts that were never
	// classified report Stable.
	Stability StabilityLevel
	AvgSpeed  float64

	// Placed is set once the placement has been judged, and
	// PlacedOnValidTarget records the verdict. Neither changes afterwards.
	Placed              bool
	PlacedOnValidTarget bool
}

// Speed returns the instantaneous combined speed |vx|+|vy|.
func (p PartRecord) Speed() float64 {
	return p.Velocity.Manhattan()
}
