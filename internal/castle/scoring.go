package castle

import "math"

// Placement targets reported in PlacementResult.TargetLevel.
const (
	NoTarget     = -1 // Landed on nothing recognisable
	GroundTarget = 0
)

// Contact is one support reported by the physics simulator for a landed part.
type Contact struct {
	Ground bool
	Part   PartID // Supporting part when Ground is false
}

// DropEvent reports that a dropped part came to rest on its supports.
type DropEvent struct {
	Part     PartID
	Contacts []Contact
}

// ScoringConfig holds the placement scoring parameters.
type ScoringConfig struct {
	BaseScore             int
	PlacementBonus        int
	WrongPlacementPenalty int
	ComboMultiplier       float64 // Factor per consecutive valid placement past the threshold
	MaxComboFactor        float64 // Upper bound for the compounded factor
	ComboThreshold        int     // Prior consecutive valid placements before the multiplier applies
}

// DefaultScoringConfig returns the default scoring parameters.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScore:             10,
		PlacementBonus:        5,
		WrongPlacementPenalty: 20,
		ComboMultiplier:       1.5,
		MaxComboFactor:        4,
		ComboThreshold:        2,
	}
}

// ScoringState is the running score of one castle attempt.
type ScoringState struct {
	Score               int
	ComboCount          int // Consecutive valid placements
	WrongPlacementCount int
	ValidPlacements     int
	PerfectCount        int
	BestCombo           int
}

// ValidatePlacement judges a landing. support holds the levels of the parts
// the dropped part rests on. A level 1 part is valid only on the ground and
// a level L part only on a level L-1 part.
//
// The returned target is GroundTarget, the level of the relevant support,
// or NoTarget when nothing supports the part.
func ValidatePlacement(level int, onGround bool, support []int) (valid bool, target int) {
	if level == MinLevel {
		if onGround {
			return true, GroundTarget
		}
	} else {
		for _, l := range support {
			if l == level-1 {
				return true, l
			}
		}
	}

	// Invalid: report what it actually landed on.
	if onGround {
		return false, GroundTarget
	}
	target = NoTarget
	for _, l := range support {
		if l > target {
			target = l
		}
	}
	return false, target
}

// Scorer maintains the scoring state.
type Scorer struct {
	cfg   ScoringConfig
	state ScoringState
}

// NewScorer creates a scorer.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// State returns the current scoring state.
func (s *Scorer) State() ScoringState {
	return s.state
}

// ComboFactor returns the multiplier the next valid placement would get.
// It stays 1 until ComboCount reaches the threshold and then compounds
// once per further valid placement.
func (s *Scorer) ComboFactor() float64 {
	threshold := max(s.cfg.ComboThreshold, 1)
	if s.state.ComboCount < threshold {
		return 1
	}
	f := math.Pow(s.cfg.ComboMultiplier, float64(s.state.ComboCount-threshold+1))
	if s.cfg.MaxComboFactor > 0 && f > s.cfg.MaxComboFactor {
		f = s.cfg.MaxComboFactor
	}
	return f
}

// Valid scores a valid placement at level and extends the combo.
func (s *Scorer) Valid(level int) int {
	delta := int(math.Round(float64(s.cfg.BaseScore*level)*s.ComboFactor())) + s.cfg.PlacementBonus
	s.state.Score += delta
	s.state.ComboCount++
	s.state.ValidPlacements++
	if s.state.ComboCount > s.state.BestCombo {
		s.state.BestCombo = s.state.ComboCount
	}
	return delta
}

// Invalid applies the wrong placement penalty and breaks the combo.
func (s *Scorer) Invalid() int {
	delta := -s.cfg.WrongPlacementPenalty
	s.state.Score += delta
	s.state.ComboCount = 0
	s.state.WrongPlacementCount++
	return delta
}

// Award adds settle points.
func (s *Scorer) Award(points int, perfect bool) {
	s.state.Score += points
	if perfect {
		s.state.PerfectCount++
	}
}

// Bonus adds a flat bonus, such as for completing the castle.
func (s *Scorer) Bonus(points int) {
	s.state.Score += points
}

// Reset clears the scoring state.
func (s *Scorer) Reset() {
	s.state = ScoringState{}
}
