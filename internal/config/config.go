// Package config provides YAML-based game configuration loading and
// difficulty management for the castle game.
package config

// LevelCount is the number of castle tiers, from foundation (1) to pinnacle (6).
const LevelCount = 6

// CastleConfig contains all tunable configuration for the castle game.
type CastleConfig struct {
	Parts      []PartDef        `yaml:"parts"`
	Capacity   []int            `yaml:"capacity"` // Index 0 is level 1
	Scoring    ScoringConfig    `yaml:"scoring"`
	Stability  StabilityConfig  `yaml:"stability"`
	Collapse   CollapseConfig   `yaml:"collapse"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Crane      CraneConfig      `yaml:"crane"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// PartDef is the cosmetic and physical definition of a part at one level.
type PartDef struct {
	Level       int     `yaml:"level"`
	Name        string  `yaml:"name"`
	Width       float64 `yaml:"width"`  // Cells
	Height      float64 `yaml:"height"` // Cells
	Glyph       string  `yaml:"glyph"`
	Color       string  `yaml:"color"`
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`    // 0..1, fraction of horizontal speed kept on contact
	Restitution float64 `yaml:"restitution"` // 0..1, bounce factor on landing
}

// GlyphRune returns the first rune of the glyph, or '#' if unset.
func (p PartDef) GlyphRune() rune {
	for _, r := range p.Glyph {
		return r
	}
	return '#'
}

// ScoringConfig defines placement scoring parameters.
type ScoringConfig struct {
	BaseScore             int     `yaml:"base_score"`
	PlacementBonus        int     `yaml:"placement_bonus"`
	WrongPlacementPenalty int     `yaml:"wrong_placement_penalty"`
	ComboMultiplier       float64 `yaml:"combo_multiplier"`
	MaxComboFactor        float64 `yaml:"max_combo_factor"`
	ComboThreshold        int     `yaml:"combo_threshold"`
	CompletionBonus       int     `yaml:"completion_bonus"`
}

// StabilityConfig defines the speed thresholds used to classify parts.
type StabilityConfig struct {
	PerfectThreshold float64 `yaml:"perfect_threshold"`
	StableThreshold  float64 `yaml:"stable_threshold"`
	WarningThreshold float64 `yaml:"warning_threshold"`
	HistorySize      int     `yaml:"history_size"`
	ThrottleMS       int     `yaml:"throttle_ms"`
	SettleTimeoutMS  int     `yaml:"settle_timeout_ms"`
}

// CollapseConfig defines when the whole structure counts as collapsed.
type CollapseConfig struct {
	MinParts        int     `yaml:"min_parts"`
	MinSettled      int     `yaml:"min_settled"`
	FreeFallMinVY   float64 `yaml:"free_fall_min_vy"` // |vy| above this ...
	FreeFallMaxVX   float64 `yaml:"free_fall_max_vx"` // ... and |vx| below this means free fall
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Times the warning threshold
	Ratio           float64 `yaml:"ratio"`            // Fraction of settled parts that must be moving
}

// PhysicsConfig defines the simulator parameters.
type PhysicsConfig struct {
	Gravity          float64 `yaml:"gravity"`        // Cells per tick squared
	MaxFallSpeed     float64 `yaml:"max_fall_speed"` // Cells per tick
	SlideAccel       float64 `yaml:"slide_accel"`    // Overhang slide acceleration
	Jitter           float64 `yaml:"jitter"`         // Noise amplitude on resting bodies
	RestSpeed        float64 `yaml:"rest_speed"`     // Below this a landing body stops bouncing
	RemoveDelayTicks int     `yaml:"remove_delay_ticks"`
}

// CraneConfig defines the part carrier that sways across the top of the screen.
type CraneConfig struct {
	BaseSpeed float64 `yaml:"base_speed"` // Cells per tick
	Row       int     `yaml:"row"`
	NudgeStep float64 `yaml:"nudge_step"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", "height" or "none"
	MaxAt int    `yaml:"max_at"` // Score or ticks at which difficulty peaks; unused for height
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Added to crane speed at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a CLI string to a preset. Unknown values yield "".
func ParsePreset(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s)
	default:
		return ""
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// PartFor returns the part definition for a level.
// A missing or malformed definition falls back to a safe default so a spawn
// never fails on configuration alone.
func (c CastleConfig) PartFor(level int) PartDef {
	for _, p := range c.Parts {
		if p.Level == level && p.Width > 0 && p.Height > 0 {
			return p
		}
	}
	return fallbackPart(level)
}

// CapacityFor returns the maximum simultaneous parts allowed at a level.
func (c CastleConfig) CapacityFor(level int) int {
	if level < 1 || level > len(c.Capacity) {
		return 0
	}
	return c.Capacity[level-1]
}

func fallbackPart(level int) PartDef {
	return PartDef{
		Level:       level,
		Name:        "Block",
		Width:       6,
		Height:      1,
		Glyph:       "#",
		Color:       "gray",
		Density:     1,
		Friction:    0.6,
		Restitution: 0.1,
	}
}

// Normalize repairs out-of-range values in place, falling back to defaults.
func (c *CastleConfig) Normalize() {
	def := DefaultCastleConfig()

	caps := make([]int, LevelCount)
	for i := range caps {
		if i < len(c.Capacity) && c.Capacity[i] > 0 {
			caps[i] = c.Capacity[i]
		} else {
			caps[i] = def.Capacity[i]
		}
	}
	c.Capacity = caps

	s := &c.Stability
	if s.StableThreshold <= 0 || s.WarningThreshold <= s.StableThreshold {
		s.StableThreshold = def.Stability.StableThreshold
		s.WarningThreshold = def.Stability.WarningThreshold
	}
	if s.PerfectThreshold <= 0 || s.PerfectThreshold > s.StableThreshold {
		s.PerfectThreshold = def.Stability.PerfectThreshold
		if s.PerfectThreshold > s.StableThreshold {
			s.PerfectThreshold = s.StableThreshold
		}
	}
	if s.HistorySize <= 0 {
		s.HistorySize = def.Stability.HistorySize
	}
	if s.ThrottleMS < 0 {
		s.ThrottleMS = def.Stability.ThrottleMS
	}
	if s.SettleTimeoutMS <= 0 {
		s.SettleTimeoutMS = def.Stability.SettleTimeoutMS
	}

	col := &c.Collapse
	if col.MinParts < 2 {
		col.MinParts = def.Collapse.MinParts
	}
	if col.MinSettled < 2 {
		col.MinSettled = def.Collapse.MinSettled
	}
	if col.FreeFallMinVY <= 0 {
		col.FreeFallMinVY = def.Collapse.FreeFallMinVY
	}
	if col.FreeFallMaxVX <= 0 {
		col.FreeFallMaxVX = def.Collapse.FreeFallMaxVX
	}
	if col.SpeedMultiplier <= 0 {
		col.SpeedMultiplier = def.Collapse.SpeedMultiplier
	}
	if col.Ratio <= 0 || col.Ratio >= 1 {
		col.Ratio = def.Collapse.Ratio
	}

	sc := &c.Scoring
	if sc.ComboMultiplier < 1 {
		sc.ComboMultiplier = 1
	}
	if sc.MaxComboFactor < 1 {
		sc.MaxComboFactor = def.Scoring.MaxComboFactor
	}
	if sc.ComboThreshold < 1 {
		sc.ComboThreshold = 1
	}
	if sc.BaseScore < 0 {
		sc.BaseScore = def.Scoring.BaseScore
	}
	if sc.WrongPlacementPenalty < 0 {
		sc.WrongPlacementPenalty = -sc.WrongPlacementPenalty
	}

	if c.Physics.Gravity <= 0 {
		c.Physics.Gravity = def.Physics.Gravity
	}
	if c.Physics.MaxFallSpeed <= 0 {
		c.Physics.MaxFallSpeed = def.Physics.MaxFallSpeed
	}
	if c.Physics.RemoveDelayTicks <= 0 {
		c.Physics.RemoveDelayTicks = def.Physics.RemoveDelayTicks
	}
	if c.Crane.BaseSpeed <= 0 {
		c.Crane.BaseSpeed = def.Crane.BaseSpeed
	}
	if c.Crane.Row <= 0 {
		c.Crane.Row = def.Crane.Row
	}
}
