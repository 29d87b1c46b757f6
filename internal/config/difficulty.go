package config

import "math"

// Progression types.
const (
	ProgressScore  = "score"  // Ramp with points
	ProgressTime   = "time"   // Ramp with ticks played
	ProgressHeight = "height" // Ramp with the highest level placed
	ProgressNone   = "none"
)

// Progress is what a run has achieved so far.
type Progress struct {
	Score  int
	Ticks  int
	Height int // Highest level placed validly, 0..LevelCount
}

// DifficultyManager turns run progress into a crane sway speed.
type DifficultyManager struct {
	cfg  DifficultyConfig
	base float64
}

// NewDifficultyManager creates a manager for cfg.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:  cfg,
		base: math.Max(0, math.Min(1, cfg.InitialLevel)),
	}
}

// IsEnabled reports whether difficulty ramps during a run.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != ProgressNone
}

// Level returns the difficulty in [0, 1]. It starts at the initial level
// and reaches 1 once progress hits max_at. For height progression max_at
// is ignored and the pinnacle level counts as full progress.
func (d *DifficultyManager) Level(p Progress) float64 {
	if !d.IsEnabled() {
		return d.base
	}

	var done, total float64
	switch d.cfg.Progression.Type {
	case ProgressScore:
		done, total = float64(p.Score), float64(d.cfg.Progression.MaxAt)
	case ProgressTime:
		done, total = float64(p.Ticks), float64(d.cfg.Progression.MaxAt)
	case ProgressHeight:
		done, total = float64(p.Height-1), LevelCount-1
	default:
		return d.base
	}
	if total <= 0 {
		total = 1
	}

	frac := math.Max(0, math.Min(1, done/total))
	return d.base + frac*(1-d.base)
}

// CraneSpeed scales the base sway speed up to base * (1 + speed_multiplier).
func (d *DifficultyManager) CraneSpeed(base float64, p Progress) float64 {
	return base * (1 + d.Level(p)*d.cfg.Scaling.SpeedMultiplier)
}
