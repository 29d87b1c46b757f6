package castle

import "math"

// CollapseConfig configures a CollapseDetector.
type CollapseConfig struct {
	MinParts          int     // Fewer live parts never collapse
	MinSettled        int     // Fewer settled parts never collapse
	FreeFallMinVY     float64 // |vy| above this ...
	FreeFallMaxVX     float64 // ... with |vx| below this is free fall
	UnstableThreshold float64 // Warning/Unstable boundary
	SpeedMultiplier   float64 // Highly unstable bar is multiplier * UnstableThreshold
	Ratio             float64 // Collapse when highly unstable > Ratio * settled
}

// DefaultCollapseConfig returns the default collapse parameters.
func DefaultCollapseConfig() CollapseConfig {
	return CollapseConfig{
		MinParts:          2,
		MinSettled:        2,
		FreeFallMinVY:     2,
		FreeFallMaxVX:     0.5,
		UnstableThreshold: 0.3,
		SpeedMultiplier:   3,
		Ratio:             0.6,
	}
}

// CollapseReport explains a collapse decision.
type CollapseReport struct {
	Collapsed      bool
	Active         int
	FreeFalling    int
	Settled        int
	HighlyUnstable int
}

// CollapseDetector decides whether the structure as a whole has failed.
// Parts that are plainly still falling are ignored, and only a majority of
// fast-moving settled parts counts as collapse.
type CollapseDetector struct {
	cfg CollapseConfig
}

// NewCollapseDetector creates a detector.
func NewCollapseDetector(cfg CollapseConfig) *CollapseDetector {
	return &CollapseDetector{cfg: cfg}
}

// Limit returns the combined speed above which a settled part is highly unstable.
func (d *CollapseDetector) Limit() float64 {
	return d.cfg.SpeedMultiplier * d.cfg.UnstableThreshold
}

// FreeFalling reports whether a velocity looks like an untouched drop.
func (d *CollapseDetector) FreeFalling(vx, vy float64) bool {
	return math.Abs(vy) > d.cfg.FreeFallMinVY && math.Abs(vx) < d.cfg.FreeFallMaxVX
}

// Detect evaluates the given parts using their instantaneous velocity.
func (d *CollapseDetector) Detect(parts []PartRecord) CollapseReport {
	r := CollapseReport{Active: len(parts)}
	if r.Active < d.cfg.MinParts {
		return r
	}

	limit := d.Limit()
	for _, p := range parts {
		if d.FreeFalling(p.Velocity.X, p.Velocity.Y) {
			r.FreeFalling++
			continue
		}
		r.Settled++
		if p.Velocity.Manhattan() > limit {
			r.HighlyUnstable++
		}
	}

	if r.Settled < d.cfg.MinSettled {
		return r
	}
	r.Collapsed = float64(r.HighlyUnstable) > d.cfg.Ratio*float64(r.Settled)
	return r
}
