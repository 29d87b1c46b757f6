package castle

import "time"

// Thresholds are the average-speed bounds used for classification.
// Speeds are |vx|+|vy| in simulator units per tick.
type Thresholds struct {
	Perfect float64 // At or below: perfect placement
	Stable  float64 // At or below: Stable
	Warning float64 // At or below: Warning, above: Unstable
}

// DefaultThresholds returns 0.01 / 0.05 / 0.3.
func DefaultThresholds() Thresholds {
	return Thresholds{Perfect: 0.01, Stable: 0.05, Warning: 0.3}
}

// Point values awarded per classification.
const (
	PerfectPoints  = 150
	StablePoints   = 100
	WarningPoints  = 75
	UnstablePoints = 25
)

// Classify maps an average speed to a stability level.
func (t Thresholds) Classify(avg float64) StabilityLevel {
	switch {
	case avg <= t.Stable:
		return Stable
	case avg <= t.Warning:
		return Warning
	default:
		return Unstable
	}
}

// IsPerfect reports whether avg qualifies for the perfect placement bonus.
func (t Thresholds) IsPerfect(avg float64) bool {
	return avg <= t.Perfect
}

// PointValue returns the placement points for an average speed.
func (t Thresholds) PointValue(avg float64) int {
	if t.IsPerfect(avg) {
		return PerfectPoints
	}
	switch t.Classify(avg) {
	case Stable:
		return StablePoints
	case Warning:
		return WarningPoints
	default:
		return UnstablePoints
	}
}

// ClassifierConfig configures a Classifier.
type ClassifierConfig struct {
	Thresholds Thresholds
	Throttle   time.Duration // Minimum time between full evaluations
}

// DefaultClassifierConfig returns the default thresholds and a 100ms throttle.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Thresholds: DefaultThresholds(),
		Throttle:   100 * time.Millisecond,
	}
}

// Classification is the result for one part in an evaluation.
type Classification struct {
	ID        PartID
	Level     int
	Speed     float64 // Instantaneous |vx|+|vy|
	AvgSpeed  float64
	Stability StabilityLevel
}

// Evaluation is the result of one Classifier.Evaluate call.
type Evaluation struct {
	At        time.Time
	Throttled bool // True when the cached previous result was returned
	Parts     []Classification
	Changes   []StabilityChanged // Only populated on full evaluations
}

// Classifier computes per-part stability from the store's speed history.
// Full recomputation happens at most once per throttle interval; calls in
// between return the previous result.
type Classifier struct {
	cfg     ClassifierConfig
	last    time.Time
	hasLast bool
	cached  Evaluation
}

// NewClassifier creates a classifier.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Thresholds returns the configured thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.cfg.Thresholds
}

// Due reports whether a call at now would run a full evaluation.
func (c *Classifier) Due(now time.Time) bool {
	return !c.hasLast || now.Sub(c.last) >= c.cfg.Throttle
}

// Evaluate classifies every live part in s. Only full evaluations push new
// speed samples into the history, so the window always spans the most
// recent evaluations rather than the most recent calls.
func (c *Classifier) Evaluate(now time.Time, s *Store) Evaluation {
	if !c.Due(now) {
		ev := c.cached
		ev.Throttled = true
		ev.Changes = nil
		return ev
	}

	ev := Evaluation{At: now, Parts: make([]Classification, 0, s.live)}
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.live {
			continue
		}
		speed := sl.rec.Velocity.Manhattan()
		sl.hist.push(speed)
		avg := sl.hist.mean()
		level := c.cfg.Thresholds.Classify(avg)

		if !sl.classified || level != sl.rec.Stability {
			ev.Changes = append(ev.Changes, StabilityChanged{Part: sl.rec.ID, Stability: level})
		}
		sl.classified = true
		sl.rec.Stability = level
		sl.rec.AvgSpeed = avg

		ev.Parts = append(ev.Parts, Classification{
			ID:        sl.rec.ID,
			Level:     sl.rec.Level,
			Speed:     speed,
			AvgSpeed:  avg,
			Stability: level,
		})
	}

	c.last = now
	c.hasLast = true
	c.cached = ev
	return ev
}

// Forget drops a removed part from the cached result.
func (c *Classifier) Forget(id PartID) {
	parts := c.cached.Parts[:0:0]
	for _, p := range c.cached.Parts {
		if p.ID != id {
			parts = append(parts, p)
		}
	}
	c.cached.Parts = parts
}

// Reset clears the throttle window and cached result.
func (c *Classifier) Reset() {
	c.hasLast = false
	c.last = time.Time{}
	c.cached = Evaluation{}
}
