package castle

import (
	"time"

	"github.com/vovakirdan/tui-castle/internal/core"
)

// KinematicSample is the latest physics state of one body.
type KinematicSample struct {
	ID       PartID
	Position core.Vec2
	Velocity core.Vec2
}

// SampleProvider exposes read-only kinematic state from a physics simulator.
// ok is false when the simulator has no body for id.
type SampleProvider interface {
	Sample(id PartID) (s KinematicSample, ok bool)
}

// SampleFunc adapts a function to SampleProvider.
type SampleFunc func(id PartID) (KinematicSample, bool)

// Sample calls f(id).
func (f SampleFunc) Sample(id PartID) (KinematicSample, bool) {
	return f(id)
}

// Clock supplies the time used for throttling and settle timeouts.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a clock that only moves when told to.
// It is used by fixed-step simulations and tests.
type ManualClock struct {
	t time.Time
}

// NewManualClock creates a clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) { c.t = t }
