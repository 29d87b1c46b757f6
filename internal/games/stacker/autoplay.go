package stacker

import (
	"math"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/core"
)

// Autoplayer produces inputs for headless runs. It always builds the
// highest eligible level and aims for the least crowded legal support.
type Autoplayer struct {
	rng       *SimpleRNG
	aim       float64 // Maximum random offset from the ideal drop point
	level     int
	target    float64
	planned   bool
	tolerance float64
}

// NewAutoplayer creates an autoplayer. aim adds seeded error to every drop.
func NewAutoplayer(seed int64, aim float64) *Autoplayer {
	return &Autoplayer{rng: NewSimpleRNG(seed), aim: aim, tolerance: 1}
}

// Next returns the input for the coming tick.
func (a *Autoplayer) Next(g *Game) core.InputFrame {
	in := core.NewInputFrame()
	if g.State().GameOver || g.Busy() {
		a.planned = false
		return in
	}

	levels := g.Engine().Eligible().Levels
	if len(levels) == 0 {
		return in
	}

	if !a.planned {
		a.level = levels[len(levels)-1]
		a.target = a.pickTarget(g, a.level)
		if a.aim > 0 {
			a.target += a.rng.Symmetric(a.aim)
		}
		a.planned = true
	}

	if g.Selected() != a.level {
		in.Set(core.ActionUp)
		return in
	}

	d := a.target - g.CraneX()
	switch {
	case math.Abs(d) <= a.tolerance:
		in.Set(core.ActionDrop)
		a.planned = false
	case d < 0:
		in.Set(core.ActionLeft)
	default:
		in.Set(core.ActionRight)
	}
	return in
}

// pickTarget chooses the x coordinate to drop a part of the given level.
func (a *Autoplayer) pickTarget(g *Game, level int) float64 {
	w := float64(g.runtime.ScreenW)
	bodies := g.World().Bodies()

	if level == castle.MinLevel {
		n := g.Engine().Params().Capacity.Of(level)
		width := g.cfg.PartFor(level).Width
		for i := 0; i < n; i++ {
			x := w * float64(i+1) / float64(n+1)
			if !occupied(bodies, level, x, width) {
				return x
			}
		}
		return w / 2
	}

	// Least crowded valid support one level down.
	best, bestCount := w/2, math.MaxInt
	for _, s := range bodies {
		if s.Level != level-1 {
			continue
		}
		if rec, ok := g.Engine().Part(s.ID); !ok || !rec.PlacedOnValidTarget {
			continue
		}
		n := 0
		for _, b := range bodies {
			if b.Level == level && b.Box.OverlapX(s.Box) > 0 {
				n++
			}
		}
		if n < bestCount {
			best, bestCount = s.Box.Center.X, n
		}
	}
	return best
}

func occupied(bodies []*Body, level int, x, width float64) bool {
	for _, b := range bodies {
		if b.Level == level && math.Abs(b.Box.Center.X-x) < width {
			return true
		}
	}
	return false
}
