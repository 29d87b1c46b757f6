package stacker

import (
	"math"
	"sort"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
)

// contactEps is the distance at which two surfaces count as touching.
const contactEps = 0.05

// minOverlap is the horizontal overlap below which boxes do not support each other.
const minOverlap = 0.25

// Body is one simulated part.
type Body struct {
	ID     castle.PartID
	Level  int
	Box    core.Box
	Vel    core.Vec2
	Def    config.PartDef
	Landed bool // First contact has been reported

	supports []*Body
	onGround bool
}

// Resting reports whether the body currently touches a support.
func (b *Body) Resting() bool {
	return b.onGround || len(b.supports) > 0
}

// World is a small deterministic box simulator. Coordinates are in screen
// cells with y growing downward; the ground surface is at GroundY.
// Bodies are axis-aligned boxes and never rotate.
type World struct {
	cfg     config.PhysicsConfig
	width   float64
	groundY float64
	rng     *SimpleRNG

	bodies   []*Body
	landings []castle.DropEvent
}

// NewWorld creates an empty world.
func NewWorld(cfg config.PhysicsConfig, width, groundY float64, seed int64) *World {
	return &World{
		cfg:     cfg,
		width:   width,
		groundY: groundY,
		rng:     NewSimpleRNG(seed),
	}
}

// Add inserts a body whose top-left cell is derived from center and def.
func (w *World) Add(id castle.PartID, level int, center, vel core.Vec2, def config.PartDef) *Body {
	b := &Body{
		ID:    id,
		Level: level,
		Box:   core.Box{Center: center, HalfW: def.Width / 2, HalfH: def.Height / 2},
		Vel:   vel,
		Def:   def,
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Remove deletes a body. Bodies resting on it lose their support and fall.
func (w *World) Remove(id castle.PartID) bool {
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			for _, o := range w.bodies {
				o.supports = dropBody(o.supports, b)
			}
			return true
		}
	}
	return false
}

func dropBody(list []*Body, b *Body) []*Body {
	out := list[:0]
	for _, x := range list {
		if x != b {
			out = append(out, x)
		}
	}
	return out
}

// Body returns the body with the given id.
func (w *World) Body(id castle.PartID) (*Body, bool) {
	for _, b := range w.bodies {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Bodies returns all bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Len returns the number of bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Clear removes every body.
func (w *World) Clear() {
	w.bodies = w.bodies[:0]
	w.landings = w.landings[:0]
}

// Sample implements castle.SampleProvider.
func (w *World) Sample(id castle.PartID) (castle.KinematicSample, bool) {
	b, ok := w.Body(id)
	if !ok {
		return castle.KinematicSample{}, false
	}
	return castle.KinematicSample{ID: id, Position: b.Box.Center, Velocity: b.Vel}, true
}

// Landings returns the first-contact reports since the last call.
func (w *World) Landings() []castle.DropEvent {
	if len(w.landings) == 0 {
		return nil
	}
	out := w.landings
	w.landings = nil
	return out
}

// Step advances the simulation by one tick.
// Bodies are processed bottom-up so supports move before what rests on them.
func (w *World) Step() {
	order := make([]*Body, len(w.bodies))
	copy(order, w.bodies)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Box.Bottom() > order[j].Box.Bottom()
	})

	for _, b := range order {
		w.stepBody(b)
	}
}

func (w *World) stepBody(b *Body) {
	p := w.cfg

	// Contact forces from the previous tick.
	if b.Resting() {
		w.applyContact(b)
	}

	// Gravity
	b.Vel.Y = math.Min(b.Vel.Y+p.Gravity, p.MaxFallSpeed)

	// Horizontal motion with walls and side collisions.
	b.Box.Center.X += b.Vel.X
	if b.Box.Left() < 0 {
		b.Box.Center.X = b.Box.HalfW
		b.Vel.X = 0
	}
	if b.Box.Right() > w.width {
		b.Box.Center.X = w.width - b.Box.HalfW
		b.Vel.X = 0
	}
	w.resolveSides(b)

	// Vertical motion: find the highest surface below the body.
	surface, onGround, supports := w.surfaceBelow(b)
	newBottom := b.Box.Bottom() + b.Vel.Y
	if b.Vel.Y >= 0 && newBottom >= surface-contactEps {
		impact := b.Vel.Y
		b.Box.Center.Y = surface - b.Box.HalfH
		if impact > p.RestSpeed {
			b.Vel.Y = -impact * b.Def.Restitution
		} else {
			b.Vel.Y = 0
		}
		b.onGround = onGround
		b.supports = supports

		if !b.Landed {
			b.Landed = true
			w.landings = append(w.landings, landingOf(b))
		}
	} else {
		b.Box.Center.Y = newBottom - b.Box.HalfH
		b.onGround = false
		b.supports = nil
	}
}

// applyContact handles friction, support coupling, overhang sliding and jitter.
func (w *World) applyContact(b *Body) {
	p := w.cfg
	keep := 0.5 + 0.5*b.Def.Friction

	if len(b.supports) > 0 {
		var lo, hi, vx float64
		lo, hi = math.Inf(1), math.Inf(-1)
		for _, s := range b.supports {
			lo = math.Min(lo, s.Box.Left())
			hi = math.Max(hi, s.Box.Right())
			vx += s.Vel.X
		}
		vx /= float64(len(b.supports))

		// Friction drags the body along with its supports.
		b.Vel.X += (vx - b.Vel.X) * b.Def.Friction * 0.5

		// Centre of mass beyond the support span: slide off.
		switch {
		case b.Box.Center.X < lo:
			b.Vel.X -= p.SlideAccel
		case b.Box.Center.X > hi:
			b.Vel.X += p.SlideAccel
		default:
			b.Vel.X *= keep
		}
	} else {
		b.Vel.X *= keep
	}

	if p.Jitter > 0 {
		b.Vel.X += w.rng.Symmetric(p.Jitter)
	}
}

// surfaceBelow returns the y of the highest surface under b, whether it is
// the ground, and the bodies forming it.
func (w *World) surfaceBelow(b *Body) (float64, bool, []*Body) {
	surface := w.groundY
	var supports []*Body
	bottom := b.Box.Bottom()

	for _, o := range w.bodies {
		if o == b || b.Box.OverlapX(o.Box) < minOverlap {
			continue
		}
		top := o.Box.Top()
		if top < bottom-contactEps {
			continue // Not below
		}
		switch {
		case top < surface-contactEps:
			surface = top
			supports = append(supports[:0], o)
		case math.Abs(top-surface) <= contactEps:
			supports = append(supports, o)
		}
	}

	onGround := math.Abs(surface-w.groundY) <= contactEps
	if onGround {
		surface = w.groundY
	}
	return surface, onGround, supports
}

// resolveSides pushes b out of bodies it overlaps at the same height.
func (w *World) resolveSides(b *Body) {
	for _, o := range w.bodies {
		if o == b {
			continue
		}
		vOverlap := math.Min(b.Box.Bottom(), o.Box.Bottom()) - math.Max(b.Box.Top(), o.Box.Top())
		if vOverlap <= contactEps || b.Box.OverlapX(o.Box) <= 0 {
			continue
		}
		if b.Box.Center.X < o.Box.Center.X {
			b.Box.Center.X = o.Box.Left() - b.Box.HalfW
		} else {
			b.Box.Center.X = o.Box.Right() + b.Box.HalfW
		}
		b.Vel.X = 0
	}
}

func landingOf(b *Body) castle.DropEvent {
	ev := castle.DropEvent{Part: b.ID}
	if b.onGround {
		ev.Contacts = append(ev.Contacts, castle.Contact{Ground: true})
	}
	for _, s := range b.supports {
		ev.Contacts = append(ev.Contacts, castle.Contact{Part: s.ID})
	}
	return ev
}

// Supports returns the ids of the bodies b rests on.
func (b *Body) Supports() []castle.PartID {
	ids := make([]castle.PartID, len(b.supports))
	for i, s := range b.supports {
		ids[i] = s.ID
	}
	return ids
}
