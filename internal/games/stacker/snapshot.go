package stacker

import "math"

// Snapshot contains the complete game state for replay and determinism tests.
// Uses primitive types only for stable serialization.
type Snapshot struct {
	Tick      uint64
	CraneX    int // Fixed-point, 1/1000 cell
	CraneDir  int
	Selected  int
	Score     int
	Combo     int
	Wrong     int
	GameOver  bool
	Won       bool
	Outcome   string
	InFlight  int
	Removals  int
	BodyCount int

	// Each body is 6 ints: Level, X, Y, VX, VY (fixed-point), Landed
	BodyData []int

	RNGState uint64
}

func fixed(v float64) int {
	return int(math.Round(v * 1000))
}

// Snapshot returns the current game state as a Snapshot.
func (g *Game) Snapshot() Snapshot {
	bodies := g.world.Bodies()
	data := make([]int, 0, len(bodies)*6)
	for _, b := range bodies {
		landed := 0
		if b.Landed {
			landed = 1
		}
		data = append(data,
			b.Level,
			fixed(b.Box.Center.X),
			fixed(b.Box.Center.Y),
			fixed(b.Vel.X),
			fixed(b.Vel.Y),
			landed,
		)
	}

	score := g.engine.Score()
	return Snapshot{
		Tick:      uint64(g.tickCount), //#nosec G115 -- tick count is always positive
		CraneX:    fixed(g.craneX),
		CraneDir:  int(g.craneDir),
		Selected:  g.selected,
		Score:     score.Score,
		Combo:     score.ComboCount,
		Wrong:     score.WrongPlacementCount,
		GameOver:  g.gameOver,
		Won:       g.won,
		Outcome:   string(g.outcome),
		InFlight:  len(g.inFlight),
		Removals:  len(g.removals),
		BodyCount: len(bodies),
		BodyData:  data,
		RNGState:  g.world.rng.State(),
	}
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + uint64(snap.CraneX)    //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.CraneDir)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Selected)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Score)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Combo)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Wrong)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.InFlight)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Removals)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.BodyCount) //#nosec G115 -- hash computation
	if snap.GameOver {
		h = h*31 + 1
	}
	if snap.Won {
		h = h*31 + 2
	}
	for _, c := range snap.Outcome {
		h = h*31 + uint64(c) //#nosec G115 -- hash computation
	}

	for _, v := range snap.BodyData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}

	h = h*31 + snap.RNGState

	return h
}
