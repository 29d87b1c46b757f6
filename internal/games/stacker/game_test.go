package stacker

import (
	"testing"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
	"github.com/vovakirdan/tui-castle/internal/registry"
)

func testRuntime(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     seed,
	}
}

func newTestGame(zen bool, seed int64) *Game {
	g := NewWithConfig(config.DefaultCastleConfig(), zen)
	g.Reset(testRuntime(seed))
	return g
}

// stepUntil steps with empty input until cond holds or limit ticks pass.
func stepUntil(g *Game, limit int, cond func() bool) bool {
	for i := 0; i < limit; i++ {
		if cond() {
			return true
		}
		g.Step(core.NewInputFrame())
	}
	return cond()
}

func TestGameIDs(t *testing.T) {
	if New().ID() != "castle" || NewZen().ID() != "castle_zen" {
		t.Errorf("IDs = %q, %q", New().ID(), NewZen().ID())
	}
	if New().Title() == NewZen().Title() {
		t.Error("classic and zen titles should differ")
	}
	for _, id := range []string{IDClassic, IDZen} {
		if !registry.Exists(id) {
			t.Errorf("registry.Exists(%q) = false", id)
		}
	}
}

func TestGameReset(t *testing.T) {
	g := newTestGame(false, 42)
	g.Step(core.FrameOf(core.ActionDrop))
	for i := 0; i < 30; i++ {
		g.Step(core.FrameOf(core.ActionRight))
	}

	g.Reset(testRuntime(42))
	if g.tickCount != 0 {
		t.Errorf("Reset should clear tickCount, got %d", g.tickCount)
	}
	if g.world.Len() != 0 || g.engine.Aggregate().TotalParts != 0 {
		t.Error("Reset should clear the castle")
	}
	if g.State().Score != 0 || g.State().GameOver {
		t.Errorf("State() after Reset = %+v", g.State())
	}
	if g.Selected() != 1 {
		t.Errorf("Selected() = %d, expected 1", g.Selected())
	}
}

func TestGameKeepsEventsAfterCastleEnds(t *testing.T) {
	batch := []castle.Event{
		castle.CollapseDetected{},
		castle.PlacementResult{Level: 2, Valid: true, TargetLevel: 1},
		castle.ProgressionUpdated{EligibleLevels: []int{1, 2, 3}},
	}

	for _, zen := range []bool{false, true} {
		g := newTestGame(zen, 1)
		g.lastEvents = nil
		g.handleEvents(batch)

		if got := len(g.Events()); got != len(batch) {
			t.Errorf("zen=%v: len(Events()) = %d, expected %d", zen, got, len(batch))
		}
		// Events after the collapse are recorded, not applied.
		if g.Summary().PartsPlaced != 0 {
			t.Errorf("zen=%v: PartsPlaced = %d, expected 0", zen, g.Summary().PartsPlaced)
		}
	}
}

func TestGameDropAndPlaceFoundation(t *testing.T) {
	g := newTestGame(false, 1)

	g.Step(core.FrameOf(core.ActionDrop))
	if !g.Busy() {
		t.Fatal("expected a part in flight after drop")
	}

	// A second drop while the first is falling is ignored.
	g.Step(core.FrameOf(core.ActionDrop))
	if g.world.Len() != 1 {
		t.Errorf("world.Len() = %d, expected 1", g.world.Len())
	}

	if !stepUntil(g, 200, func() bool { return !g.Busy() }) {
		t.Fatal("part never landed")
	}
	s := g.engine.Score()
	cfg := g.Config().Scoring
	if s.Score != cfg.BaseScore+cfg.PlacementBonus {
		t.Errorf("Score = %d, expected %d", s.Score, cfg.BaseScore+cfg.PlacementBonus)
	}
	if g.Selected() != 2 {
		t.Errorf("Selected() = %d, expected newly unlocked level 2", g.Selected())
	}
}

func TestGameSelectionCycles(t *testing.T) {
	g := newTestGame(false, 1)
	g.Step(core.FrameOf(core.ActionDrop))
	stepUntil(g, 200, func() bool { return !g.Busy() })

	// Eligible [1 2]: Up from 2 wraps to 1, Down from 1 wraps to 2.
	g.Step(core.FrameOf(core.ActionUp))
	if g.Selected() != 1 {
		t.Errorf("after Up Selected() = %d, expected 1", g.Selected())
	}
	g.Step(core.FrameOf(core.ActionDown))
	if g.Selected() != 2 {
		t.Errorf("after Down Selected() = %d, expected 2", g.Selected())
	}
}

func TestGameInvalidPlacementIsRemoved(t *testing.T) {
	g := newTestGame(false, 3)
	g.Step(core.FrameOf(core.ActionDrop)) // Foundation at the screen centre
	stepUntil(g, 200, func() bool { return !g.Busy() })

	// Carry a wall to the far left, away from the foundation.
	for i := 0; i < 60; i++ {
		g.Step(core.FrameOf(core.ActionLeft))
	}
	g.Step(core.FrameOf(core.ActionDrop))

	if !stepUntil(g, 200, func() bool { return g.engine.Score().WrongPlacementCount == 1 }) {
		t.Fatal("wall on the ground was not judged invalid")
	}
	if g.engine.Score().ComboCount != 0 {
		t.Errorf("ComboCount = %d, expected reset", g.engine.Score().ComboCount)
	}
	if len(g.removals) != 1 {
		t.Fatalf("len(removals) = %d, expected the wall pending removal", len(g.removals))
	}

	// No new part may drop onto a castle that still holds the misplaced one.
	g.Step(core.FrameOf(core.ActionDrop))
	if g.world.Len() != 2 || len(g.inFlight) != 0 {
		t.Errorf("drop during removal: world=%d inFlight=%d, expected 2 and 0", g.world.Len(), len(g.inFlight))
	}

	stepUntil(g, g.cfg.Physics.RemoveDelayTicks+5, func() bool { return !g.Busy() })
	if g.world.Len() != 1 || g.engine.Aggregate().TotalParts != 1 {
		t.Errorf("after removal world=%d engine=%d, expected 1", g.world.Len(), g.engine.Aggregate().TotalParts)
	}
	if g.Summary().WrongCount != 1 {
		t.Errorf("Summary().WrongCount = %d, expected 1", g.Summary().WrongCount)
	}
}

func TestGameCollapseEndsClassic(t *testing.T) {
	g := newTestGame(false, 1)
	g.handleEvents([]castle.Event{castle.CollapseDetected{}})

	if !g.State().GameOver || g.Outcome() != OutcomeCollapse {
		t.Errorf("State() = %+v outcome %q, expected collapse game over", g.State(), g.Outcome())
	}
	if g.Summary().Collapses != 1 {
		t.Errorf("Collapses = %d, expected 1", g.Summary().Collapses)
	}

	// Game over freezes the simulation.
	tick := g.tickCount
	g.Step(core.NewInputFrame())
	if g.tickCount != tick {
		t.Error("Step() advanced after game over")
	}
}

func TestGameCollapseRebuildsZen(t *testing.T) {
	g := newTestGame(true, 1)
	g.Step(core.FrameOf(core.ActionDrop))
	stepUntil(g, 200, func() bool { return !g.Busy() })
	score := g.State().Score

	g.handleEvents([]castle.Event{castle.CollapseDetected{}})
	if g.State().GameOver {
		t.Fatal("zen collapse should not end the game")
	}
	if g.world.Len() != 0 || g.engine.Aggregate().TotalParts != 0 {
		t.Error("zen collapse should clear the castle")
	}
	if g.State().Score != score {
		t.Errorf("Score = %d, expected %d kept", g.State().Score, score)
	}
	if g.Selected() != 1 {
		t.Errorf("Selected() = %d, expected 1", g.Selected())
	}
}

func TestGamePause(t *testing.T) {
	g := newTestGame(false, 1)
	g.Step(core.FrameOf(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("expected paused")
	}
	x := g.CraneX()
	g.Step(core.NewInputFrame())
	if g.CraneX() != x {
		t.Error("crane moved while paused")
	}
	g.Step(core.FrameOf(core.ActionPause))
	if g.State().Paused {
		t.Error("expected unpaused")
	}
}

func TestGameScreenTooSmall(t *testing.T) {
	g := NewWithConfig(config.DefaultCastleConfig(), false)
	g.Reset(core.RuntimeConfig{ScreenW: 20, ScreenH: 10, TickRate: 60})
	g.Step(core.FrameOf(core.ActionDrop))
	if g.world.Len() != 0 {
		t.Error("drop accepted on a screen that is too small")
	}

	scr := core.NewScreen(20, 10)
	g.Render(scr)
	if scr.String() == core.NewScreen(20, 10).String() {
		t.Error("expected a warning on a small screen")
	}
}

func TestGameRender(t *testing.T) {
	g := newTestGame(false, 1)
	g.Step(core.FrameOf(core.ActionDrop))
	stepUntil(g, 200, func() bool { return !g.Busy() })

	scr := core.NewScreen(80, 24)
	g.Render(scr)

	def := g.cfg.PartFor(1)
	found := false
	for y := 0; y < 24 && !found; y++ {
		for x := 0; x < 80; x++ {
			if scr.Get(x, y) == def.GlyphRune() && y > g.cfg.Crane.Row+3 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("landed foundation not drawn")
	}
	if scr.Get(0, g.groundY) != GroundChar {
		t.Errorf("ground row = %q", scr.Row(g.groundY))
	}
}

func TestGameDeterminism(t *testing.T) {
	run := func() Snapshot {
		g := newTestGame(false, 12345)
		ap := NewAutoplayer(7, 1.5)
		for i := 0; i < 1500; i++ {
			if g.Step(ap.Next(g)).State.GameOver {
				break
			}
		}
		return g.Snapshot()
	}

	snap1, snap2 := run(), run()
	if snap1.Hash() != snap2.Hash() {
		t.Errorf("Determinism failed: hashes differ. Run1=%d, Run2=%d", snap1.Hash(), snap2.Hash())
	}
	if snap1.Score != snap2.Score {
		t.Errorf("Determinism failed: scores differ. Run1=%d, Run2=%d", snap1.Score, snap2.Score)
	}
	if snap1.Tick != snap2.Tick {
		t.Errorf("Determinism failed: tick counts differ. Run1=%d, Run2=%d", snap1.Tick, snap2.Tick)
	}
}

func TestAutoplayerBuildsCastle(t *testing.T) {
	g := newTestGame(false, 99)
	ap := NewAutoplayer(1, 0)

	for i := 0; i < 6000 && !g.State().GameOver; i++ {
		g.Step(ap.Next(g))
	}

	sum := g.Summary()
	if sum.Outcome != OutcomeComplete || !g.State().Won {
		t.Fatalf("Summary() = %+v, expected a completed castle", sum)
	}
	if sum.HeightReached != castle.MaxLevel {
		t.Errorf("HeightReached = %d, expected %d", sum.HeightReached, castle.MaxLevel)
	}
	if sum.WrongCount != 0 {
		t.Errorf("WrongCount = %d, expected a clean build", sum.WrongCount)
	}
	if sum.Score < g.cfg.Scoring.CompletionBonus {
		t.Errorf("Score = %d, expected the completion bonus", sum.Score)
	}
}

func TestEngineParamsFromConfig(t *testing.T) {
	cfg := config.DefaultCastleConfig()
	cfg.Capacity = []int{1, 2, 3, 4, 5, 6}
	cfg.Stability.ThrottleMS = 250
	p := EngineParams(cfg)

	if p.Capacity != (castle.CapacityTable{1, 2, 3, 4, 5, 6}) {
		t.Errorf("Capacity = %v", p.Capacity)
	}
	if p.Classifier.Throttle.Milliseconds() != 250 {
		t.Errorf("Throttle = %v, expected 250ms", p.Classifier.Throttle)
	}
	if p.Classifier.Thresholds != castle.DefaultThresholds() {
		t.Errorf("Thresholds = %+v", p.Classifier.Thresholds)
	}
	if p.SettleTimeout.Seconds() != 3 {
		t.Errorf("SettleTimeout = %v, expected 3s", p.SettleTimeout)
	}
	if p.Scoring != castle.DefaultScoringConfig() {
		t.Errorf("Scoring = %+v, expected %+v", p.Scoring, castle.DefaultScoringConfig())
	}
}

func TestColorByName(t *testing.T) {
	tests := []struct {
		name     string
		expected core.Color
	}{
		{"red", core.ColorRed},
		{"Gray", core.ColorGray},
		{"grey", core.ColorGray},
		{"orange", core.ColorOrange},
		{"nope", core.ColorDefault},
	}
	for _, tt := range tests {
		if got := ColorByName(tt.name); got != tt.expected {
			t.Errorf("ColorByName(%q) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}
