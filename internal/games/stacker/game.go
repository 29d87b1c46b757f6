// Package stacker implements Castle Stacker: a crane sways across the top
// of the screen and the player drops castle parts that must be stacked in
// level order, from foundation to spire.
package stacker

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
	"github.com/vovakirdan/tui-castle/internal/registry"
)

// Game IDs.
const (
	IDClassic = "castle"
	IDZen     = "castle_zen"
)

// Minimum playable screen size.
const (
	MinScreenW = 40
	MinScreenH = 20
)

// messageTicks is how long a feedback message stays on screen.
const messageTicks = 90

// epoch anchors the simulation clock; only differences matter.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// logger receives engine and game logs; discarded unless set.
var logger = log.New(io.Discard)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParsePreset(preset)
}

// SetLogger sets the logger used by games created afterwards.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// Outcome describes how a run ended.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeComplete Outcome = "complete"
	OutcomeCollapse Outcome = "collapse"
	OutcomeDeadlock Outcome = "deadlock"
)

// Summary reports the statistics of a run.
type Summary struct {
	GameID        string
	Score         int
	HeightReached int // Highest level placed validly
	PartsPlaced   int
	PerfectCount  int
	WrongCount    int
	BestCombo     int
	Collapses     int
	Outcome       Outcome
	Ticks         int
	SimulatedTime time.Duration
}

type pendingRemoval struct {
	id castle.PartID
	at int // Tick at which the part is removed
}

// Game implements the castle stacker.
type Game struct {
	zen bool

	runtime    core.RuntimeConfig
	cfg        config.CastleConfig
	difficulty *config.DifficultyManager
	fixedCfg   *config.CastleConfig // Set by NewWithConfig; skips loading

	engine *castle.Engine
	world  *World
	clock  *castle.ManualClock

	craneX   float64
	craneDir float64
	selected int // Level of the part on the crane, 0 when none

	inFlight []castle.PartID
	removals []pendingRemoval

	tickCount int
	gameOver  bool
	won       bool
	paused    bool
	outcome   Outcome

	message      string
	messageColor core.Color
	messageUntil int

	stats      Summary
	lastEvents []castle.Event

	groundY        int
	screenTooSmall bool
}

// New creates a classic game: a collapse ends the run.
func New() *Game {
	return &Game{}
}

// NewZen creates a zen game: a collapse clears the castle and play goes on.
func NewZen() *Game {
	return &Game{zen: true}
}

// NewWithConfig creates a game with a fixed configuration instead of
// loading one on Reset.
func NewWithConfig(cfg config.CastleConfig, zen bool) *Game {
	cfg.Normalize()
	return &Game{zen: zen, fixedCfg: &cfg}
}

// NewForPreset creates a game with its own configuration, ignoring the
// package-level settings. Used where several games run side by side.
func NewForPreset(path string, preset config.DifficultyPreset, zen bool) *Game {
	return NewWithConfig(LoadConfig(path, preset), zen)
}

// LoadConfig loads the castle configuration and applies a preset.
// Load errors fall back to the defaults.
func LoadConfig(path string, preset config.DifficultyPreset) config.CastleConfig {
	cfg, err := config.LoadCastle(path)
	if err != nil {
		logger.Warn("could not load castle config, using defaults", "path", path, "error", err)
		cfg = config.DefaultCastleConfig()
	}
	if preset != "" {
		config.ApplyCastlePreset(&cfg, preset)
	}
	return cfg
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	if g.zen {
		return IDZen
	}
	return IDClassic
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	if g.zen {
		return "Castle Stacker (Zen)"
	}
	return "Castle Stacker"
}

// Reset initializes or restarts the game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	if g.fixedCfg != nil {
		g.cfg = *g.fixedCfg
	} else {
		g.cfg = LoadConfig(configPath, difficultyPreset)
	}
	g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)

	g.screenTooSmall = runtime.ScreenW < MinScreenW || runtime.ScreenH < MinScreenH
	g.groundY = runtime.ScreenH - 1

	g.clock = castle.NewManualClock(epoch)
	g.world = NewWorld(g.cfg.Physics, float64(runtime.ScreenW), float64(g.groundY), runtime.Seed)
	g.engine = castle.NewEngine(EngineParams(g.cfg), g.world,
		castle.WithClock(g.clock),
		castle.WithLogger(logger),
	)

	g.craneX = float64(runtime.ScreenW) / 2
	g.craneDir = 1
	g.selected = castle.MinLevel
	g.inFlight = nil
	g.removals = nil
	g.tickCount = 0
	g.gameOver = false
	g.won = false
	g.paused = false
	g.outcome = OutcomeNone
	g.message = ""
	g.messageUntil = 0
	g.stats = Summary{GameID: g.ID()}
	g.lastEvents = nil

	g.engine.Events() // Initial progression is already reflected in selected
}

// EngineParams converts the YAML configuration into engine parameters.
func EngineParams(cfg config.CastleConfig) castle.Params {
	p := castle.DefaultParams()
	for l := castle.MinLevel; l <= castle.MaxLevel; l++ {
		p.Capacity[l-1] = cfg.CapacityFor(l)
	}
	p.Scoring = castle.ScoringConfig{
		BaseScore:             cfg.Scoring.BaseScore,
		PlacementBonus:        cfg.Scoring.PlacementBonus,
		WrongPlacementPenalty: cfg.Scoring.WrongPlacementPenalty,
		ComboMultiplier:       cfg.Scoring.ComboMultiplier,
		MaxComboFactor:        cfg.Scoring.MaxComboFactor,
		ComboThreshold:        cfg.Scoring.ComboThreshold,
	}
	p.Classifier = castle.ClassifierConfig{
		Thresholds: castle.Thresholds{
			Perfect: cfg.Stability.PerfectThreshold,
			Stable:  cfg.Stability.StableThreshold,
			Warning: cfg.Stability.WarningThreshold,
		},
		Throttle: time.Duration(cfg.Stability.ThrottleMS) * time.Millisecond,
	}
	p.Collapse = castle.CollapseConfig{
		MinParts:        cfg.Collapse.MinParts,
		MinSettled:      cfg.Collapse.MinSettled,
		FreeFallMinVY:   cfg.Collapse.FreeFallMinVY,
		FreeFallMaxVX:   cfg.Collapse.FreeFallMaxVX,
		SpeedMultiplier: cfg.Collapse.SpeedMultiplier,
		Ratio:           cfg.Collapse.Ratio,
	}
	p.HistorySize = cfg.Stability.HistorySize
	p.SettleTimeout = time.Duration(cfg.Stability.SettleTimeoutMS) * time.Millisecond
	return p
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.lastEvents = nil

	if g.gameOver || g.screenTooSmall {
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.tickCount++
	g.clock.Advance(g.runtime.TickDuration())

	g.handleInput(in)
	g.moveCrane()

	g.world.Step()
	for _, ev := range g.world.Landings() {
		g.place(ev)
	}

	g.engine.Tick()
	g.processRemovals()
	g.handleEvents(g.engine.Events())
	g.checkDeadlock()

	return core.StepResult{State: g.State()}
}

func (g *Game) handleInput(in core.InputFrame) {
	half := g.cfg.PartFor(g.selected).Width / 2
	switch {
	case in.Has(core.ActionLeft):
		g.craneX = core.ClampF(g.craneX-g.cfg.Crane.NudgeStep, half, float64(g.runtime.ScreenW)-half)
	case in.Has(core.ActionRight):
		g.craneX = core.ClampF(g.craneX+g.cfg.Crane.NudgeStep, half, float64(g.runtime.ScreenW)-half)
	}

	if in.Has(core.ActionUp) {
		g.cycleSelection(1)
	}
	if in.Has(core.ActionDown) {
		g.cycleSelection(-1)
	}
	if in.Has(core.ActionDrop) {
		g.drop()
	}
}

// moveCrane sways the crane between the screen edges.
func (g *Game) moveCrane() {
	speed := g.difficulty.CraneSpeed(g.cfg.Crane.BaseSpeed, config.Progress{
		Score:  g.engine.Score().Score,
		Ticks:  g.tickCount,
		Height: g.stats.HeightReached,
	})
	half := g.cfg.PartFor(g.selected).Width / 2
	lo, hi := half, float64(g.runtime.ScreenW)-half

	g.craneX += g.craneDir * speed
	if g.craneX <= lo {
		g.craneX = lo
		g.craneDir = 1
	}
	if g.craneX >= hi {
		g.craneX = hi
		g.craneDir = -1
	}
}

// cycleSelection moves the crane's part to the next eligible level.
func (g *Game) cycleSelection(dir int) {
	levels := g.engine.Eligible().Levels
	if len(levels) == 0 {
		g.selected = 0
		return
	}
	idx := slices.Index(levels, g.selected)
	if idx < 0 {
		g.selected = levels[len(levels)-1]
		return
	}
	idx = (idx + dir + len(levels)) % len(levels)
	g.selected = levels[idx]
}

// drop releases the carried part.
func (g *Game) drop() {
	if len(g.inFlight) > 0 || len(g.removals) > 0 || g.selected == 0 {
		return
	}

	level := g.selected
	def := g.cfg.PartFor(level)
	center := core.V(g.craneX, float64(g.cfg.Crane.Row+1)+def.Height/2)

	id, err := g.engine.Spawn(level, center, core.Vec2{})
	if err != nil {
		if errors.Is(err, castle.ErrLevelNotEligible) {
			g.say(fmt.Sprintf("%s not available yet", def.Name), core.ColorYellow)
		}
		logger.Debug("drop refused", "level", level, "error", err)
		return
	}
	g.world.Add(id, level, center, core.Vec2{}, def)
	g.inFlight = append(g.inFlight, id)
}

// place judges a first landing reported by the simulator.
func (g *Game) place(ev castle.DropEvent) {
	g.inFlight = slices.DeleteFunc(g.inFlight, func(id castle.PartID) bool { return id == ev.Part })

	res, err := g.engine.Place(ev)
	if err != nil {
		logger.Debug("placement skipped", "part", ev.Part, "error", err)
		return
	}

	if !res.Valid {
		g.removals = append(g.removals, pendingRemoval{id: ev.Part, at: g.tickCount + g.cfg.Physics.RemoveDelayTicks})
		g.say(fmt.Sprintf("Wrong level! %d", res.ScoreDelta), core.ColorBrightRed)
		return
	}
	g.say(fmt.Sprintf("+%d", res.ScoreDelta), core.ColorBrightGreen)
}

func (g *Game) processRemovals() {
	keep := g.removals[:0]
	for _, r := range g.removals {
		if r.at > g.tickCount {
			keep = append(keep, r)
			continue
		}
		g.world.Remove(r.id)
		if err := g.engine.Remove(r.id); err != nil {
			logger.Debug("removal skipped", "part", r.id, "error", err)
		}
	}
	g.removals = keep
}

// handleEvents applies a batch of engine events. Events after one that ends
// the run or clears the castle are still recorded but not applied.
func (g *Game) handleEvents(events []castle.Event) {
	for i, ev := range events {
		g.lastEvents = append(g.lastEvents, ev)
		if g.handleEvent(ev) {
			g.lastEvents = append(g.lastEvents, events[i+1:]...)
			return
		}
	}
}

// handleEvent applies one event and reports whether the castle was
// finished or cleared.
func (g *Game) handleEvent(ev castle.Event) bool {
	switch e := ev.(type) {
	case castle.PlacementResult:
		if e.Valid {
			g.stats.PartsPlaced++
			g.stats.HeightReached = core.Max(g.stats.HeightReached, e.Level)
		} else {
			g.stats.WrongCount++
		}

	case castle.SettleAwarded:
		if e.Perfect {
			g.stats.PerfectCount++
			g.say(fmt.Sprintf("Perfect! +%d", e.Points), core.ColorBrightYellow)
		}
		if rec, ok := g.engine.Part(e.Part); ok && rec.Level == castle.MaxLevel {
			g.complete()
			return true
		}

	case castle.CollapseDetected:
		g.stats.Collapses++
		if g.zen {
			g.say("The castle collapsed! Rebuilding...", core.ColorBrightRed)
			g.clearCastle()
			return true
		}
		g.finish(OutcomeCollapse)
		return true

	case castle.ProgressionUpdated:
		g.updateSelection(e.EligibleLevels)
	}
	return false
}

// updateSelection keeps the carried part legal and offers a newly unlocked
// level as soon as it appears.
func (g *Game) updateSelection(levels []int) {
	if len(levels) == 0 {
		g.selected = 0
		return
	}
	highest := levels[len(levels)-1]
	if !slices.Contains(levels, g.selected) || highest > g.selected {
		g.selected = highest
	}
}

func (g *Game) checkDeadlock() {
	if g.gameOver || len(g.inFlight) > 0 || len(g.removals) > 0 {
		return
	}
	if !g.engine.Deadlocked() {
		return
	}
	if g.zen {
		g.say("No legal move. Rebuilding...", core.ColorYellow)
		g.clearCastle()
		return
	}
	g.finish(OutcomeDeadlock)
}

// complete ends the run with the completion bonus.
func (g *Game) complete() {
	g.engine.Bonus(g.cfg.Scoring.CompletionBonus)
	g.won = true
	g.say("Castle complete!", core.ColorBrightGreen)
	g.finish(OutcomeComplete)
}

func (g *Game) finish(o Outcome) {
	g.gameOver = true
	g.outcome = o
	s := g.engine.Score()
	g.stats.BestCombo = core.Max(g.stats.BestCombo, s.BestCombo)
	logger.Info("run finished",
		"game", g.ID(),
		"outcome", string(o),
		"score", s.Score,
		"height", g.stats.HeightReached,
		"ticks", g.tickCount,
	)
}

// clearCastle empties the castle after a zen-mode collapse.
// The score survives; the engine's copy is restored after reset.
func (g *Game) clearCastle() {
	s := g.engine.Score()
	g.stats.BestCombo = core.Max(g.stats.BestCombo, s.BestCombo)

	g.engine.Reset()
	g.engine.Bonus(s.Score)
	g.world.Clear()
	g.inFlight = nil
	g.removals = nil
	g.updateSelection(g.engine.Eligible().Levels)
}

func (g *Game) say(msg string, c core.Color) {
	g.message = msg
	g.messageColor = c
	g.messageUntil = g.tickCount + messageTicks
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	score := 0
	if g.engine != nil {
		score = g.engine.Score().Score
	}
	return core.GameState{
		Score:    score,
		GameOver: g.gameOver,
		Won:      g.won,
		Paused:   g.paused,
	}
}

// Events returns the engine events handled during the last Step.
func (g *Game) Events() []castle.Event {
	return g.lastEvents
}

// Engine exposes the rules engine for inspection.
func (g *Game) Engine() *castle.Engine {
	return g.engine
}

// World exposes the physics world for inspection.
func (g *Game) World() *World {
	return g.world
}

// Config returns the active configuration.
func (g *Game) Config() config.CastleConfig {
	return g.cfg
}

// CraneX returns the crane position.
func (g *Game) CraneX() float64 {
	return g.craneX
}

// Selected returns the level on the crane, or 0 when none.
func (g *Game) Selected() int {
	return g.selected
}

// Busy reports whether a part is falling or waiting for removal.
func (g *Game) Busy() bool {
	return len(g.inFlight) > 0 || len(g.removals) > 0
}

// Outcome returns how the run ended, or OutcomeNone while playing.
func (g *Game) Outcome() Outcome {
	return g.outcome
}

// Summary returns the statistics of the current run.
func (g *Game) Summary() Summary {
	s := g.stats
	score := g.engine.Score()
	s.Score = score.Score
	s.BestCombo = core.Max(s.BestCombo, score.BestCombo)
	s.Outcome = g.outcome
	s.Ticks = g.tickCount
	s.SimulatedTime = time.Duration(g.tickCount) * g.runtime.TickDuration()
	return s
}

// Register the game with the registry
func init() {
	registry.Register(IDClassic, func() registry.Game {
		return New()
	})
	registry.Register(IDZen, func() registry.Game {
		return NewZen()
	})
}
