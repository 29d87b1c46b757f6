package tui

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
	"github.com/vovakirdan/tui-castle/internal/games/stacker"
	"github.com/vovakirdan/tui-castle/internal/storage"
)

// endingGame finishes with a fixed score on its first step.
type endingGame struct {
	score int
	state core.GameState
}

func (g *endingGame) ID() string               { return "ending" }
func (g *endingGame) Title() string            { return "Ending" }
func (g *endingGame) Reset(core.RuntimeConfig) { g.state = core.GameState{} }
func (g *endingGame) Render(dst *core.Screen)  { dst.Clear() }
func (g *endingGame) State() core.GameState    { return g.state }
func (g *endingGame) Step(core.InputFrame) core.StepResult {
	g.state = core.GameState{Score: g.score, GameOver: true}
	return core.StepResult{State: g.state}
}

func modelStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "model.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func quietOptions(store *storage.Store) Options {
	return Options{Store: store, Logger: log.New(io.Discard)}
}

func TestModelSavesScoreAndFlagsNewBest(t *testing.T) {
	store := modelStore(t)
	if _, err := store.SaveScore("ending", 50); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	m := NewModel(&endingGame{score: 80}, testConfig(), quietOptions(store))
	m.Init()
	next, _ := m.Update(TickMsg{})
	m = next.(Model)

	if !m.NewBest() {
		t.Error("NewBest() = false, expected true for 80 over 50")
	}
	if high, _ := store.HighScore("ending"); high != 80 {
		t.Errorf("HighScore() = %d, expected 80", high)
	}
	if !strings.Contains(ansi.Strip(m.View()), "NEW BEST!") {
		t.Error("View() should announce the new best")
	}

	// A second tick must not store the run again.
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if scores, _ := store.TopScores("ending", 10); len(scores) != 2 {
		t.Errorf("len(TopScores()) = %d, expected 2", len(scores))
	}
}

func TestModelNoNewBestBelowHighScore(t *testing.T) {
	store := modelStore(t)
	if _, err := store.SaveScore("ending", 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	m := NewModel(&endingGame{score: 80}, testConfig(), quietOptions(store))
	m.Init()
	next, _ := m.Update(TickMsg{})
	if next.(Model).NewBest() {
		t.Error("NewBest() = true for a score below the high score")
	}
}

func TestModelSavesCastleRun(t *testing.T) {
	store := modelStore(t)
	cfg := testConfig()
	cfg.Seed = 99

	g := stacker.NewWithConfig(config.DefaultCastleConfig(), false)
	g.Reset(cfg)
	ap := stacker.NewAutoplayer(1, 0)
	for i := 0; i < 6000 && !g.State().GameOver; i++ {
		g.Step(ap.Next(g))
	}
	if !g.State().GameOver {
		t.Fatal("autoplayed run did not finish")
	}

	opts := quietOptions(store)
	opts.Preset = config.DifficultyNormal
	m := NewModel(g, cfg, opts)
	m.gameState = g.State()
	m.saveRun()

	if m.LastRunID() == "" {
		t.Fatal("LastRunID() is empty after a finished castle run")
	}
	run, err := store.RunByID(m.LastRunID())
	if err != nil || run == nil {
		t.Fatalf("RunByID() = %v, %v", run, err)
	}
	if run.GameID != stacker.IDClassic || run.Preset != "normal" || run.Seed != 99 {
		t.Errorf("run = %+v, expected classic/normal/99", run)
	}
	if run.Outcome != string(stacker.OutcomeComplete) || run.Height != 6 {
		t.Errorf("run outcome = %q height %d, expected a complete castle", run.Outcome, run.Height)
	}
	if !m.NewBest() {
		t.Error("first castle run should be a new best")
	}
}

func TestModelEscPausesThenGoesBack(t *testing.T) {
	m := NewModel(stacker.NewWithConfig(config.DefaultCastleConfig(), false), testConfig(), quietOptions(nil))
	m.Init()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	next, _ = next.(Model).Update(TickMsg{})
	m = next.(Model)
	if !m.gameState.Paused {
		t.Fatal("Esc while playing should pause")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(Model).BackToMenu() {
		t.Error("Esc while paused should go back to the menu")
	}
}
