package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
	"github.com/vovakirdan/tui-castle/internal/games/stacker"
	"github.com/vovakirdan/tui-castle/internal/registry"
	"github.com/vovakirdan/tui-castle/internal/storage"
)

// Options configures a game session.
type Options struct {
	Store   *storage.Store
	Metrics *Metrics
	Logger  *log.Logger
	Preset  config.DifficultyPreset

	// QuitOnBack ends the program instead of returning to a menu.
	QuitOnBack bool
}

// Model is the Bubble Tea model that runs one game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	quitting   bool
	backToMenu bool
	runSaved   bool // Whether the finished run has been recorded
	lastRunID  string
	newBest    bool // The finished run beat the stored high score
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		opts:       opts,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	// Back to menu only when the run is paused or over
	if m.inputFrame.Has(core.ActionBack) && (m.gameState.GameOver || m.gameState.Paused) {
		m.backToMenu = true
		if m.opts.QuitOnBack {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	// Esc doubles as pause while playing
	if m.inputFrame.Has(core.ActionBack) && !m.gameState.GameOver && !m.gameState.Paused {
		m.inputFrame.Set(core.ActionPause)
	}

	return m, nil
}

// handleResize processes window resize events.
// A resize restarts a running game since the castle is laid out for the
// old screen.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if !m.gameState.GameOver {
		m.game.Reset(m.config)
		m.gameState = m.game.State()
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu {
		return m, nil
	}

	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.runSaved = false
		m.newBest = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.observe()

	if m.gameState.GameOver && !m.runSaved {
		m.saveRun()
		m.runSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// observe feeds the events of the last tick into the metrics.
func (m *Model) observe() {
	g, ok := m.game.(*stacker.Game)
	if !ok || m.opts.Metrics == nil {
		return
	}
	for _, ev := range g.Events() {
		switch e := ev.(type) {
		case castle.PlacementResult:
			m.opts.Metrics.Placement(e.Valid)
		case castle.CollapseDetected:
			m.opts.Metrics.Collapse()
		case castle.SettleAwarded:
			if e.Perfect {
				m.opts.Metrics.Perfect()
			}
		}
	}
}

// saveRun records the finished run. Failures are logged and play goes on.
func (m *Model) saveRun() {
	g, isCastle := m.game.(*stacker.Game)
	if isCastle && m.opts.Metrics != nil {
		m.opts.Metrics.RunFinished(string(g.Outcome()))
	}
	if m.opts.Store == nil {
		return
	}

	if prev, err := m.opts.Store.HighScore(m.game.ID()); err == nil {
		m.newBest = m.gameState.Score > 0 && m.gameState.Score > prev
	}

	if !isCastle {
		if m.gameState.Score <= 0 {
			return
		}
		if _, err := m.opts.Store.SaveScore(m.game.ID(), m.gameState.Score); err != nil {
			m.opts.Logger.Warn("could not save score", "game", m.game.ID(), "error", err)
		}
		return
	}

	runID, err := m.opts.Store.SaveSummary(g.Summary(), string(m.opts.Preset), m.config.Seed)
	if err != nil {
		m.opts.Logger.Warn("could not save run", "game", m.game.ID(), "error", err)
		return
	}
	m.lastRunID = runID
	m.opts.Logger.Debug("run saved", "run", runID, "score", m.gameState.Score)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".castle", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.opts.Logger.Warn("could not create screenshot directory", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.opts.Logger.Warn("could not save screenshot", "error", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	if m.newBest && m.gameState.GameOver {
		m.screen.DrawTextCentered(m.screen.Height()/2+4, " NEW BEST! ", core.ColorBrightYellow)
	}
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// NewBest reports whether the finished run set a new high score.
func (m Model) NewBest() bool {
	return m.newBest
}

// LastRunID returns the UUID of the last saved run, if any.
func (m Model) LastRunID() string {
	return m.lastRunID
}

// NewGame creates the game for a menu selection. Castle modes get their
// own configuration so concurrent sessions can use different presets.
func NewGame(gameID, configPath string, preset config.DifficultyPreset) (registry.Game, error) {
	switch gameID {
	case stacker.IDClassic:
		return stacker.NewForPreset(configPath, preset, false), nil
	case stacker.IDZen:
		return stacker.NewForPreset(configPath, preset, true), nil
	}
	return registry.Create(gameID)
}

// Run starts the Bubble Tea program with the given game.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	p := tea.NewProgram(
		NewModel(game, cfg, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
