package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
	"github.com/vovakirdan/tui-castle/internal/games/stacker"
	"github.com/vovakirdan/tui-castle/internal/platform/tui"
	"github.com/vovakirdan/tui-castle/internal/registry"
	"github.com/vovakirdan/tui-castle/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagZen        bool
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a game mode",
	Long: `Start building a castle.

Controls:
  Left/Right, A/D  - Nudge the crane
  Up/Down, W/S     - Choose the part among the eligible levels
  Space/Enter      - Drop the part
  P/Esc            - Pause
  R                - Restart (after game over)
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Slow crane, spare capacity, light penalty
  normal - Crane speeds up as the score grows
  hard   - Fast crane, heavy penalty, touchier collapse detection
  fixed  - No progression, stays at config's initial level

Examples:
  castle play
  castle play --zen
  castle play --difficulty hard
  castle play --config ./my-castle.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom castle config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().BoolVar(&flagZen, "zen", false, "Zen mode: collapses rebuild instead of ending the run")
}

// parsePreset validates the --difficulty flag. Empty means "as configured".
func parsePreset(s string) (config.DifficultyPreset, error) {
	if s == "" {
		return "", nil
	}
	p := config.ParsePreset(s)
	if p == "" {
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
	return p, nil
}

// terminalConfig builds the runtime config from the terminal size and
// the global flags.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the runs database; failures only disable persistence.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

func runPlay(_ *cobra.Command, args []string) error {
	gameID := stacker.IDClassic
	if flagZen {
		gameID = stacker.IDZen
	}
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game mode %q, run 'castle list' to see modes", gameID)
	}

	preset, err := parsePreset(flagDifficulty)
	if err != nil {
		return err
	}

	game, err := tui.NewGame(gameID, flagConfig, preset)
	if err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	return tui.Run(game, terminalConfig(), tui.Options{
		Store:      store,
		Logger:     logger,
		Preset:     preset,
		QuitOnBack: true,
	})
}
