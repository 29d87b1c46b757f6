package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a mode and difficulty picker",
	Long: `Start castle in interactive menu mode.

Pick a mode with Up/Down and a difficulty with Left/Right, Enter to play.
After a run ends, Esc returns to the menu. Tab opens the runs table.

Examples:
  castle menu
  castle menu --fps 30
  castle menu --difficulty hard --config ./my-castle.yaml`,
	RunE: runMenu,
}

var (
	flagMenuConfig     string
	flagMenuDifficulty string
)

func init() {
	menuCmd.Flags().StringVar(&flagMenuConfig, "config", "", "Path to custom castle config YAML")
	menuCmd.Flags().StringVar(&flagMenuDifficulty, "difficulty", "normal", "Preselected difficulty preset")
}

func runMenu(_ *cobra.Command, _ []string) error {
	preset, err := parsePreset(flagMenuDifficulty)
	if err != nil {
		return err
	}
	if preset == "" {
		preset = config.DifficultyNormal
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	return tui.RunSession(terminalConfig(), tui.SessionOptions{
		Store:      store,
		Logger:     logger,
		ConfigPath: flagMenuConfig,
		Preset:     preset,
	})
}
