package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/games/stacker"
	"github.com/vovakirdan/tui-castle/internal/platform/tui"
)

var (
	flagLevelsConfig     string
	flagLevelsDifficulty string
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show the part table and level capacities",
	Long: `Print the six castle levels with their part, size, capacity and the
points a valid placement earns before combo.

A part of level L may only rest on a part of level L-1 (the foundation
rests on the ground). Level L is offered once level L-1 has a part and
level L still has room.

Examples:
  castle levels
  castle levels --difficulty easy`,
	RunE: runLevels,
}

func init() {
	levelsCmd.Flags().StringVar(&flagLevelsConfig, "config", "", "Path to custom castle config YAML")
	levelsCmd.Flags().StringVar(&flagLevelsDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func levelsTable(cfg config.CastleConfig) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("Level", "Part", "Glyph", "Size", "Capacity", "Points").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	scoring := cfg.Scoring
	for l := castle.MaxLevel; l >= castle.MinLevel; l-- {
		def := cfg.PartFor(l)
		t.Row(
			"L"+strconv.Itoa(l),
			def.Name,
			tui.StyleFor(stacker.ColorByName(def.Color)).Render(def.Glyph),
			fmt.Sprintf("%gx%g", def.Width, def.Height),
			strconv.Itoa(cfg.CapacityFor(l)),
			strconv.Itoa(scoring.BaseScore*l+scoring.PlacementBonus),
		)
	}
	return t
}

func runLevels(cmd *cobra.Command, _ []string) error {
	preset, err := parsePreset(flagLevelsDifficulty)
	if err != nil {
		return err
	}
	cfg := stacker.LoadConfig(flagLevelsConfig, preset)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, levelsTable(cfg).Render())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Wrong level: -%d points. Combo: x%.2f per streak step after %d in a row, capped at x%.2f.\n",
		cfg.Scoring.WrongPlacementPenalty, cfg.Scoring.ComboMultiplier, cfg.Scoring.ComboThreshold, cfg.Scoring.MaxComboFactor)
	fmt.Fprintf(out, "A settled spire completes the castle for +%d.\n", cfg.Scoring.CompletionBonus)
	return nil
}
