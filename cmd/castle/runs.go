package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-castle/internal/storage"
)

var (
	flagRunsLimit int
	flagRunID     string
)

var runsCmd = &cobra.Command{
	Use:   "runs [mode]",
	Short: "Show recent runs",
	Long: `List the most recent runs with their height, placements and outcome.

Examples:
  castle runs
  castle runs castle_zen --limit 50
  castle runs --id 3f2a9c1e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Number of runs to show")
	runsCmd.Flags().StringVar(&flagRunID, "id", "", "Show the details of one run")
}

func runRuns(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagRunID != "" {
		return printRun(cmd.OutOrStdout(), store, flagRunID)
	}

	gameID, title, err := modeArg(args)
	if err != nil {
		return err
	}

	runs, err := store.RecentRuns(gameID, flagRunsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recent runs - %s\n\n", title)
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "  %-8s  %-6s  %-6s  %-5s  %-7s  %-5s  %-9s  %-8s  %s\n",
		"Run", "Score", "Height", "Parts", "Perfect", "Wrong", "Outcome", "Time", "Date")
	for _, r := range runs {
		fmt.Fprintf(out, "  %-8s  %-6d  L%-5d  %-5d  %-7d  %-5d  %-9s  %-8s  %s\n",
			shortID(r.RunID), r.Score, r.Height, r.PartsPlaced, r.PerfectCount, r.WrongCount,
			r.Outcome, r.Duration.Round(time.Second), r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// printRun prints every recorded field of one run.
func printRun(out io.Writer, store *storage.Store, runID string) error {
	r, err := store.RunByID(runID)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("no run with id %q", runID)
	}

	fmt.Fprintf(out, "Run %s\n\n", r.RunID)
	fields := []struct {
		name  string
		value any
	}{
		{"Mode", r.GameID},
		{"Preset", r.Preset},
		{"Seed", r.Seed},
		{"Score", r.Score},
		{"Height", fmt.Sprintf("L%d", r.Height)},
		{"Parts placed", r.PartsPlaced},
		{"Perfect", r.PerfectCount},
		{"Wrong", r.WrongCount},
		{"Best combo", r.BestCombo},
		{"Collapses", r.Collapses},
		{"Outcome", r.Outcome},
		{"Time", r.Duration.Round(time.Second)},
		{"Date", r.CreatedAt.Format("2006-01-02 15:04")},
	}
	for _, f := range fields {
		fmt.Fprintf(out, "  %-13s %v\n", f.name, f.value)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

