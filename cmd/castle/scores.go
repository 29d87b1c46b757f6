package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-castle/internal/games/stacker"
	"github.com/vovakirdan/tui-castle/internal/registry"
	"github.com/vovakirdan/tui-castle/internal/storage"
)

var (
	flagScoresAll     bool
	flagScoresSummary bool
	flagScoresClear   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores for a mode",
	Long: `Display the top 10 scores for a game mode.

Examples:
  castle scores
  castle scores castle_zen --all
  castle scores --summary
  castle scores castle_zen --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresAll, "all", false, "List every recorded score")
	scoresCmd.Flags().BoolVar(&flagScoresSummary, "summary", false, "Show statistics for every mode")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the scores and runs of the mode")
}

// modeArg returns the mode named in args, defaulting to the classic mode.
func modeArg(args []string) (string, string, error) {
	gameID := stacker.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}
	info, ok := registry.Lookup(gameID)
	if !ok {
		return "", "", fmt.Errorf("unknown game mode %q, run 'castle list' to see modes", gameID)
	}
	return gameID, info.Title, nil
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if flagScoresSummary {
		return printSummaryStats(out, store)
	}

	gameID, title, err := modeArg(args)
	if err != nil {
		return err
	}

	if flagScoresClear {
		if err := store.ClearScores(gameID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared scores and runs for %s.\n", title)
		return nil
	}

	var scores []storage.ScoreEntry
	if flagScoresAll {
		scores, err = store.AllScores(gameID)
	} else {
		scores, err = store.TopScores(gameID, 10)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "High Scores - %s\n\n", title)

	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Play 'castle play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Fprintf(out, "  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(out)
	if stats, err := store.GetGameStats(gameID); err == nil {
		fmt.Fprintf(out, "%d games, average %.0f, last played %s\n",
			stats.GamesCount, stats.AvgScore, stats.LastPlayed.Format("2006-01-02 15:04"))
	}
	if best, err := store.BestRun(gameID); err == nil && best != nil {
		fmt.Fprintf(out, "Tallest castle: level %d, %d points (%s)\n", best.Height, best.Score, best.Outcome)
	}
	return nil
}

// printSummaryStats prints one line of statistics per played mode.
func printSummaryStats(out io.Writer, store *storage.Store) error {
	all, err := store.GetAllGamesStats()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(out, "No games played yet.")
		return nil
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(out, "  %-12s  %-6s  %-8s  %-8s  %s\n", "Mode", "Games", "Best", "Average", "Last played")
	for _, id := range ids {
		s := all[id]
		fmt.Fprintf(out, "  %-12s  %-6d  %-8d  %-8.0f  %s\n",
			id, s.GamesCount, s.HighScore, s.AvgScore, s.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
