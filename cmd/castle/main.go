// castle is a terminal castle-building game: stack parts from foundation
// to spire while the physics tries to knock them down.
//
// Usage:
//
//	castle list              - List game modes
//	castle play [mode]       - Play a mode (default: castle)
//	castle menu              - Interactive mode and difficulty picker
//	castle serve             - Start SSH server for remote play
//	castle scores [mode]     - Show high scores
//	castle runs [mode]       - Show recent runs
//	castle levels            - Show the part table and capacities
//	castle sim               - Run a headless autoplayed game
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.castle/castle.db)
//	--log-level <level>  - debug, info, warn, error (default: warn)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-castle/internal/games/stacker"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string

	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "castle",
	Short: "Castle - stack a castle in your terminal",
	Long: `Castle is a terminal game about building a six-level castle.

Parts must rest on the level right below them, each level holds a limited
number of parts, and the castle collapses when too many parts wobble.

Available commands:
  list     - Show game modes
  play     - Play a mode directly
  menu     - Interactive mode and difficulty picker
  serve    - Start SSH server for remote play
  scores   - View high scores
  runs     - View recent runs
  levels   - Show the part table
  sim      - Headless autoplay with an event log

Examples:
  castle play
  castle play castle_zen --difficulty easy
  castle menu
  castle sim --seed 42 --log-level info
  castle serve --ssh :2222 --metrics :9100`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "castle",
		})
		stacker.SetLogger(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.castle/castle.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(simCmd)
}
