package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
	"github.com/vovakirdan/tui-castle/internal/games/stacker"
)

var (
	flagSimDrops      int
	flagSimMaxTicks   int
	flagSimAim        float64
	flagSimZen        bool
	flagSimSave       bool
	flagSimConfig     string
	flagSimDifficulty string
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless autoplayed game",
	Long: `Play a game without a terminal UI. An autoplayer builds the castle and
every engine event is logged; a summary is printed at the end.

The run is deterministic for a given --seed, which makes it useful to
tune a config file.

Examples:
  castle sim --seed 42 --log-level info
  castle sim --drops 30 --aim 3 --difficulty hard
  castle sim --zen --max-ticks 50000 --save`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagSimDrops, "drops", 0, "Stop after this many placements (0 = until the run ends)")
	simCmd.Flags().IntVar(&flagSimMaxTicks, "max-ticks", 20000, "Hard tick limit")
	simCmd.Flags().Float64Var(&flagSimAim, "aim", 1.0, "Random aiming error of the autoplayer in cells")
	simCmd.Flags().BoolVar(&flagSimZen, "zen", false, "Simulate zen mode")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Record the run in the database")
	simCmd.Flags().StringVar(&flagSimConfig, "config", "", "Path to custom castle config YAML")
	simCmd.Flags().StringVar(&flagSimDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

// simOptions configures a headless run.
type simOptions struct {
	Config   config.CastleConfig
	Zen      bool
	Seed     int64
	Aim      float64
	Drops    int
	MaxTicks int
	Runtime  core.RuntimeConfig
}

// simulate plays one game with the autoplayer, logging every event.
func simulate(opts simOptions, l *log.Logger) stacker.Summary {
	g := stacker.NewWithConfig(opts.Config, opts.Zen)
	rt := opts.Runtime
	rt.Seed = opts.Seed
	g.Reset(rt)

	ap := stacker.NewAutoplayer(opts.Seed, opts.Aim)
	placements := 0

	for tick := 1; tick <= opts.MaxTicks; tick++ {
		res := g.Step(ap.Next(g))

		for _, ev := range g.Events() {
			logEvent(l, tick, g, ev)
			if _, ok := ev.(castle.PlacementResult); ok {
				placements++
			}
		}

		if res.State.GameOver {
			break
		}
		if opts.Drops > 0 && placements >= opts.Drops && !g.Busy() {
			break
		}
	}
	return g.Summary()
}

func logEvent(l *log.Logger, tick int, g *stacker.Game, ev castle.Event) {
	kv := []any{"tick", tick, "event", ev.Type().String()}

	switch e := ev.(type) {
	case castle.PlacementResult:
		kv = append(kv, "part", e.Part, "level", e.Level, "valid", e.Valid, "target", e.TargetLevel, "delta", e.ScoreDelta)
		if e.Valid {
			l.Info("placement", kv...)
		} else {
			l.Warn("placement", kv...)
		}
	case castle.StabilityChanged:
		l.Debug("stability", append(kv, "part", e.Part, "stability", e.Stability.String())...)
	case castle.SettleAwarded:
		l.Info("settled", append(kv, "part", e.Part, "points", e.Points, "perfect", e.Perfect)...)
	case castle.CollapseDetected:
		r := e.Report
		l.Error("collapse", append(kv,
			"active", r.Active, "settled", r.Settled, "free_falling", r.FreeFalling, "unstable", r.HighlyUnstable)...)
	case castle.ProgressionUpdated:
		l.Info("progression", append(kv, "eligible", e.EligibleLevels, "score", g.State().Score)...)
	case castle.PartRemoved:
		l.Debug("removed", append(kv, "part", e.Part, "level", e.Level)...)
	default:
		l.Debug("event", kv...)
	}
}

func printSummary(w io.Writer, s stacker.Summary) {
	fmt.Fprintf(w, "Mode:       %s\n", s.GameID)
	fmt.Fprintf(w, "Outcome:    %s\n", outcomeLabel(s.Outcome))
	fmt.Fprintf(w, "Score:      %d\n", s.Score)
	fmt.Fprintf(w, "Height:     L%d\n", s.HeightReached)
	fmt.Fprintf(w, "Placed:     %d (%d perfect, %d wrong)\n", s.PartsPlaced, s.PerfectCount, s.WrongCount)
	fmt.Fprintf(w, "Best combo: %d\n", s.BestCombo)
	fmt.Fprintf(w, "Collapses:  %d\n", s.Collapses)
	fmt.Fprintf(w, "Simulated:  %s (%d ticks)\n", s.SimulatedTime.Round(time.Millisecond), s.Ticks)
}

func outcomeLabel(o stacker.Outcome) string {
	if o == stacker.OutcomeNone {
		return "unfinished"
	}
	return string(o)
}

func runSim(cmd *cobra.Command, _ []string) error {
	preset, err := parsePreset(flagSimDifficulty)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := simOptions{
		Config:   stacker.LoadConfig(flagSimConfig, preset),
		Zen:      flagSimZen,
		Seed:     seed,
		Aim:      flagSimAim,
		Drops:    flagSimDrops,
		MaxTicks: flagSimMaxTicks,
		Runtime:  core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: flagFPS},
	}

	logger.Info("simulation started", "seed", seed, "zen", opts.Zen, "preset", preset)
	sum := simulate(opts, logger)
	printSummary(cmd.OutOrStdout(), sum)

	if !flagSimSave {
		return nil
	}
	store := openStore()
	if store == nil {
		return fmt.Errorf("cannot save run: database unavailable")
	}
	defer store.Close()

	runID, err := store.SaveSummary(sum, string(preset), seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved run %s\n", runID)
	return nil
}
