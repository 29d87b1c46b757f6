package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/core"
	"github.com/vovakirdan/tui-castle/internal/games/stacker"
)

func testSimOptions(seed int64) simOptions {
	return simOptions{
		Config:   config.DefaultCastleConfig(),
		Seed:     seed,
		Aim:      1,
		MaxTicks: 3000,
		Runtime:  core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60},
	}
}

func TestSimulateDeterministic(t *testing.T) {
	quiet := log.New(&bytes.Buffer{})

	a := simulate(testSimOptions(5), quiet)
	b := simulate(testSimOptions(5), quiet)
	if a != b {
		t.Errorf("simulate() differs between runs:\n%+v\n%+v", a, b)
	}
	if a.PartsPlaced == 0 {
		t.Error("autoplayer placed nothing")
	}
}

func TestSimulateStopsAfterDrops(t *testing.T) {
	opts := testSimOptions(9)
	opts.Drops = 2

	sum := simulate(opts, log.New(&bytes.Buffer{}))
	if got := sum.PartsPlaced + sum.WrongCount; got != 2 {
		t.Errorf("placements = %d, expected 2", got)
	}
	if sum.Outcome != stacker.OutcomeNone {
		t.Errorf("Outcome = %q, expected an unfinished run", sum.Outcome)
	}
}

func TestSimulateLogsEvents(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})

	opts := testSimOptions(3)
	opts.Drops = 1
	simulate(opts, l)

	out := buf.String()
	for _, want := range []string{"placement", "placement_result", "progression"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, stacker.Summary{GameID: "castle", Score: 120, HeightReached: 3})

	out := buf.String()
	for _, want := range []string{"castle", "unfinished", "120", "L3"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestParsePreset(t *testing.T) {
	if p, err := parsePreset(""); err != nil || p != "" {
		t.Errorf("parsePreset(\"\") = %q, %v", p, err)
	}
	if p, err := parsePreset("hard"); err != nil || p != config.DifficultyHard {
		t.Errorf("parsePreset(hard) = %q, %v", p, err)
	}
	if _, err := parsePreset("brutal"); err == nil {
		t.Error("parsePreset(brutal) should fail")
	}
}
