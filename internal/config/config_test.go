package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedMatchesHardcoded(t *testing.T) {
	embedded, err := decodeCastle(DefaultYAML())
	if err != nil {
		t.Fatalf("decodeCastle(embedded) error = %v", err)
	}
	def := DefaultCastleConfig()

	if len(embedded.Parts) != len(def.Parts) {
		t.Fatalf("len(Parts) = %d, expected %d", len(embedded.Parts), len(def.Parts))
	}
	for i := range def.Parts {
		if embedded.Parts[i] != def.Parts[i] {
			t.Errorf("Parts[%d] = %+v, expected %+v", i, embedded.Parts[i], def.Parts[i])
		}
	}
	for i := range def.Capacity {
		if embedded.Capacity[i] != def.Capacity[i] {
			t.Errorf("Capacity[%d] = %d, expected %d", i, embedded.Capacity[i], def.Capacity[i])
		}
	}
	if embedded.Scoring != def.Scoring {
		t.Errorf("Scoring = %+v, expected %+v", embedded.Scoring, def.Scoring)
	}
	if embedded.Stability != def.Stability {
		t.Errorf("Stability = %+v, expected %+v", embedded.Stability, def.Stability)
	}
	if embedded.Collapse != def.Collapse {
		t.Errorf("Collapse = %+v, expected %+v", embedded.Collapse, def.Collapse)
	}
	if embedded.Physics != def.Physics {
		t.Errorf("Physics = %+v, expected %+v", embedded.Physics, def.Physics)
	}
	if embedded.Crane != def.Crane {
		t.Errorf("Crane = %+v, expected %+v", embedded.Crane, def.Crane)
	}
}

func TestDefaultThresholds(t *testing.T) {
	cfg := DefaultCastleConfig()
	s := cfg.Stability
	if s.PerfectThreshold != 0.01 || s.StableThreshold != 0.05 || s.WarningThreshold != 0.3 {
		t.Errorf("thresholds = %v/%v/%v, expected 0.01/0.05/0.3",
			s.PerfectThreshold, s.StableThreshold, s.WarningThreshold)
	}
	if s.HistorySize != 5 || s.ThrottleMS != 100 {
		t.Errorf("history/throttle = %d/%d, expected 5/100", s.HistorySize, s.ThrottleMS)
	}

	expectedCaps := []int{4, 5, 6, 6, 4, 3}
	for level := 1; level <= LevelCount; level++ {
		if got := cfg.CapacityFor(level); got != expectedCaps[level-1] {
			t.Errorf("CapacityFor(%d) = %d, expected %d", level, got, expectedCaps[level-1])
		}
	}
	if got := cfg.CapacityFor(0); got != 0 {
		t.Errorf("CapacityFor(0) = %d, expected 0", got)
	}
	if got := cfg.CapacityFor(7); got != 0 {
		t.Errorf("CapacityFor(7) = %d, expected 0", got)
	}
}

func TestLoadCastleCustomPathPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "castle.yaml")
	data := []byte("capacity: [1, 2]\nscoring:\n  base_score: 42\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadCastle(path)
	if err != nil {
		t.Fatalf("LoadCastle() error = %v", err)
	}
	if cfg.Scoring.BaseScore != 42 {
		t.Errorf("BaseScore = %d, expected 42", cfg.Scoring.BaseScore)
	}
	// Untouched sections keep their defaults.
	if cfg.Scoring.PlacementBonus != 5 {
		t.Errorf("PlacementBonus = %d, expected 5", cfg.Scoring.PlacementBonus)
	}
	// Short capacity lists are padded from defaults.
	expected := []int{1, 2, 6, 6, 4, 3}
	if len(cfg.Capacity) != LevelCount {
		t.Fatalf("len(Capacity) = %d, expected %d", len(cfg.Capacity), LevelCount)
	}
	for i, c := range expected {
		if cfg.Capacity[i] != c {
			t.Errorf("Capacity[%d] = %d, expected %d", i, cfg.Capacity[i], c)
		}
	}
}

func TestLoadCastleMissingFile(t *testing.T) {
	cfg, err := LoadCastle(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("LoadCastle() expected error for missing file")
	}
	if cfg.Stability.StableThreshold != 0.05 {
		t.Errorf("fallback StableThreshold = %v, expected 0.05", cfg.Stability.StableThreshold)
	}
}

func TestLoadCastleInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("scoring: [not, a, map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCastle(path); err == nil {
		t.Error("LoadCastle() expected parse error")
	}
}

func TestNormalizeRepairsThresholds(t *testing.T) {
	cfg := DefaultCastleConfig()
	cfg.Stability.StableThreshold = 0.5
	cfg.Stability.WarningThreshold = 0.1 // Inverted
	cfg.Stability.PerfectThreshold = -1
	cfg.Stability.HistorySize = 0
	cfg.Collapse.Ratio = 1.5
	cfg.Collapse.MinParts = 0
	cfg.Scoring.WrongPlacementPenalty = -20
	cfg.Scoring.ComboThreshold = -3
	cfg.Normalize()

	if cfg.Stability.StableThreshold != 0.05 || cfg.Stability.WarningThreshold != 0.3 {
		t.Errorf("thresholds = %v/%v, expected 0.05/0.3",
			cfg.Stability.StableThreshold, cfg.Stability.WarningThreshold)
	}
	if cfg.Stability.PerfectThreshold != 0.01 {
		t.Errorf("PerfectThreshold = %v, expected 0.01", cfg.Stability.PerfectThreshold)
	}
	if cfg.Stability.HistorySize != 5 {
		t.Errorf("HistorySize = %d, expected 5", cfg.Stability.HistorySize)
	}
	if cfg.Collapse.Ratio != 0.6 {
		t.Errorf("Ratio = %v, expected 0.6", cfg.Collapse.Ratio)
	}
	if cfg.Collapse.MinParts != 2 {
		t.Errorf("MinParts = %d, expected 2", cfg.Collapse.MinParts)
	}
	if cfg.Scoring.WrongPlacementPenalty != 20 {
		t.Errorf("WrongPlacementPenalty = %d, expected 20", cfg.Scoring.WrongPlacementPenalty)
	}
	if cfg.Scoring.ComboThreshold != 1 {
		t.Errorf("ComboThreshold = %d, expected 1", cfg.Scoring.ComboThreshold)
	}
}

func TestPartFor(t *testing.T) {
	cfg := DefaultCastleConfig()

	tests := []struct {
		level    int
		expected string
	}{
		{1, "Foundation"},
		{6, "Spire"},
		{9, "Block"},
	}
	for _, tt := range tests {
		if got := cfg.PartFor(tt.level).Name; got != tt.expected {
			t.Errorf("PartFor(%d).Name = %q, expected %q", tt.level, got, tt.expected)
		}
	}

	cfg.Parts[0].Width = 0
	if got := cfg.PartFor(1).Name; got != "Block" {
		t.Errorf("PartFor(1) with zero width = %q, expected fallback", got)
	}
	if got := cfg.PartFor(1).GlyphRune(); got != '#' {
		t.Errorf("fallback GlyphRune() = %q, expected '#'", got)
	}
}

func TestApplyCastlePreset(t *testing.T) {
	tests := []struct {
		preset      DifficultyPreset
		enabled     bool
		initial     float64
		penalty     int
		capLevelOne int
	}{
		{DifficultyEasy, true, 0.0, 10, 5},
		{DifficultyNormal, true, 0.3, 20, 4},
		{DifficultyHard, true, 0.7, 30, 4},
		{DifficultyFixed, false, 0.0, 20, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg := DefaultCastleConfig()
			ApplyCastlePreset(&cfg, tt.preset)
			if cfg.Difficulty.Enabled != tt.enabled {
				t.Errorf("Enabled = %v, expected %v", cfg.Difficulty.Enabled, tt.enabled)
			}
			if cfg.Difficulty.InitialLevel != tt.initial {
				t.Errorf("InitialLevel = %v, expected %v", cfg.Difficulty.InitialLevel, tt.initial)
			}
			if cfg.Scoring.WrongPlacementPenalty != tt.penalty {
				t.Errorf("WrongPlacementPenalty = %d, expected %d", cfg.Scoring.WrongPlacementPenalty, tt.penalty)
			}
			if cfg.CapacityFor(1) != tt.capLevelOne {
				t.Errorf("CapacityFor(1) = %d, expected %d", cfg.CapacityFor(1), tt.capLevelOne)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	if ParsePreset("hard") != DifficultyHard {
		t.Error("ParsePreset(hard) mismatch")
	}
	if ParsePreset("insane") != "" {
		t.Error("ParsePreset(insane) expected empty preset")
	}
}

func TestDifficultyManager(t *testing.T) {
	dm := NewDifficultyManager(DifficultyConfig{
		Enabled:      true,
		InitialLevel: 0.2,
		Progression:  ProgressionConfig{Type: ProgressScore, MaxAt: 100},
		Scaling:      ScalingConfig{SpeedMultiplier: 1.0},
	})

	tests := []struct {
		score    int
		expected float64
	}{
		{0, 0.2},
		{50, 0.6},
		{100, 1.0},
		{500, 1.0},
		{-50, 0.2},
	}
	for _, tt := range tests {
		if got := dm.Level(Progress{Score: tt.score}); !approx(got, tt.expected) {
			t.Errorf("Level(score %d) = %v, expected %v", tt.score, got, tt.expected)
		}
	}

	if got := dm.CraneSpeed(1.0, Progress{Score: 100}); !approx(got, 2.0) {
		t.Errorf("CraneSpeed() at max = %v, expected 2.0", got)
	}

	fixed := NewDifficultyManager(DifficultyConfig{Enabled: false, InitialLevel: 0.5})
	if got := fixed.Level(Progress{Score: 1000, Ticks: 1000, Height: 6}); got != 0.5 {
		t.Errorf("disabled Level() = %v, expected 0.5", got)
	}
}

func TestDifficultyHeightProgression(t *testing.T) {
	dm := NewDifficultyManager(DifficultyConfig{
		Enabled:     true,
		Progression: ProgressionConfig{Type: ProgressHeight},
		Scaling:     ScalingConfig{SpeedMultiplier: 2.0},
	})

	tests := []struct {
		height   int
		expected float64
	}{
		{0, 0},
		{1, 0},
		{3, 0.4},
		{6, 1.0},
	}
	for _, tt := range tests {
		if got := dm.Level(Progress{Height: tt.height}); !approx(got, tt.expected) {
			t.Errorf("Level(height %d) = %v, expected %v", tt.height, got, tt.expected)
		}
	}

	if got := dm.CraneSpeed(0.5, Progress{Height: 6}); !approx(got, 1.5) {
		t.Errorf("CraneSpeed() at pinnacle = %v, expected 1.5", got)
	}
}

func TestDifficultyTimeProgression(t *testing.T) {
	dm := NewDifficultyManager(DifficultyConfig{
		Enabled:     true,
		Progression: ProgressionConfig{Type: ProgressTime, MaxAt: 600},
	})
	if got := dm.Level(Progress{Ticks: 300}); !approx(got, 0.5) {
		t.Errorf("Level(300 ticks) = %v, expected 0.5", got)
	}

	none := NewDifficultyManager(DifficultyConfig{
		Enabled:      true,
		InitialLevel: 0.3,
		Progression:  ProgressionConfig{Type: ProgressNone},
	})
	if none.IsEnabled() {
		t.Error("IsEnabled() = true for progression none")
	}
	if got := none.Level(Progress{Ticks: 600}); !approx(got, 0.3) {
		t.Errorf("Level() with progression none = %v, expected 0.3", got)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
