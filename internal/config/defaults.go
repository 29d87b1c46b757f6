package config

import (
	_ "embed"
)

//go:embed defaults/castle.yaml
var defaultCastleYAML []byte

// DefaultCastleConfig returns the hard-coded castle configuration.
// It mirrors defaults/castle.yaml and is used when the embedded file
// cannot be parsed.
func DefaultCastleConfig() CastleConfig {
	return CastleConfig{
		Parts: []PartDef{
			{Level: 1, Name: "Foundation", Width: 12, Height: 2, Glyph: "█", Color: "gray", Density: 3.0, Friction: 0.8, Restitution: 0.05},
			{Level: 2, Name: "Wall", Width: 10, Height: 2, Glyph: "▓", Color: "white", Density: 2.0, Friction: 0.7, Restitution: 0.08},
			{Level: 3, Name: "Gallery", Width: 9, Height: 2, Glyph: "▒", Color: "yellow", Density: 1.6, Friction: 0.6, Restitution: 0.10},
			{Level: 4, Name: "Tower", Width: 7, Height: 2, Glyph: "▚", Color: "orange", Density: 1.3, Friction: 0.6, Restitution: 0.10},
			{Level: 5, Name: "Battlement", Width: 6, Height: 1, Glyph: "▀", Color: "red", Density: 1.0, Friction: 0.5, Restitution: 0.12},
			{Level: 6, Name: "Spire", Width: 3, Height: 2, Glyph: "▲", Color: "magenta", Density: 0.8, Friction: 0.5, Restitution: 0.15},
		},
		Capacity: []int{4, 5, 6, 6, 4, 3},
		Scoring: ScoringConfig{
			BaseScore:             10,
			PlacementBonus:        5,
			WrongPlacementPenalty: 20,
			ComboMultiplier:       1.5,
			MaxComboFactor:        4.0,
			ComboThreshold:        2,
			CompletionBonus:       500,
		},
		Stability: StabilityConfig{
			PerfectThreshold: 0.01,
			StableThreshold:  0.05,
			WarningThreshold: 0.3,
			HistorySize:      5,
			ThrottleMS:       100,
			SettleTimeoutMS:  3000,
		},
		Collapse: CollapseConfig{
			MinParts:        2,
			MinSettled:      2,
			FreeFallMinVY:   2.0,
			FreeFallMaxVX:   0.5,
			SpeedMultiplier: 3.0,
			Ratio:           0.6,
		},
		Physics: PhysicsConfig{
			Gravity:          0.12,
			MaxFallSpeed:     3.0,
			SlideAccel:       0.04,
			Jitter:           0.004,
			RestSpeed:        0.25,
			RemoveDelayTicks: 45,
		},
		Crane: CraneConfig{
			BaseSpeed: 0.35,
			Row:       3,
			NudgeStep: 1.0,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 1500,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 1.5,
			},
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultCastleYAML
}
