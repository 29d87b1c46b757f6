package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadCastle loads the castle configuration.
// Search order: customPath -> ~/.castle/configs/castle.yaml -> ./configs/castle.yaml -> embedded default.
// Files are decoded over the defaults, so a partial file only overrides what it names.
func LoadCastle(customPath string) (CastleConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return DefaultCastleConfig(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := decodeCastle(data)
		if err != nil {
			return DefaultCastleConfig(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("castle.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := decodeCastle(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "castle.yaml")); err == nil {
		if cfg, err := decodeCastle(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := decodeCastle(defaultCastleYAML)
	if err != nil {
		return DefaultCastleConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// decodeCastle parses YAML over the hard-coded defaults and normalizes the result.
func decodeCastle(data []byte) (CastleConfig, error) {
	cfg := DefaultCastleConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".castle", "configs", filename)
}

// ApplyCastlePreset modifies the config based on a difficulty preset.
func ApplyCastlePreset(cfg *CastleConfig, preset DifficultyPreset) {
	if preset == "" {
		return
	}
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust rules based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Scoring.WrongPlacementPenalty /= 2
		cfg.Crane.BaseSpeed *= 0.75
		for i := range cfg.Capacity {
			cfg.Capacity[i]++
		}
	case DifficultyHard:
		cfg.Scoring.WrongPlacementPenalty = cfg.Scoring.WrongPlacementPenalty * 3 / 2
		cfg.Crane.BaseSpeed *= 1.25
		cfg.Collapse.Ratio = 0.5
	}
}
