package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// LoadRules loads the care rules.
// Search order: customPath -> ~/.sheepfold/rules.yaml -> ./configs/rules.yaml -> embedded default
// Files are decoded over the defaults, so partial files only override what they name.
func LoadRules(customPath string) (Rules, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Rules{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseRules(data)
		if err != nil {
			return Rules{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("rules.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseRules(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/rules.yaml"); err == nil {
		if cfg, err := ParseRules(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseRules(defaultRulesYAML)
	if err != nil {
		return DefaultRules(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseRules decodes YAML over DefaultRules and validates the result.
func ParseRules(data []byte) (Rules, error) {
	cfg := DefaultRules()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Rules{}, fmt.Errorf("%w: %v", flock.ErrInvalidInput, err)
	}
	if err := cfg.Validate(); err != nil {
		return Rules{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (r Rules) Validate() error {
	switch {
	case r.Care.DailyLimit <= 0:
		return invalid("care.daily_limit must be positive")
	case r.Care.HealAmount < 0:
		return invalid("care.heal_amount must not be negative")
	case r.Care.CareGain < 0:
		return invalid("care.care_gain must not be negative")
	case r.Decay.HealthyDaily < 0, r.Decay.SickDaily < 0, r.Decay.InjuredDaily < 0, r.Decay.PrayedDaily < 0:
		return invalid("decay rates must not be negative")
	case r.Decay.DailyCap <= 0:
		return invalid("decay.daily_cap must be positive")
	case r.Decay.MinOfflineElapsed < 0:
		return invalid("decay.min_offline_elapsed must not be negative")
	case !isChance(r.Decay.SicknessChance), !isChance(r.Decay.OfflineSicknessChance), !isChance(r.Decay.InjuryChance):
		return invalid("decay chances must be within [0, 1]")
	case r.Resurrection.DaysRequired <= 0:
		return invalid("resurrection.days_required must be positive")
	case r.NameMaxLen <= 0:
		return invalid("name_max_len must be positive")
	}

	for stage := flock.StageLamb; stage < flock.StageCount; stage++ {
		if _, hasNext := stage.Next(); hasNext && r.Stages.Rule(stage).Threshold <= 0 {
			return invalid(fmt.Sprintf("stages.%s.threshold must be positive", stage))
		}
	}
	return nil
}

func isChance(p float64) bool {
	return p >= 0 && p <= 1
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", flock.ErrInvalidInput, msg)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sheepfold", filename)
}
