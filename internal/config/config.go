// Package config provides YAML-based rules loading for the care engine.
// Every tunable constant of the simulation lives here so that caps, rates
// and stage thresholds have a single source of truth.
package config

import (
	"time"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Rules contains all configuration for the care and lifecycle engine.
type Rules struct {
	Care         CareRules         `yaml:"care"`
	Decay        DecayRules        `yaml:"decay"`
	Resurrection ResurrectionRules `yaml:"resurrection"`
	Stages       StageRules        `yaml:"stages"`
	NameMaxLen   int               `yaml:"name_max_len"`
}

// CareRules defines the prayer action.
type CareRules struct {
	DailyLimit int     `yaml:"daily_limit"` // Prayers per sheep per day (non-admin)
	HealAmount float64 `yaml:"heal_amount"` // Health restored per prayer
	CareGain   int     `yaml:"care_gain"`   // Care level gained per prayer
}

// DecayRules defines health loss over time. Rates are health points per day.
type DecayRules struct {
	HealthyDaily float64 `yaml:"healthy_daily"`
	SickDaily    float64 `yaml:"sick_daily"`
	InjuredDaily float64 `yaml:"injured_daily"`
	PrayedDaily  float64 `yaml:"prayed_daily"` // Rate on a day the sheep was prayed for
	DailyCap     float64 `yaml:"daily_cap"`    // No status may lose more than this per day

	// Absences shorter than this are not caught up on load.
	MinOfflineElapsed time.Duration `yaml:"min_offline_elapsed"`

	SicknessThreshold     float64 `yaml:"sickness_threshold"`
	SicknessChance        float64 `yaml:"sickness_chance"`         // Per online evaluation
	OfflineSicknessChance float64 `yaml:"offline_sickness_chance"` // Per catch-up
	InjuryThreshold       float64 `yaml:"injury_threshold"`
	InjuryChance          float64 `yaml:"injury_chance"`
}

// ResurrectionRules defines the revival ritual for dead sheep.
type ResurrectionRules struct {
	DaysRequired int `yaml:"days_required"` // Consecutive daily steps to revive
}

// StageRules holds per-stage metadata. Stage order is fixed by flock.Stage.
type StageRules struct {
	Lamb     StageRule `yaml:"lamb"`
	Faithful StageRule `yaml:"faithful"`
	Golden   StageRule `yaml:"golden"`
}

// StageRule describes one evolutionary stage.
type StageRule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	// Threshold is the care level needed to advance. Ignored on the final stage.
	Threshold int `yaml:"threshold"`
}

// Rule returns the metadata for a stage. Unknown stages get the base stage.
func (s StageRules) Rule(stage flock.Stage) StageRule {
	switch stage {
	case flock.StageFaithful:
		return s.Faithful
	case flock.StageGolden:
		return s.Golden
	default:
		return s.Lamb
	}
}
