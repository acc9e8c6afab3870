package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the built-in rules. The embedded rules.yaml carries
// the same values; this is the fallback if it fails to parse.
func DefaultRules() Rules {
	return Rules{
		Care: CareRules{
			DailyLimit: 3,
			HealAmount: 10,
			CareGain:   10,
		},
		Decay: DecayRules{
			HealthyDaily:          13,
			SickDaily:             20,
			InjuredDaily:          16,
			PrayedDaily:           6,
			DailyCap:              20,
			MinOfflineElapsed:     6 * time.Minute,
			SicknessThreshold:     40,
			SicknessChance:        0.005,
			OfflineSicknessChance: 0.5,
			InjuryThreshold:       10,
			InjuryChance:          0.01,
		},
		Resurrection: ResurrectionRules{
			DaysRequired: 5,
		},
		Stages: StageRules{
			Lamb: StageRule{
				Name:        "Little Lamb",
				Description: "A small, innocent lamb looking for guidance.",
				Icon:        "🐑",
				Threshold:   100,
			},
			Faithful: StageRule{
				Name:        "Faithful Sheep",
				Description: "A grown sheep with a steady heart.",
				Icon:        "🐏",
				Threshold:   300,
			},
			Golden: StageRule{
				Name:        "Golden Ram",
				Description: "A radiant ram that brings blessings.",
				Icon:        "🌟",
			},
		},
		NameMaxLen: 10,
	}
}
