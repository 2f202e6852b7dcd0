package domain

import (
	"fmt"
	"math"
)

// ScoringPolicy holds the tunable constants of the risk engine. The defaults
// mirror the weights the composite contract documents; treat changes as a
// scoring-model revision, not a code change.
type ScoringPolicy struct {
	SevereKeywords   []string `yaml:"severe_keywords"`
	LegalKeywords    []string `yaml:"legal_keywords"`
	NegativeKeywords []string `yaml:"negative_keywords"`

	SevereWeight   float64 `yaml:"severe_weight"`
	LegalWeight    float64 `yaml:"legal_weight"`
	NegativeWeight float64 `yaml:"negative_weight"`

	NegativeFractionWeight float64 `yaml:"negative_fraction_weight"`
	MentionCountWeight     float64 `yaml:"mention_count_weight"`
	NegativeCountWeight    float64 `yaml:"negative_count_weight"`
	LogisticScale          float64 `yaml:"logistic_scale"`

	RuleBlend float64 `yaml:"rule_blend"`
	StatBlend float64 `yaml:"stat_blend"`

	WindowDays int `yaml:"window_days"`
}

// Validate rejects policies that would break the score contract: component
// scores must stay in [0, 100] and the blend must be a convex combination.
func (p ScoringPolicy) Validate() error {
	if p.SevereWeight < 0 || p.LegalWeight < 0 || p.NegativeWeight < 0 {
		return fmt.Errorf("keyword weights must be non-negative")
	}
	if p.NegativeFractionWeight < 0 || p.MentionCountWeight < 0 || p.NegativeCountWeight < 0 {
		return fmt.Errorf("feature weights must be non-negative")
	}
	if p.LogisticScale <= 0 {
		return fmt.Errorf("logistic scale must be positive")
	}
	if p.RuleBlend < 0 || p.StatBlend < 0 || math.Abs(p.RuleBlend+p.StatBlend-1.0) > 1e-9 {
		return fmt.Errorf("rule and stat blend weights must be non-negative and sum to 1")
	}
	if p.WindowDays <= 0 {
		return fmt.Errorf("window days must be positive")
	}
	return nil
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		SevereKeywords: []string{
			"bankruptcy", "insolvency", "liquidation", "restructuring",
			"debt default", "credit downgrade", "financial distress",
		},
		LegalKeywords: []string{
			"lawsuit", "litigation", "settlement", "fine", "penalty",
			"investigation", "regulatory action", "compliance violation",
		},
		NegativeKeywords: []string{
			"loss", "decline", "layoff", "closure", "shutdown",
			"recall", "scandal", "fraud", "corruption",
		},

		SevereWeight:   30.0,
		LegalWeight:    20.0,
		NegativeWeight: 10.0,

		NegativeFractionWeight: 40.0,
		MentionCountWeight:     5.0,
		NegativeCountWeight:    15.0,
		LogisticScale:          50.0,

		RuleBlend: 0.6,
		StatBlend: 0.4,

		WindowDays: 30,
	}
}
