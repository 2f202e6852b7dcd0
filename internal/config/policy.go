package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

// LoadScoringPolicy returns the built-in scoring policy, overlaid with
// values from the YAML file at path when one is configured. Fields absent
// from the file keep their defaults.
func LoadScoringPolicy(path string) (domain.ScoringPolicy, error) {
	policy := domain.DefaultScoringPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read scoring policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return policy, fmt.Errorf("parse scoring policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("invalid scoring policy: %w", err)
	}
	return policy, nil
}
