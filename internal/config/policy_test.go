package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScoringPolicyWithoutPathReturnsDefaults(t *testing.T) {
	policy, err := LoadScoringPolicy("")
	if err != nil {
		t.Fatalf("LoadScoringPolicy() error = %v", err)
	}
	if policy.SevereWeight != 30.0 || policy.RuleBlend != 0.6 || policy.WindowDays != 30 {
		t.Fatalf("unexpected defaults %+v", policy)
	}
}

func TestLoadScoringPolicyOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	raw := []byte("severe_weight: 45\nwindow_days: 14\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	policy, err := LoadScoringPolicy(path)
	if err != nil {
		t.Fatalf("LoadScoringPolicy() error = %v", err)
	}
	if policy.SevereWeight != 45.0 {
		t.Fatalf("expected overridden severe weight, got %v", policy.SevereWeight)
	}
	if policy.WindowDays != 14 {
		t.Fatalf("expected overridden window, got %d", policy.WindowDays)
	}
	// Untouched fields keep defaults.
	if policy.LegalWeight != 20.0 || policy.RuleBlend != 0.6 {
		t.Fatalf("expected defaults preserved, got %+v", policy)
	}
}

func TestLoadScoringPolicyRejectsInvalidBlend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	raw := []byte("rule_blend: 0.9\nstat_blend: 0.9\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	if _, err := LoadScoringPolicy(path); err == nil {
		t.Fatalf("expected validation error for non-convex blend")
	}
}

func TestLoadScoringPolicyMissingFile(t *testing.T) {
	if _, err := LoadScoringPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
