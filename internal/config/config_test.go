package config

import (
	"context"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FACTUREX_API_KEY", "clave")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("Port = %q, want 8090", cfg.Port)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("JobTTL = %v, want 1h", cfg.JobTTL)
	}
	if cfg.OutputDir != "exports" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FACTUREX_API_KEY", "clave")
	t.Setenv("PORT", "9999")
	t.Setenv("EXPORT_MAX_ATTEMPTS", "5")
	t.Setenv("JOB_TTL", "30m")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" || cfg.MaxAttempts != 5 || cfg.JobTTL != 30*time.Minute {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := Config{DataAPIURL: "http://localhost:3000", MaxAttempts: 3}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when FACTUREX_API_KEY is missing")
	}
}
