package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_BOOTSTRAP_USER", "APP_BOOTSTRAP_PASSWORD", "APP_DATABASE_URL",
		"APP_LISTEN_ADDR", "APP_ALLOW_ZERO_DELTA", "APP_MAINTAIN_AGGREGATES",
		"APP_RECONCILE_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.AllowZeroDelta {
		t.Error("AllowZeroDelta defaults true, want false (strict)")
	}
	if !cfg.MaintainAggregates {
		t.Error("MaintainAggregates defaults false, want true")
	}
	if cfg.ReconcileInterval != time.Hour {
		t.Errorf("ReconcileInterval = %s, want 1h", cfg.ReconcileInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_LISTEN_ADDR", ":9999")
	t.Setenv("APP_ALLOW_ZERO_DELTA", "true")
	t.Setenv("APP_MAINTAIN_AGGREGATES", "false")
	t.Setenv("APP_RECONCILE_INTERVAL", "15m")

	cfg := Load()
	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want :9999", cfg.ListenAddr)
	}
	if !cfg.AllowZeroDelta || cfg.MaintainAggregates {
		t.Errorf("strictness flags not applied: %+v", cfg)
	}
	if cfg.ReconcileInterval != 15*time.Minute {
		t.Errorf("ReconcileInterval = %s, want 15m", cfg.ReconcileInterval)
	}
}

func TestLoadIgnoresBadReconcileInterval(t *testing.T) {
	t.Setenv("APP_RECONCILE_INTERVAL", "soon")

	if cfg := Load(); cfg.ReconcileInterval != time.Hour {
		t.Errorf("ReconcileInterval = %s, want 1h fallback", cfg.ReconcileInterval)
	}
}
