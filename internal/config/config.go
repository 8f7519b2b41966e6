package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	// BootstrapUser/BootstrapPassword seed the first household member on
	// startup so the instance is usable before anyone can log in.
	BootstrapUser     string
	BootstrapPassword string

	DatabaseURL string

	ListenAddr string

	// AllowZeroDelta selects the permissive delta rule: an unchanged meter
	// value is accepted instead of rejected. Default strict.
	AllowZeroDelta bool

	// MaintainAggregates enables the additive monthly rollup written on
	// each create. The reconcile worker repairs it either way.
	MaintainAggregates bool

	// ReconcileInterval is how often the rollup cache is recomputed from
	// raw readings.
	ReconcileInterval time.Duration
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		BootstrapUser:      getenv("APP_BOOTSTRAP_USER", "admin"),
		BootstrapPassword:  getenv("APP_BOOTSTRAP_PASSWORD", "changeme"),
		DatabaseURL:        os.Getenv("APP_DATABASE_URL"),
		ListenAddr:         getenv("APP_LISTEN_ADDR", ":8080"),
		AllowZeroDelta:     getbool("APP_ALLOW_ZERO_DELTA", false),
		MaintainAggregates: getbool("APP_MAINTAIN_AGGREGATES", true),
		ReconcileInterval:  time.Hour,
	}

	if v := os.Getenv("APP_RECONCILE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReconcileInterval = d
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
