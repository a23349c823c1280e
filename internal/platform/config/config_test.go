package config

import (
	"os"
	"testing"
)

// clearEnv unsets all TUTOR_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"TUTOR_SERVER_PORT",
		"TUTOR_SERVER_HOST",
		"TUTOR_CURRICULUM_PATH",
		"TUTOR_DATABASE_ENABLED",
		"TUTOR_DATABASE_URL",
		"TUTOR_DATABASE_MAX_CONNS",
		"TUTOR_DATABASE_MIN_CONNS",
		"TUTOR_CACHE_ENABLED",
		"TUTOR_CACHE_URL",
		"TUTOR_METRICS_SLOW_MS",
		"TUTOR_REPORT_TOKEN_HASH",
		"TUTOR_LOG_LEVEL",
		"TUTOR_LOG_FORMAT",
	}
	for _, v := range envVars {
		_ = os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Curriculum.Path != "./data/course.json" {
		t.Errorf("Curriculum.Path = %q, want ./data/course.json", cfg.Curriculum.Path)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled should default to false")
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.Metrics.SlowThresholdMS != 1000 {
		t.Errorf("Metrics.SlowThresholdMS = %v, want 1000", cfg.Metrics.SlowThresholdMS)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TUTOR_SERVER_PORT", "9090")
	t.Setenv("TUTOR_CURRICULUM_PATH", "/etc/tutor/course.yaml")
	t.Setenv("TUTOR_DATABASE_ENABLED", "true")
	t.Setenv("TUTOR_METRICS_SLOW_MS", "250.5")
	t.Setenv("TUTOR_LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Curriculum.Path != "/etc/tutor/course.yaml" {
		t.Errorf("Curriculum.Path = %q", cfg.Curriculum.Path)
	}
	if !cfg.Database.Enabled {
		t.Error("Database.Enabled should be true")
	}
	if cfg.Metrics.SlowThresholdMS != 250.5 {
		t.Errorf("Metrics.SlowThresholdMS = %v, want 250.5", cfg.Metrics.SlowThresholdMS)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("TUTOR_SERVER_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want fallback 8080", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults-valid", func(c *Config) {}, false},
		{"missing-curriculum", func(c *Config) { c.Curriculum.Path = "" }, true},
		{"db-enabled-no-url", func(c *Config) { c.Database.Enabled = true; c.Database.URL = "" }, true},
		{"cache-enabled-no-url", func(c *Config) { c.Cache.Enabled = true; c.Cache.URL = "" }, true},
		{"bad-log-format", func(c *Config) { c.Log.Format = "yaml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
