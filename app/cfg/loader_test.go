package cfg

import (
	"strings"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	original := Version
	defer func() { Version = original }()

	Version = ""
	if GetVersion() != "unknown" {
		t.Errorf("Expected 'unknown' for empty version, got '%s'", GetVersion())
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.SitesDir != "./sites" {
		t.Errorf("Expected sites dir './sites', got '%s'", cfg.SitesDir)
	}
	if cfg.CacheBackend != CacheBackendSQLite {
		t.Errorf("Expected sqlite cache backend, got '%s'", cfg.CacheBackend)
	}
	if cfg.CacheMaxAge != 0 {
		t.Errorf("Expected eviction to be disabled, got %v", cfg.CacheMaxAge)
	}
	if cfg.JanitorInterval != time.Hour {
		t.Errorf("Expected janitor interval 1h, got %v", cfg.JanitorInterval)
	}
	if cfg.ProbeConcurrency != 1 {
		t.Errorf("Expected sequential probes, got %d", cfg.ProbeConcurrency)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("Expected no request timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.Version != GetVersion() {
		t.Errorf("Expected version '%s', got '%s'", GetVersion(), cfg.Version)
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := load([]string{
		"--port", "9090",
		"--sites-dir", "/etc/html-comb/sites",
		"--cache-backend", "redis",
		"--redis-addr", "redis:6379",
		"--cache-max-age", "86400",
		"--janitor-interval", "600",
		"--probe-concurrency", "8",
		"--request-timeout", "30",
		"--api-key", "secret",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.SitesDir != "/etc/html-comb/sites" {
		t.Errorf("Expected sites dir, got '%s'", cfg.SitesDir)
	}
	if cfg.CacheBackend != CacheBackendRedis || cfg.RedisAddr != "redis:6379" {
		t.Errorf("Expected redis backend at redis:6379, got '%s' '%s'", cfg.CacheBackend, cfg.RedisAddr)
	}
	if cfg.CacheMaxAge != 24*time.Hour {
		t.Errorf("Expected max age 24h, got %v", cfg.CacheMaxAge)
	}
	if cfg.JanitorInterval != 10*time.Minute {
		t.Errorf("Expected janitor interval 10m, got %v", cfg.JanitorInterval)
	}
	if cfg.ProbeConcurrency != 8 {
		t.Errorf("Expected probe concurrency 8, got %d", cfg.ProbeConcurrency)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected request timeout 30s, got %v", cfg.RequestTimeout)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SITES_DIR", "/srv/sites")
	t.Setenv("PROBE_CONCURRENCY", "4")

	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.SitesDir != "/srv/sites" {
		t.Errorf("Expected sites dir from environment, got '%s'", cfg.SitesDir)
	}
	if cfg.ProbeConcurrency != 4 {
		t.Errorf("Expected probe concurrency from environment, got %d", cfg.ProbeConcurrency)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown backend", []string{"--cache-backend", "memcached"}, "cache-backend"},
		{"negative max age", []string{"--cache-max-age=-1"}, "cache-max-age"},
		{"zero janitor interval", []string{"--cache-max-age", "60", "--janitor-interval", "0"}, "janitor-interval"},
		{"zero probe concurrency", []string{"--probe-concurrency", "0"}, "probe-concurrency"},
		{"negative timeout", []string{"--request-timeout=-5"}, "request-timeout"},
		{"postgres without password", []string{"--cache-backend", "postgres"}, "db-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_PASSWORD", "")

			_, err := load(tt.args)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning '%s', got: %v", tt.want, err)
			}
		})
	}
}

func TestApplyTimezone(t *testing.T) {
	original := time.Local
	defer func() { time.Local = original }()

	if err := applyTimezone("Europe/Berlin"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if time.Local.String() != "Europe/Berlin" {
		t.Errorf("Expected local timezone 'Europe/Berlin', got '%s'", time.Local.String())
	}

	if err := applyTimezone("Mars/Olympus_Mons"); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}
