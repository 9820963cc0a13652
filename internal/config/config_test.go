package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Fetch.MaxAttempts != 4 || cfg.Fetch.BackoffMultiplier != 2 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Crawl.Workers != 6 || cfg.Crawl.MaxURLLength != 512 {
		t.Fatalf("unexpected crawl defaults: %+v", cfg.Crawl)
	}
	if !cfg.Convert.IncludeLinks || cfg.Convert.MaxHeadingLevel != 6 || !cfg.Convert.CleaningRules.RemoveScripts {
		t.Fatalf("unexpected convert defaults: %+v", cfg.Convert)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 20
fetch:
  timeout_seconds: 45
  max_attempts: 6
  backoff_base_ms: 100
  backoff_multiplier: 3
  backoff_max_ms: 500
  jitter: false
  random_seed: 42
crawl:
  workers: 3
  timeout_seconds: 90
  default_limit: 5
  max_limit: 20
  requests_per_second: 0.5
convert:
  include_metadata: true
  max_heading_level: 3
  cleaning_rules:
    remove_comments: false
logging:
  development: true
  level: debug
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Fetch.RandomSeed != 42 || cfg.Fetch.Jitter {
		t.Fatalf("expected fetch overrides to apply: %+v", cfg.Fetch)
	}
	if cfg.Crawl.Workers != 3 || cfg.Crawl.MaxLimit != 20 || cfg.Crawl.RequestsPerSecond != 0.5 {
		t.Fatalf("expected crawl overrides to apply: %+v", cfg.Crawl)
	}
	if !cfg.Convert.IncludeMetadata || cfg.Convert.MaxHeadingLevel != 3 {
		t.Fatalf("expected convert overrides to apply: %+v", cfg.Convert)
	}
	if cfg.Convert.CleaningRules.RemoveComments || !cfg.Convert.CleaningRules.RemoveScripts {
		t.Fatalf("expected nested cleaning rules to merge with defaults: %+v", cfg.Convert.CleaningRules)
	}
	if !cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides: %+v", cfg.Logging)
	}
	if got := cfg.FetchTimeout(); got != 45*time.Second {
		t.Fatalf("expected fetch timeout 45s, got %v", got)
	}
	if got := cfg.CrawlTimeout(); got != 90*time.Second {
		t.Fatalf("expected crawl timeout 90s, got %v", got)
	}
	if got := cfg.RequestTimeout(); got != 20*time.Second {
		t.Fatalf("expected request timeout 20s, got %v", got)
	}

	policy := cfg.RetryPolicy()
	if policy.MaxAttempts() != 6 {
		t.Fatalf("expected 6 attempts, got %d", policy.MaxAttempts())
	}
	if got := policy.Backoff(2); got != 300*time.Millisecond {
		t.Fatalf("expected second backoff 300ms, got %v", got)
	}
	if got := policy.Backoff(5); got != 500*time.Millisecond {
		t.Fatalf("expected capped backoff 500ms, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MDCRAWLER_SERVER_PORT", "7070")
	t.Setenv("MDCRAWLER_CRAWL_WORKERS", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Crawl.Workers != 2 {
		t.Fatalf("expected env overrides, got port=%d workers=%d", cfg.Server.Port, cfg.Crawl.Workers)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "invalid fetch timeout", mutate: func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, want: "fetch.timeout_seconds"},
		{name: "no attempts", mutate: func(c *Config) { c.Fetch.MaxAttempts = 0 }, want: "fetch.max_attempts"},
		{name: "flat backoff", mutate: func(c *Config) { c.Fetch.BackoffMultiplier = 1 }, want: "fetch.backoff_multiplier"},
		{name: "cap below base", mutate: func(c *Config) { c.Fetch.BackoffMaxMs = 1 }, want: "fetch.backoff_base_ms"},
		{name: "no workers", mutate: func(c *Config) { c.Crawl.Workers = 0 }, want: "crawl.workers"},
		{name: "default over max", mutate: func(c *Config) { c.Crawl.DefaultLimit = c.Crawl.MaxLimit + 1 }, want: "crawl.default_limit"},
		{name: "heading level", mutate: func(c *Config) { c.Convert.MaxHeadingLevel = 7 }, want: "convert.max_heading_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
