// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

// EnvPrefix namespaces environment overrides, e.g. MDCRAWLER_SERVER_PORT.
const EnvPrefix = "MDCRAWLER"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Fetch   FetchConfig           `mapstructure:"fetch"`
	Crawl   CrawlConfig           `mapstructure:"crawl"`
	Convert crawler.ConvertConfig `mapstructure:"convert"`
	Logging LoggingConfig         `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// FetchConfig configures single requests and retry behavior.
type FetchConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxBodyBytes      int     `mapstructure:"max_body_bytes"`
	MaxAttempts       int     `mapstructure:"max_attempts"`
	BackoffBaseMs     int     `mapstructure:"backoff_base_ms"`
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier"`
	BackoffMaxMs      int     `mapstructure:"backoff_max_ms"`
	Jitter            bool    `mapstructure:"jitter"`
	// RandomSeed makes fingerprints reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// CrawlConfig governs the crawl orchestrator and its pacing.
type CrawlConfig struct {
	Workers           int     `mapstructure:"workers"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	DefaultLimit      int     `mapstructure:"default_limit"`
	MaxLimit          int     `mapstructure:"max_limit"`
	MaxURLLength      int     `mapstructure:"max_url_length"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.max_body_bytes", 10<<20)
	v.SetDefault("fetch.max_attempts", crawler.DefaultMaxAttempts)
	v.SetDefault("fetch.backoff_base_ms", crawler.DefaultBackoffBase.Milliseconds())
	v.SetDefault("fetch.backoff_multiplier", crawler.DefaultBackoffMultiplier)
	v.SetDefault("fetch.backoff_max_ms", crawler.DefaultBackoffMax.Milliseconds())
	v.SetDefault("fetch.jitter", true)
	v.SetDefault("fetch.random_seed", 0)
	v.SetDefault("crawl.workers", crawler.DefaultWorkers)
	v.SetDefault("crawl.timeout_seconds", 300)
	v.SetDefault("crawl.default_limit", 50)
	v.SetDefault("crawl.max_limit", 1000)
	v.SetDefault("crawl.max_url_length", crawler.DefaultMaxURLLength)
	v.SetDefault("crawl.requests_per_second", 2.0)
	v.SetDefault("crawl.burst", 4)
	v.SetDefault("convert.include_links", true)
	v.SetDefault("convert.clean_whitespace", true)
	v.SetDefault("convert.preserve_headings", true)
	v.SetDefault("convert.include_metadata", false)
	v.SetDefault("convert.extract_main_content", false)
	v.SetDefault("convert.max_heading_level", crawler.DefaultMaxHeadingLevel)
	v.SetDefault("convert.cleaning_rules.remove_scripts", true)
	v.SetDefault("convert.cleaning_rules.remove_styles", true)
	v.SetDefault("convert.cleaning_rules.remove_comments", true)
	v.SetDefault("convert.cleaning_rules.preserve_line_breaks", true)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server.port must be within 1..65535"))
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("server.request_timeout_seconds must be > 0"))
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("fetch.timeout_seconds must be > 0"))
	}
	if c.Fetch.MaxAttempts <= 0 {
		errs = append(errs, errors.New("fetch.max_attempts must be > 0"))
	}
	if c.Fetch.BackoffBaseMs <= 0 || c.Fetch.BackoffMaxMs < c.Fetch.BackoffBaseMs {
		errs = append(errs, errors.New("fetch.backoff_base_ms must be > 0 and <= fetch.backoff_max_ms"))
	}
	if c.Fetch.BackoffMultiplier < 2 {
		errs = append(errs, errors.New("fetch.backoff_multiplier must be >= 2"))
	}
	if c.Crawl.Workers <= 0 {
		errs = append(errs, errors.New("crawl.workers must be > 0"))
	}
	if c.Crawl.MaxLimit <= 0 {
		errs = append(errs, errors.New("crawl.max_limit must be > 0"))
	}
	if c.Crawl.DefaultLimit <= 0 || c.Crawl.DefaultLimit > c.Crawl.MaxLimit {
		errs = append(errs, errors.New("crawl.default_limit must be within 1..crawl.max_limit"))
	}
	if c.Crawl.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("crawl.requests_per_second must be >= 0"))
	}
	if c.Convert.MaxHeadingLevel < 1 || c.Convert.MaxHeadingLevel > 6 {
		errs = append(errs, errors.New("convert.max_heading_level must be within 1..6"))
	}
	return errors.Join(errs...)
}

// RetryPolicy builds the fetch retry policy.
func (c Config) RetryPolicy() *crawler.ExponentialRetryPolicy {
	return crawler.NewExponentialRetryPolicy(
		crawler.WithMaxAttempts(c.Fetch.MaxAttempts),
		crawler.WithBaseDelay(time.Duration(c.Fetch.BackoffBaseMs)*time.Millisecond),
		crawler.WithMultiplier(c.Fetch.BackoffMultiplier),
		crawler.WithMaxDelay(time.Duration(c.Fetch.BackoffMaxMs)*time.Millisecond),
		crawler.WithJitter(c.Fetch.Jitter),
	)
}

// FetchTimeout is the budget for one HTTP attempt.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds a single-page conversion request.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// CrawlTimeout bounds a whole crawl request.
func (c Config) CrawlTimeout() time.Duration {
	return time.Duration(c.Crawl.TimeoutSeconds) * time.Second
}
