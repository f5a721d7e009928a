// Package config loads console client settings from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds runtime configuration for the console client.
type Config struct {
	APIBaseURL  string        `yaml:"api_base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	TokenFile   string        `yaml:"token_file"`
	DownloadURL string        `yaml:"download_url"`
	CallbackURL string        `yaml:"callback_url"`
	LogFormat   string        `yaml:"log_format"`

	Fetch FetchConfig `yaml:"fetch"`

	// RateLimitRPS caps outgoing requests; 0 disables the limiter.
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type FetchConfig struct {
	StaleTime  time.Duration `yaml:"stale_time"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		APIBaseURL: "http://localhost:5050",
		Timeout:    15 * time.Second,
		TokenFile:  filepath.Join(home, ".storesight", "storage.json"),
		LogFormat:  "json",
		Fetch: FetchConfig{
			StaleTime:  30 * time.Second,
			Retries:    1,
			RetryDelay: 500 * time.Millisecond,
		},
		RateLimitBurst: 1,
	}
}

// Load reads path (a missing file is fine) and applies environment overrides.
//
// Environment variables:
//   - CONSOLE_API_BASE_URL
//   - CONSOLE_TIMEOUT (Go duration, e.g. "10s")
//   - CONSOLE_TOKEN_FILE
//   - CONSOLE_DOWNLOAD_URL
//   - CONSOLE_CALLBACK_URL
//   - CONSOLE_RATE_LIMIT_RPS
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("CONSOLE_API_BASE_URL")); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CONSOLE_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_TOKEN_FILE")); v != "" {
		c.TokenFile = v
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_DOWNLOAD_URL")); v != "" {
		c.DownloadURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_CALLBACK_URL")); v != "" {
		c.CallbackURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_RATE_LIMIT_RPS")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CONSOLE_RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = rps
	}
	return nil
}

// Validate checks required fields and clamps the rest to safe values.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api_base_url must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Fetch.StaleTime < 0 {
		c.Fetch.StaleTime = 0
	}
	if c.Fetch.Retries < 0 {
		c.Fetch.Retries = 0
	}
	if c.RateLimitBurst < 1 {
		c.RateLimitBurst = 1
	}
	return nil
}
