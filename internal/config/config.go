// Package config loads the ambient pipeline configuration: worker counts,
// timeouts, cache location, and the external interfaces spec.md §6 names
// (GitHub/DockerHub namespaces, LLM provider keys, proxy settings).
// Adapted from the teacher's internal/config/config.go: a DefaultConfig()
// literal overridden by an applyEnvOverrides() pass, minus the agent/shard
// concepts this pipeline has no use for.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the ambient settings every pipeline stage reads from.
type Config struct {
	// GitHub/DockerHub namespaces for mirrors and images (spec §6).
	GitHubOrg     string `yaml:"github_org"`
	DockerHubOrg  string `yaml:"dockerhub_org"`
	GitHubOwnerType string `yaml:"github_owner_type"` // "user" or "org"

	// GitHubToken grants push access to the mirror org.
	GitHubToken string `yaml:"-"`

	// LLM provider API key(s), comma-separated for key-pool rotation.
	LLMAPIKeys []string `yaml:"-"`
	LLMModel   string   `yaml:"llm_model"`

	// HTTPProxy/HTTPSProxy/NoProxy are loaded from the environment; no
	// stage passes them to containers.
	HTTPProxy  string `yaml:"-"`
	HTTPSProxy string `yaml:"-"`
	NoProxy    string `yaml:"-"`

	// Workers is the default validator/buggen concurrency.
	Workers int `yaml:"workers"`

	// PerTestTimeout is parsed from per_test_timeout. No stage reads it:
	// container test runs are bounded by the Profile's PerTestTimeoutSec.
	PerTestTimeout time.Duration `yaml:"-"`
	PerTestTimeoutRaw string    `yaml:"per_test_timeout"`

	// SQLiteCachePath is the gold-report/image-build cache location.
	SQLiteCachePath string `yaml:"sqlite_cache_path"`
}

// DefaultConfig returns the baseline configuration before YAML and
// environment overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		GitHubOwnerType:   "org",
		LLMModel:          "gemini-2.0-flash",
		Workers:           4,
		PerTestTimeoutRaw: "10m",
		SQLiteCachePath:   "logs/.cache/swesmith.db",
	}
}

// Load reads YAML configuration from path (if non-empty and the file
// exists) over DefaultConfig, then applies environment overrides, then
// validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseDurations() error {
	d, err := time.ParseDuration(c.PerTestTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: invalid per_test_timeout %q: %w", c.PerTestTimeoutRaw, err)
	}
	c.PerTestTimeout = d
	return nil
}

// Validate enforces the external interfaces spec.md §6 requires before any
// pipeline work is attempted, per §7's "Configuration error ... fail fast
// before any work."
func (c *Config) Validate() error {
	if c.GitHubOrg == "" {
		return fmt.Errorf("config: SWESMITH_ORG_GH is required")
	}
	if c.DockerHubOrg == "" {
		return fmt.Errorf("config: SWESMITH_ORG_DH is required")
	}
	if c.GitHubOwnerType != "user" && c.GitHubOwnerType != "org" {
		return fmt.Errorf("config: SWESMITH_GH_OWNER_TYPE must be 'user' or 'org', got %q", c.GitHubOwnerType)
	}
	if c.GitHubToken == "" {
		return fmt.Errorf("config: GITHUB_TOKEN is required")
	}
	if len(c.LLMAPIKeys) == 0 {
		return fmt.Errorf("config: at least one LLM provider API key is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
