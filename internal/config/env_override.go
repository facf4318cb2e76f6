package config

import (
	"os"
	"strings"
)

// applyEnvOverrides layers spec.md §6's external interfaces and the two
// ambient additions (SWESMITH_SQLITE_CACHE_PATH, SWESMITH_WORKERS_DEFAULT)
// over cfg, env values winning over whatever YAML/defaults already set.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SWESMITH_ORG_GH"); v != "" {
		c.GitHubOrg = v
	}
	if v := os.Getenv("SWESMITH_ORG_DH"); v != "" {
		c.DockerHubOrg = v
	}
	if v := os.Getenv("SWESMITH_GH_OWNER_TYPE"); v != "" {
		c.GitHubOwnerType = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHubToken = v
	}

	c.LLMAPIKeys = llmKeysFromEnv()

	c.HTTPProxy = envOrDefault("HTTP_PROXY", c.HTTPProxy)
	c.HTTPSProxy = envOrDefault("HTTPS_PROXY", c.HTTPSProxy)
	c.NoProxy = envOrDefault("NO_PROXY", c.NoProxy)

	c.SQLiteCachePath = envOrDefault("SWESMITH_SQLITE_CACHE_PATH", c.SQLiteCachePath)
	c.Workers = envInt("SWESMITH_WORKERS_DEFAULT", c.Workers)
}

// llmKeysFromEnv reads a comma-separated SWESMITH_LLM_API_KEYS, falling
// back to a single GEMINI_API_KEY, per spec §6's "LLM provider key(s)."
func llmKeysFromEnv() []string {
	if v := os.Getenv("SWESMITH_LLM_API_KEYS"); v != "" {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			k = strings.TrimSpace(k)
			if k != "" {
				keys = append(keys, k)
			}
		}
		return keys
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return []string{v}
	}
	return nil
}
