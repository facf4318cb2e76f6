package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SWESMITH_ORG_GH", "swesmith-mirrors")
	t.Setenv("SWESMITH_ORG_DH", "swesmithhub")
	t.Setenv("SWESMITH_GH_OWNER_TYPE", "org")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GEMINI_API_KEY", "gem_test")
}

func TestDefaultConfig_HasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "logs/.cache/swesmith.db", cfg.SQLiteCachePath)
}

func TestLoad_MissingRequiredEnvFailsValidation(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_AppliesEnvOverridesAndValidates(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "swesmith-mirrors", cfg.GitHubOrg)
	assert.Equal(t, []string{"gem_test"}, cfg.LLMAPIKeys)
	assert.Equal(t, 10*time.Minute, cfg.PerTestTimeout)
}

func TestLoad_CommaSeparatedLLMKeysTakePrecedenceOverGemini(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWESMITH_LLM_API_KEYS", "a, b ,c")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.LLMAPIKeys)
}

func TestLoad_EnvOverridesYAMLFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "swesmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\ngithub_org: from-yaml\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers, "yaml value applies when no env override is set")
	assert.Equal(t, "swesmith-mirrors", cfg.GitHubOrg, "env override wins over yaml")

	t.Setenv("SWESMITH_WORKERS_DEFAULT", "8")
	cfg2, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg2.Workers, "env beats yaml")
}

func TestValidate_RejectsInvalidOwnerType(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWESMITH_GH_OWNER_TYPE", "team")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate_RejectsNonPositiveWorkers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWESMITH_WORKERS_DEFAULT", "0")
	_, err := Load("")
	require.Error(t, err)
}
