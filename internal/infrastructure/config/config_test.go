package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mealengine", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.groq.com", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Model)
	assert.Equal(t, 300, cfg.Health.VerdictTTLSeconds)
	assert.Equal(t, 5*time.Minute, cfg.VerdictTTL())
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.False(t, cfg.Engine.FallbackOnly)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadBareEnvAliases(t *testing.T) {
	t.Setenv("LLM_API_KEY", "gsk_test")
	t.Setenv("LLM_BASE_URL", "https://llm.example.com")
	t.Setenv("LLM_MODEL", "llama3-70b-8192")
	t.Setenv("HEALTH_VERDICT_TTL_SECONDS", "60")
	t.Setenv("FALLBACK_ONLY", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gsk_test", cfg.LLM.APIKey)
	assert.Equal(t, "https://llm.example.com", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
	assert.Equal(t, 60, cfg.Health.VerdictTTLSeconds)
	assert.True(t, cfg.Engine.FallbackOnly)
}

func TestLoadPrefixedEnv(t *testing.T) {
	t.Setenv("MEALENGINE_SERVER_PORT", "9090")
	t.Setenv("MEALENGINE_APP_ENVIRONMENT", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  environment: staging
server:
  port: 9999
storage:
  backend: redis
  redis_host: cache.internal
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "cache.internal", cfg.Storage.RedisHost)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"missing base url", func(c *Config) { c.LLM.BaseURL = "" }},
		{"negative verdict ttl", func(c *Config) { c.Health.VerdictTTLSeconds = -1 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"missing app name", func(c *Config) { c.App.Name = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
