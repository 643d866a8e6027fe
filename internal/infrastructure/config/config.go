// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Health  HealthConfig  `mapstructure:"health"`
	Storage StorageConfig `mapstructure:"storage"`
	Engine  EngineConfig  `mapstructure:"engine"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LLMConfig contains the completion provider settings.
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// HealthConfig tunes the connectivity prober.
type HealthConfig struct {
	VerdictTTLSeconds int `mapstructure:"verdict_ttl_seconds"`
}

// StorageConfig selects and configures the plan store backend.
type StorageConfig struct {
	// Backend is "memory" or "redis".
	Backend       string        `mapstructure:"backend"`
	RedisHost     string        `mapstructure:"redis_host"`
	RedisPort     int           `mapstructure:"redis_port"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDatabase int           `mapstructure:"redis_database"`
	PlanTTL       time.Duration `mapstructure:"plan_ttl"`
}

// EngineConfig contains suggestion engine flags.
type EngineConfig struct {
	FallbackOnly bool `mapstructure:"fallback_only"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mealengine")
	}

	// Enable environment variable override
	v.SetEnvPrefix("MEALENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The mobile backend deploys with bare variable names; bind them in
	// addition to the prefixed form.
	bindAliases(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "mealengine")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.groq.com")
	v.SetDefault("llm.model", "llama3-8b-8192")

	// Health defaults
	v.SetDefault("health.verdict_ttl_seconds", 300)

	// Storage defaults
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.redis_host", "localhost")
	v.SetDefault("storage.redis_port", 6379)
	v.SetDefault("storage.redis_database", 0)
	v.SetDefault("storage.plan_ttl", "0s")

	// Engine defaults
	v.SetDefault("engine.fallback_only", false)
}

// bindAliases maps the deployment's unprefixed environment variables onto
// their config keys.
func bindAliases(v *viper.Viper) {
	aliases := map[string]string{
		"llm.api_key":                "LLM_API_KEY",
		"llm.base_url":               "LLM_BASE_URL",
		"llm.model":                  "LLM_MODEL",
		"health.verdict_ttl_seconds": "HEALTH_VERDICT_TTL_SECONDS",
		"engine.fallback_only":       "FALLBACK_ONLY",
	}
	for key, env := range aliases {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key, "MEALENGINE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}

	if c.Health.VerdictTTLSeconds < 0 {
		return fmt.Errorf("health.verdict_ttl_seconds must be non-negative")
	}

	switch c.Storage.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("storage.backend must be memory or redis, got %q", c.Storage.Backend)
	}

	return nil
}

// VerdictTTL returns the prober cache TTL as a duration.
func (c *Config) VerdictTTL() time.Duration {
	return time.Duration(c.Health.VerdictTTLSeconds) * time.Second
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
