package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for entrestate-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values.
// Secrets (passwords, API keys) must only come from environment
// variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8084"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Inventory database configuration (PostgreSQL)
	Inventory InventoryConfig `yaml:"inventory"`

	// LLM-assisted compilation configuration
	LLM LLMConfig `yaml:"llm"`

	// Content-addressed Time Table cache (optional)
	Cache CacheConfig `yaml:"cache"`

	// Scoring configuration shared by the pure scorer and the routed
	// ranking relation
	Scoring ScoringConfig `yaml:"scoring"`
}

// InventoryConfig holds the inventory PostgreSQL configuration.
type InventoryConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"entrestate"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"entrestate_inventory"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`

	// QueryTimeoutSeconds bounds every materialization query.
	// Timeouts surface as a retryable "service unavailable".
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" env:"PG_QUERY_TIMEOUT_SECONDS" env-default:"5"`
}

// LLMConfig holds the assisted-compilation provider configuration.
// When disabled, compileTableSpecWithLLM degrades to the rule-based
// path with an llm_disabled warning.
type LLMConfig struct {
	Enabled  bool   `yaml:"enabled" env:"TABLESPEC_LLM_ENABLED" env-default:"false"`
	Provider string `yaml:"provider" env:"TABLESPEC_LLM_PROVIDER" env-default:"openai"` // openai | anthropic
	Endpoint string `yaml:"endpoint" env:"TABLESPEC_LLM_ENDPOINT" env-default:""`
	Model    string `yaml:"model" env:"TABLESPEC_LLM_MODEL" env-default:""`
	APIKey   string `yaml:"-" env:"TABLESPEC_LLM_API_KEY"` // Secret - not in YAML

	// TimeoutSeconds bounds the provider call; on expiry the compiler
	// falls through to the rule-based path.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"TABLESPEC_LLM_TIMEOUT_SECONDS" env-default:"8"`
}

// Timeout returns the provider call timeout as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig holds the optional redis-backed Time Table store.
// If Addr is empty the materializer runs without a cache; recomputing
// is always safe because materialization is pure given unchanged data.
type CacheConfig struct {
	Addr       string `yaml:"addr" env:"CACHE_REDIS_ADDR" env-default:""`
	Password   string `yaml:"-" env:"CACHE_REDIS_PASSWORD"` // Secret - not in YAML
	DB         int    `yaml:"db" env:"CACHE_REDIS_DB" env-default:"0"`
	TTLMinutes int    `yaml:"ttl_minutes" env:"CACHE_TTL_MINUTES" env-default:"30"`
}

// Enabled returns true when a cache endpoint is configured.
func (c *CacheConfig) Enabled() bool {
	return c.Addr != ""
}

// TTL returns the cache entry lifetime.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ScoringConfig holds the market/match blend ratio. The same constant
// drives the in-process scorer and the database-side ranking ORDER BY,
// so both paths produce comparable orderings.
type ScoringConfig struct {
	MarketBlend float64 `yaml:"market_blend" env:"SCORING_MARKET_BLEND" env-default:"0.65"`
}

// MatchBlend is the complement of MarketBlend.
func (c *ScoringConfig) MatchBlend() float64 {
	return 1 - c.MarketBlend
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config.yaml exists (containers configured purely
// by environment), it falls back to environment variables alone.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scoring.MarketBlend < 0 || c.Scoring.MarketBlend > 1 {
		return fmt.Errorf("scoring.market_blend must be in [0,1], got %v", c.Scoring.MarketBlend)
	}
	if c.LLM.Enabled && c.LLM.Endpoint == "" && c.LLM.Provider == "openai" {
		return fmt.Errorf("llm.endpoint is required when the openai provider is enabled")
	}
	if c.LLM.Enabled && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required when llm is enabled")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string for the
// inventory database.
func (c *InventoryConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// QueryTimeout returns the statement timeout as a duration.
func (c *InventoryConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}
