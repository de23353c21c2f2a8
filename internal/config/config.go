// Package config provides configuration management for the TruthBot server and client.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingServerAddr        = errors.New("server.addr is required")
	ErrInvalidRateLimit         = errors.New("server.rate_limit.requests_per_minute and burst must be at least 1")
	ErrInvalidShutdownTimeout   = errors.New("server.shutdown_timeout_sec must be at least 1")
	ErrMissingBaseURL           = errors.New("client.base_url is required")
	ErrInvalidClientTimeout     = errors.New("client.timeout_sec must be non-negative")
	ErrMissingSearchEndpoint    = errors.New("search.endpoint is required")
	ErrInvalidMaxResults        = errors.New("search.max_results must be between 1 and 20")
	ErrInvalidContentLimit      = errors.New("search.content_limit must be at least 1")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingAgentProvider     = errors.New("agent.provider is required")
	ErrInvalidAgentTimeout      = errors.New("agent.timeout_sec must be at least 1")
	ErrInvalidCacheBackend      = errors.New("cache.backend must be one of: memory, redis")
	ErrInvalidCacheTTL          = errors.New("cache.ttl_sec must be at least 1")
	ErrMissingRedisAddr         = errors.New("cache.redis.addr is required for the redis backend")
	ErrMissingHistoryPath       = errors.New("history.path is required when history is enabled")
	ErrInvalidMinSources        = errors.New("validation.min_sources must be non-negative")
	ErrInvalidMaxSources        = errors.New("validation.max_sources must be at least 1")
	ErrMinExceedsMax            = errors.New("validation.min_sources cannot exceed validation.max_sources")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete TruthBot configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Client     ClientConfig     `yaml:"client"`
	Search     SearchConfig     `yaml:"search"`
	Agent      AgentConfig      `yaml:"agent"`
	Cache      CacheConfig      `yaml:"cache"`
	History    HistoryConfig    `yaml:"history"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr               string          `yaml:"addr"`
	AllowedOrigins     []string        `yaml:"allowed_origins"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
	ShutdownTimeoutSec int             `yaml:"shutdown_timeout_sec"`
}

// RateLimitConfig defines per-client request limits on /fact-check.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// ClientConfig contains fact-check API client settings.
type ClientConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SearchConfig contains web search settings.
type SearchConfig struct {
	Endpoint       string      `yaml:"endpoint"`
	APIKey         string      `yaml:"api_key"`
	IncludeDomains []string    `yaml:"include_domains"`
	ExcludeDomains []string    `yaml:"exclude_domains"`
	Retry          RetryPolicy `yaml:"retry"`
	MaxResults     int         `yaml:"max_results"`
	ContentLimit   int         `yaml:"content_limit"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// AgentConfig selects and configures the analysis model.
type AgentConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Endpoint    string  `yaml:"endpoint"`
	OpenAIKey   string  `yaml:"openai_api_key"`
	GeminiKey   string  `yaml:"gemini_api_key"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// CacheConfig defines verdict caching.
type CacheConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
	TTLSec  int         `yaml:"ttl_sec"`
	Enabled bool        `yaml:"enabled"`
}

// RedisConfig holds connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// HistoryConfig defines the saved-check store.
type HistoryConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// ValidationConfig defines verdict markdown diagnostics.
type ValidationConfig struct {
	RequiredSections []string `yaml:"required_sections"`
	MinSources       int      `yaml:"min_sources"`
	MaxSources       int      `yaml:"max_sources"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultAllowedOrigins are the local front-end origins accepted by CORS.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:8080",
	"http://localhost:8000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:8080",
	"http://127.0.0.1:8000",
}

// Default returns a configuration that runs locally without a config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             5,
			},
			ShutdownTimeoutSec: 10,
		},
		Client: ClientConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutSec: 120,
		},
		Search: SearchConfig{
			Endpoint:     "https://api.tavily.com",
			MaxResults:   10,
			ContentLimit: 500,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        10000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
		},
		Agent: AgentConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   1200,
			TimeoutSec:  90,
		},
		Cache: CacheConfig{
			Enabled: false,
			Backend: "memory",
			TTLSec:  3600,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "truthbot.db",
		},
		Validation: ValidationConfig{
			RequiredSections: []string{"verdict", "confidence", "why", "top_sources"},
			MinSources:       1,
			MaxSources:       6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults,
// applies environment overrides and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	cfg := Default()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from environment variables. Unset variables
// leave the current value in place.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Addr, "TRUTHBOT_ADDR")
	setString(&c.Client.BaseURL, "TRUTHBOT_API_BASE_URL")
	setString(&c.Search.APIKey, "TAVILY_API_KEY")
	setString(&c.Agent.Provider, "AGENT_PROVIDER")
	setString(&c.Agent.Model, "AGENT_MODEL")
	setString(&c.Agent.Endpoint, "AGENT_ENDPOINT")
	setString(&c.Agent.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.Agent.GeminiKey, "GEMINI_API_KEY")
	setString(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setString(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	setString(&c.History.Path, "TRUTHBOT_HISTORY_PATH")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		if db, err := strconv.Atoi(v); err == nil {
			c.Cache.Redis.DB = db
		}
	}

	if c.Cache.Redis.Addr != "" && os.Getenv("REDIS_ADDR") != "" {
		c.Cache.Enabled = true
		c.Cache.Backend = "redis"
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ErrMissingServerAddr
	}

	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RequestsPerMinute < 1 || c.Server.RateLimit.Burst < 1) {
		return ErrInvalidRateLimit
	}

	if c.Server.ShutdownTimeoutSec < 1 {
		return ErrInvalidShutdownTimeout
	}

	if c.Client.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if c.Client.TimeoutSec < 0 {
		return ErrInvalidClientTimeout
	}

	if c.Search.Endpoint == "" {
		return ErrMissingSearchEndpoint
	}

	if c.Search.MaxResults < 1 || c.Search.MaxResults > 20 {
		return ErrInvalidMaxResults
	}

	if c.Search.ContentLimit < 1 {
		return ErrInvalidContentLimit
	}

	if err := c.Search.Retry.Validate(); err != nil {
		return err
	}

	if c.Agent.Provider == "" {
		return ErrMissingAgentProvider
	}

	if c.Agent.TimeoutSec < 1 {
		return ErrInvalidAgentTimeout
	}

	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case "memory":
		case "redis":
			if c.Cache.Redis.Addr == "" {
				return ErrMissingRedisAddr
			}
		default:
			return ErrInvalidCacheBackend
		}

		if c.Cache.TTLSec < 1 {
			return ErrInvalidCacheTTL
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		return ErrMissingHistoryPath
	}

	if c.Validation.MinSources < 0 {
		return ErrInvalidMinSources
	}

	if c.Validation.MaxSources < 1 {
		return ErrInvalidMaxSources
	}

	if c.Validation.MinSources > c.Validation.MaxSources {
		return ErrMinExceedsMax
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// Validate checks the retry policy bounds.
func (rp *RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if rp.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if rp.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if rp.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// ClientTimeout returns the fact-check client timeout; zero means no timeout.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.Client.TimeoutSec) * time.Second
}

// Timeout returns the per-request model timeout.
func (a AgentConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// CacheTTL returns how long cached verdicts are kept.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget, 10s when unset.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	if s.ShutdownTimeoutSec <= 0 {
		return 10 * time.Second
	}

	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Addr: %s, BaseURL: %s, Agent: %s/%s, Cache: %t(%s), History: %t}",
		c.Server.Addr,
		c.Client.BaseURL,
		c.Agent.Provider,
		c.Agent.Model,
		c.Cache.Enabled,
		c.Cache.Backend,
		c.History.Enabled,
	)
}
