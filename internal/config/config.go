// Package config provides configuration loading for ManifestAi.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Provider identifiers accepted as a model source.
const (
	ProviderGemini   = "gemini"
	ProviderDeepSeek = "deepseek"
	ProviderGroq     = "groq"
)

// Enrichment strategies.
const (
	StrategySequential = "sequential"
	StrategyBatch      = "batch"
)

// Config holds all configuration for ManifestAi.
type Config struct {
	LLM           LLMConfig           `yaml:"llm"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Enrichment    EnrichmentConfig    `yaml:"enrichment"`
	Cache         CacheConfig         `yaml:"cache"`
	Database      DatabaseConfig      `yaml:"database"`
	Upload        UploadConfig        `yaml:"upload"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// LLMConfig holds AI provider settings and the fallback pairing.
type LLMConfig struct {
	DefaultSource string            `yaml:"default_source" validate:"oneof=gemini deepseek groq"`
	Fallbacks     map[string]string `yaml:"fallbacks"`
	Gemini        ProviderConfig    `yaml:"gemini"`
	DeepSeek      ProviderConfig    `yaml:"deepseek"`
	Groq          ProviderConfig    `yaml:"groq"`
}

// ProviderConfig holds settings for a single AI provider.
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Model       string        `yaml:"model" validate:"required"`
	FastModel   string        `yaml:"fast_model"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gt=0"`
}

// NormalizeConfig holds defaults for the normalize pipeline.
type NormalizeConfig struct {
	Columns        []string `yaml:"columns"`
	BLStartNumber  int      `yaml:"bl_start_number" validate:"gte=0"`
	BLMiddleFormat string   `yaml:"bl_middle_format" validate:"required"`
	BLYear         int      `yaml:"bl_year" validate:"omitempty,gte=1900,lte=9999"` // 0 means current year
	Enrich         bool     `yaml:"enrich"`
}

// EnrichmentConfig holds HS-code enrichment settings.
type EnrichmentConfig struct {
	Strategy string        `yaml:"strategy" validate:"oneof=sequential batch"`
	Delay    time.Duration `yaml:"delay" validate:"gte=0"`
}

// CacheConfig holds HS classification cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver" validate:"oneof=none memory redis"`
	TTL        time.Duration `yaml:"ttl" validate:"gte=0"`
	MaxEntries int           `yaml:"max_entries" validate:"gte=0"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	PoolSize int    `yaml:"pool_size" validate:"gte=0"`
	Prefix   string `yaml:"prefix"`
}

// DatabaseConfig holds run ledger connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver" validate:"oneof=none sqlite postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns" validate:"gte=0"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns" validate:"gte=0"`
}

// UploadConfig holds staging settings for uploaded spreadsheets.
type UploadConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format" validate:"oneof=json console"`
	MetricsFile string `yaml:"metrics_file"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			DefaultSource: ProviderGemini,
			Fallbacks: map[string]string{
				ProviderGemini:   ProviderDeepSeek,
				ProviderDeepSeek: ProviderGemini,
				ProviderGroq:     ProviderGemini,
			},
			Gemini: ProviderConfig{
				Model:       "gemini-2.5-flash",
				Timeout:     60 * time.Second,
				Temperature: 0.3,
				MaxTokens:   8000,
			},
			DeepSeek: ProviderConfig{
				BaseURL:     "https://api.deepseek.com/v1",
				Model:       "deepseek-chat",
				Timeout:     60 * time.Second,
				Temperature: 0.3,
				MaxTokens:   8000,
			},
			Groq: ProviderConfig{
				BaseURL:     "https://api.groq.com/openai/v1",
				Model:       "llama-3.3-70b-versatile",
				FastModel:   "llama-3.1-8b-instant",
				Timeout:     30 * time.Second,
				Temperature: 0.3,
				MaxTokens:   8000,
			},
		},
		Normalize: NormalizeConfig{
			BLStartNumber:  1,
			BLMiddleFormat: "TWN/BLW",
			Enrich:         true,
		},
		Enrichment: EnrichmentConfig{
			Strategy: StrategySequential,
			Delay:    2 * time.Second,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        24 * time.Hour,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
				Prefix:   "manifest:",
			},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "manifest-ai.db",
				MaxOpenConns: 1,
			},
			Postgres: PostgresConfig{
				MaxOpenConns: 10,
			},
		},
		Upload: UploadConfig{
			Dir: os.TempDir(),
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	for from, to := range c.LLM.Fallbacks {
		if !IsProvider(from) {
			return fmt.Errorf("invalid fallback source: %s", from)
		}
		if !IsProvider(to) {
			return fmt.Errorf("invalid fallback target for %s: %s", from, to)
		}
		if from == to {
			return fmt.Errorf("provider %s cannot fall back to itself", from)
		}
	}

	if c.Database.Driver == "postgres" && c.Database.Postgres.DSN == "" {
		return fmt.Errorf("postgres driver requires database.postgres.dsn")
	}

	if c.Cache.Driver == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("redis cache requires cache.redis.addr")
	}

	return nil
}

// Provider returns the settings for the named provider.
func (c *LLMConfig) Provider(name string) (ProviderConfig, bool) {
	switch name {
	case ProviderGemini:
		return c.Gemini, true
	case ProviderDeepSeek:
		return c.DeepSeek, true
	case ProviderGroq:
		return c.Groq, true
	default:
		return ProviderConfig{}, false
	}
}

// IsProvider reports whether name is a supported model source.
func IsProvider(name string) bool {
	switch name {
	case ProviderGemini, ProviderDeepSeek, ProviderGroq:
		return true
	default:
		return false
	}
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.Gemini.APIKey = v
	}

	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.LLM.DeepSeek.APIKey = v
	}

	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.LLM.Groq.APIKey = v
	}

	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.LLM.Gemini.Model = v
	}

	if v := os.Getenv("DEEPSEEK_MODEL"); v != "" {
		cfg.LLM.DeepSeek.Model = v
	}

	if v := os.Getenv("GROQ_MODEL"); v != "" {
		cfg.LLM.Groq.Model = v
	}

	if v := os.Getenv("MODEL_SOURCE"); v != "" {
		cfg.LLM.DefaultSource = strings.ToLower(v)
	}

	if v := os.Getenv("HS_ENRICHMENT_STRATEGY"); v != "" {
		cfg.Enrichment.Strategy = strings.ToLower(v)
	}

	if v := os.Getenv("HS_ENRICHMENT_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Enrichment.Delay = d
		}
	}

	if v := os.Getenv("BL_START_NUMBER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Normalize.BLStartNumber = n
		}
	}

	if v := os.Getenv("BL_MIDDLE_FORMAT"); v != "" {
		cfg.Normalize.BLMiddleFormat = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		} else if v == "none" {
			cfg.Database.Driver = "none"
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("MANIFEST_UPLOAD_DIR"); v != "" {
		cfg.Upload.Dir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("METRICS_FILE"); v != "" {
		cfg.Observability.MetricsFile = v
	}
}
