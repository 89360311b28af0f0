// Package config loads runtime configuration from a YAML file, a .env file
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted for the model backend.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGoogle     = "google"
	ProviderMock       = "mock"
)

// Store backend names.
const (
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Default model served through OpenRouter's free tier.
const defaultModel = "google/gemini-2.0-flash-lite-preview-02-05:free"

// Config is the runtime configuration for the analysis service.
type Config struct {
	// Provider selects the chat backend: openrouter, openai, anthropic,
	// google or mock.
	Provider string `yaml:"provider"`

	// APIKey authenticates against the selected provider.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier passed to the provider.
	Model string `yaml:"model"`

	// Temperature is the sampling temperature for synthesis.
	Temperature float64 `yaml:"temperature"`

	// StoreBackend selects the checkpoint store: sqlite, mysql, redis or
	// memory.
	StoreBackend string `yaml:"store"`

	// SQLitePath is the checkpoint database location for the sqlite
	// backend.
	SQLitePath string `yaml:"sqlite_path"`

	// MySQLDSN is the connection string for the mysql backend
	// (parseTime=true is required).
	MySQLDSN string `yaml:"mysql_dsn"`

	// RedisURL is the connection URL for the redis backend.
	RedisURL string `yaml:"redis_url"`
}

// Defaults returns the configuration used when nothing is set: OpenRouter
// with the free Gemini model, checkpoints in a local SQLite file, and the
// analytical temperature the synthesis stage expects.
func Defaults() Config {
	return Config{
		Provider:     ProviderOpenRouter,
		Model:        defaultModel,
		Temperature:  0.3,
		StoreBackend: StoreSQLite,
		SQLitePath:   "./data/checkpoints.db",
	}
}

// Load builds the configuration: defaults, then the YAML file at yamlPath
// (skipped when empty or missing), then .env, then process environment
// variables. Validate is not called; callers decide when a key is required.
func Load(yamlPath string) (Config, error) {
	cfg := Defaults()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", yamlPath, err)
		}
	}

	// .env entries become visible as environment variables; existing env
	// vars win.
	_ = godotenv.Load()

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Provider, "STOCKINTEL_PROVIDER")
	setString(&cfg.Model, "DEFAULT_MODEL")
	setString(&cfg.StoreBackend, "STOCKINTEL_STORE")
	setString(&cfg.SQLitePath, "SQLITE_DB_PATH")
	setString(&cfg.MySQLDSN, "MYSQL_DSN")
	setString(&cfg.RedisURL, "REDIS_URL")

	if v := os.Getenv("TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}

	// Provider keys, most specific first.
	switch cfg.Provider {
	case ProviderAnthropic:
		setString(&cfg.APIKey, "ANTHROPIC_API_KEY")
	case ProviderGoogle:
		setString(&cfg.APIKey, "GOOGLE_API_KEY")
	case ProviderOpenAI:
		setString(&cfg.APIKey, "OPENAI_API_KEY")
	default:
		setString(&cfg.APIKey, "OPENROUTER_API_KEY")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the configuration is complete enough to run.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
		if c.APIKey == "" {
			return fmt.Errorf("%s provider requires an API key (set it in .env or the environment)", c.Provider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return errors.New("model cannot be empty")
	}

	switch c.StoreBackend {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite store requires a database path")
		}
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return errors.New("mysql store requires MYSQL_DSN")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("redis store requires REDIS_URL")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	return nil
}
