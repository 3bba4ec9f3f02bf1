// Package config loads runtime configuration: defaults, then an
// optional YAML file, then NEXUSCORE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/nexuscore/budget"
	"github.com/BaSui01/nexuscore/inference"
	"github.com/BaSui01/nexuscore/semantic"
	"github.com/BaSui01/nexuscore/types"
)

// EnvPrefix is the prefix for every environment override.
const EnvPrefix = "NEXUSCORE"

// Config is the full runtime configuration.
type Config struct {
	Budget    budget.Config                 `yaml:"budget"`
	Inference inference.OllamaConfig        `yaml:"inference"`
	Embedder  semantic.OllamaEmbedderConfig `yaml:"embedder"`
	Cache     CacheConfig                   `yaml:"cache"`
	Ledger    LedgerConfig                  `yaml:"ledger"`
	Identity  IdentityConfig                `yaml:"identity"`
	Ingest    IngestConfig                  `yaml:"ingest"`
	Log       LogConfig                     `yaml:"log"`
	Metrics   MetricsConfig                 `yaml:"metrics"`
}

// CacheConfig controls the optional Redis embedding cache.
type CacheConfig struct {
	// Enabled switches the cache on; the engine runs without Redis
	// when false.
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// LedgerConfig locates the Tier-2 SQLite database.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// IdentityConfig locates the persona profile.
type IdentityConfig struct {
	ProfilePath string `yaml:"profile_path"`
}

// IngestConfig controls document ingestion.
type IngestConfig struct {
	DocsDir string `yaml:"docs_dir"`
	// DocsPerSecond throttles embedding calls during a sync; zero
	// disables the throttle.
	DocsPerSecond float64 `yaml:"docs_per_second"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:9109". Empty
	// disables the listener.
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Budget:    budget.Config{BaseLimit: 2048, Reserve: 512},
		Inference: inference.DefaultOllamaConfig(),
		Embedder:  semantic.DefaultOllamaEmbedderConfig(),
		Cache:     CacheConfig{TTL: 24 * time.Hour},
		Ledger:    LedgerConfig{Path: "data/nexus_memory.db"},
		Identity:  IdentityConfig{ProfilePath: "data/user_profile.yaml"},
		Ingest:    IngestConfig{DocsDir: "data/docs", DocsPerSecond: 0.5},
		Log:       LogConfig{Level: "info"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// if path is non-empty, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, types.NewError(types.ErrInvalidInput,
				fmt.Sprintf("read config %s", path)).WithCause(err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, types.NewError(types.ErrInvalidInput,
				fmt.Sprintf("parse config %s", path)).WithCause(err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides individual fields from NEXUSCORE_* variables.
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(EnvPrefix + "_" + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return types.NewError(types.ErrInvalidInput,
				fmt.Sprintf("env %s_%s: %q is not an integer", EnvPrefix, key, v))
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(EnvPrefix + "_" + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return types.NewError(types.ErrInvalidInput,
				fmt.Sprintf("env %s_%s: %q is not a boolean", EnvPrefix, key, v))
		}
		*dst = b
		return nil
	}

	setString("INFERENCE_BASE_URL", &c.Inference.BaseURL)
	setString("INFERENCE_MODEL", &c.Inference.Model)
	setString("INFERENCE_KEEP_ALIVE", &c.Inference.KeepAlive)
	setString("EMBEDDER_BASE_URL", &c.Embedder.BaseURL)
	setString("EMBEDDER_MODEL", &c.Embedder.Model)
	setString("CACHE_ADDR", &c.Cache.Addr)
	setString("CACHE_PASSWORD", &c.Cache.Password)
	setString("LEDGER_PATH", &c.Ledger.Path)
	setString("IDENTITY_PROFILE_PATH", &c.Identity.ProfilePath)
	setString("INGEST_DOCS_DIR", &c.Ingest.DocsDir)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("METRICS_ADDR", &c.Metrics.Addr)

	if err := setInt("BUDGET_BASE_LIMIT", &c.Budget.BaseLimit); err != nil {
		return err
	}
	if err := setInt("BUDGET_RESERVE", &c.Budget.Reserve); err != nil {
		return err
	}
	if err := setInt("CACHE_DB", &c.Cache.DB); err != nil {
		return err
	}
	return setBool("CACHE_ENABLED", &c.Cache.Enabled)
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Budget.BaseLimit <= 0 {
		return types.NewError(types.ErrInvalidInput, "budget.base_limit must be positive")
	}
	if c.Budget.Reserve < 0 {
		return types.NewError(types.ErrInvalidInput, "budget.reserve must not be negative")
	}
	if c.Inference.Model == "" {
		return types.NewError(types.ErrInvalidInput, "inference.model is required")
	}
	if c.Ledger.Path == "" {
		return types.NewError(types.ErrInvalidInput, "ledger.path is required")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return types.NewError(types.ErrInvalidInput, "cache.addr is required when the cache is enabled")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return types.NewError(types.ErrInvalidInput,
			fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	return nil
}

// SemanticCacheConfig converts the cache section into the semantic
// package's config type.
func (c Config) SemanticCacheConfig() semantic.CacheConfig {
	return semantic.CacheConfig{
		Addr:     c.Cache.Addr,
		Password: c.Cache.Password,
		DB:       c.Cache.DB,
		TTL:      c.Cache.TTL,
	}
}
