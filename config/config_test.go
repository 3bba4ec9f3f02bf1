package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Budget.BaseLimit)
	assert.Equal(t, 512, cfg.Budget.Reserve)
	assert.Equal(t, "llama3.2", cfg.Inference.Model)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedder.Model)
	assert.Equal(t, "data/nexus_memory.db", cfg.Ledger.Path)
	assert.False(t, cfg.Cache.Enabled)
	assert.Empty(t, cfg.Metrics.Addr, "metrics listener disabled by default")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"budget:",
		"  base_limit: 4096",
		"inference:",
		"  model: qwen2.5",
		"log:",
		"  level: debug",
	}, "\n"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Budget.BaseLimit)
	assert.Equal(t, 512, cfg.Budget.Reserve, "untouched fields keep defaults")
	assert.Equal(t, "qwen2.5", cfg.Inference.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "inference:\n  model: from-file\n")
	t.Setenv("NEXUSCORE_INFERENCE_MODEL", "from-env")
	t.Setenv("NEXUSCORE_BUDGET_BASE_LIMIT", "1024")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Inference.Model)
	assert.Equal(t, 1024, cfg.Budget.BaseLimit)
}

func TestLoad_BadEnvInteger(t *testing.T) {
	t.Setenv("NEXUSCORE_BUDGET_BASE_LIMIT", "plenty")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(*Config) {}, true},
		{"zero base limit", func(c *Config) { c.Budget.BaseLimit = 0 }, false},
		{"negative reserve", func(c *Config) { c.Budget.Reserve = -1 }, false},
		{"missing model", func(c *Config) { c.Inference.Model = "" }, false},
		{"missing ledger path", func(c *Config) { c.Ledger.Path = "" }, false},
		{"cache enabled without addr", func(c *Config) { c.Cache.Enabled = true }, false},
		{"cache enabled with addr", func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.Addr = "127.0.0.1:6379"
		}, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
