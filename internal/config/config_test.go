package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	configYAML := `
version: "0.1.0"
providers:
  openrouter:
    type: openrouter
    base_url: https://openrouter.ai/api/v1/chat/completions
    api_key: dummy
    timeout: 30s
models:
  main:
    provider: openrouter
    model: deepseek/deepseek-chat
    temperature: 0.2
    max_tokens: 2048
    default: true
pipeline:
  chunk_size: 3
  max_content_length: 5000
`

	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "openrouter", cfg.Models["main"].Provider)
	require.NotNil(t, cfg.Models["main"].Temperature)
	require.InDelta(t, 0.2, *cfg.Models["main"].Temperature, 1e-9)
	require.Equal(t, 3, cfg.Pipeline.ChunkSize)
	require.Equal(t, 5000, cfg.Pipeline.MaxContentLength)
	require.Equal(t, 30*time.Second, cfg.Providers["openrouter"].Timeout)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	configYAML := `
providers:
  local:
    type: ollama
models:
  main:
    provider: local
    model: llama3
    default: true
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Pipeline.ChunkSize)
	require.Equal(t, 10000, cfg.Pipeline.MaxContentLength)
	require.Equal(t, 60*time.Second, cfg.Pipeline.RequestTimeout)
	require.Equal(t, 1, cfg.Pipeline.Concurrency)
	require.Equal(t, 10, cfg.Pipeline.MaxDepth)
	require.True(t, cfg.Pipeline.RequireJSP)
	require.Equal(t, DefaultAllowedExtensions, cfg.Pipeline.AllowedExtensions)
	require.Equal(t, "git", cfg.Collector.GitBinary)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "connect", cfg.Server.Transport)
	require.Nil(t, cfg.Models["main"].Temperature)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	configYAML := `
providers:
  openrouter:
    type: openrouter
    base_url: https://openrouter.ai
models:
  coder:
    provider: openrouter
    model: qwen2.5
    default: true
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))

	t.Setenv("LEGACYLIFT_PIPELINE_CHUNK_SIZE", "12")
	t.Setenv("LEGACYLIFT_PROVIDERS_OPENROUTER_API_KEY", "from-env")
	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Pipeline.ChunkSize)
	require.Equal(t, "from-env", cfg.Providers["openrouter"].APIKey)
}

func validConfig() Config {
	return Config{
		Providers: map[string]ProviderConfig{
			"openai": {Type: "openai"},
		},
		Models: map[string]ModelConfig{
			"main": {Provider: "openai", Model: "gpt-4o", Default: true},
		},
		Pipeline: PipelineConfig{
			ChunkSize:        5,
			MaxContentLength: 10000,
			RequestTimeout:   time.Minute,
			Concurrency:      1,
			MaxDepth:         10,
		},
	}
}

func TestValidateFailsOnUnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Models["broken"] = ModelConfig{Provider: "missing"}

	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPipelineValues(t *testing.T) {
	require.NoError(t, func() error { c := validConfig(); return c.Validate() }())

	for name, mutate := range map[string]func(*Config){
		"chunk":       func(c *Config) { c.Pipeline.ChunkSize = 0 },
		"length":      func(c *Config) { c.Pipeline.MaxContentLength = -1 },
		"timeout":     func(c *Config) { c.Pipeline.RequestTimeout = 0 },
		"concurrency": func(c *Config) { c.Pipeline.Concurrency = 0 },
		"depth":       func(c *Config) { c.Pipeline.MaxDepth = 0 },
		"transport":   func(c *Config) { c.Server.Transport = "grpc" },
		"strategy":    func(c *Config) { c.Strategy.AnalysisModel = "nope" },
		"temperature": func(c *Config) {
			v := 3.0
			c.Models["main"] = ModelConfig{Provider: "openai", Default: true, Temperature: &v}
		},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestStrategyRoleModels(t *testing.T) {
	s := StrategyConfig{AnalysisModel: "fast", MigrationModel: "big"}
	require.Equal(t, map[string]string{"analysis": "fast", "migration": "big"}, s.RoleModels())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.ChunkSize = 0
	cfg.Server.Transport = "grpc"
	cfg.Models["ghost"] = ModelConfig{Provider: "nowhere"}

	err := cfg.Validate()
	require.ErrorContains(t, err, "pipeline.chunk_size")
	require.ErrorContains(t, err, "server.transport")
	require.ErrorContains(t, err, `models.ghost.provider "nowhere"`)
}
