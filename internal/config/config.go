package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "LEGACYLIFT"

// DefaultAllowedExtensions lists the source file types collected for analysis.
var DefaultAllowedExtensions = []string{
	".jsp", ".jspx", ".jspf", ".html", ".htm", ".css", ".js", ".xml", ".properties",
}

// Config describes the top-level application configuration loaded from YAML and ENV.
type Config struct {
	Version   string                    `mapstructure:"version"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Models    map[string]ModelConfig    `mapstructure:"models"`
	Strategy  StrategyConfig            `mapstructure:"strategy"`
	Pipeline  PipelineConfig            `mapstructure:"pipeline"`
	Collector CollectorConfig           `mapstructure:"collector"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Server    ServerConfig              `mapstructure:"server"`
}

// ProviderConfig represents LLM provider configuration such as OpenAI, Ollama, or custom gateways.
type ProviderConfig struct {
	Type    string        `mapstructure:"type"`     // openai, openrouter, ollama, vllm, lmstudio, custom
	Model   string        `mapstructure:"model"`    // default model for the provider
	BaseURL string        `mapstructure:"base_url"` // API base URL or full chat completions URL
	APIKey  string        `mapstructure:"api_key"`  // optional API key
	Timeout time.Duration `mapstructure:"timeout"`  // HTTP client timeout
}

// ModelConfig binds a logical model name to a provider entry and model parameters.
type ModelConfig struct {
	Provider    string   `mapstructure:"provider"`
	Model       string   `mapstructure:"model"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
	Default     bool     `mapstructure:"default"`
}

// PipelineConfig tunes batching and dispatch.
type PipelineConfig struct {
	ChunkSize         int           `mapstructure:"chunk_size"`
	MaxContentLength  int           `mapstructure:"max_content_length"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	Concurrency       int           `mapstructure:"concurrency"`
	MaxDepth          int           `mapstructure:"max_depth"`
	AllowedExtensions []string      `mapstructure:"allowed_extensions"`
	RequireJSP        bool          `mapstructure:"require_jsp"`
	CacheSize         int           `mapstructure:"cache_size"` // 0 disables the reply cache
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

// CollectorConfig controls archive and repository intake.
type CollectorConfig struct {
	GitBinary       string `mapstructure:"git_binary"`
	CloneDepth      int    `mapstructure:"clone_depth"`
	MaxArchiveBytes int64  `mapstructure:"max_archive_bytes"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// ServerConfig describes daemon settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	Transport      string `mapstructure:"transport"` // connect or ndjson
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// Load reads path, or config.yaml (then config.example.yaml) from the
// working directory and configs/ when path is empty. A .env file is loaded
// first when present, and LEGACYLIFT_* variables override file values with
// dots replaced by underscores.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(v, path); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	bindProviderEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("configs")
	var notFound viper.ConfigFileNotFoundError
	for _, name := range []string{"config", "config.example"} {
		v.SetConfigName(name)
		err := v.ReadInConfig()
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return notFound
}

// bindProviderEnv makes LEGACYLIFT_PROVIDERS_<NAME>_API_KEY and _BASE_URL
// reach providers declared in the file. AutomaticEnv does not descend into
// map entries during Unmarshal.
func bindProviderEnv(v *viper.Viper) {
	for name := range v.GetStringMap("providers") {
		_ = v.BindEnv("providers." + name + ".api_key")
		_ = v.BindEnv("providers." + name + ".base_url")
	}
}

func setDefaults(v *viper.Viper) {
	for key, value := range map[string]any{
		"logging.level":  "info",
		"logging.format": "console",

		"pipeline.chunk_size":         5,
		"pipeline.max_content_length": 10000,
		"pipeline.request_timeout":    60 * time.Second,
		"pipeline.concurrency":        1,
		"pipeline.max_depth":          10,
		"pipeline.allowed_extensions": DefaultAllowedExtensions,
		"pipeline.require_jsp":        true,
		"pipeline.cache_size":         0,
		"pipeline.cache_ttl":          10 * time.Minute,

		"collector.git_binary":        "git",
		"collector.clone_depth":       1,
		"collector.max_archive_bytes": 50 << 20,

		"strategy.default_model":   "",
		"strategy.analysis_model":  "",
		"strategy.report_model":    "",
		"strategy.migration_model": "",
		"strategy.fallbacks":       []string{},

		"server.addr":             ":8080",
		"server.metrics_enabled":  true,
		"server.transport":        "connect",
		"server.max_upload_bytes": 50 << 20,
	} {
		v.SetDefault(key, value)
	}
}
