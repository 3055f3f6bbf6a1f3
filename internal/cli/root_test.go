package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yash23jamak/LegacyLift-B/internal/version"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdout, version.Full())
	require.Contains(t, stdout, "user agent: legacylift/")
}

func TestDoctorWithExampleConfig(t *testing.T) {
	configPath := exampleConfig(t)
	require.FileExists(t, configPath)

	stdout, _, err := execute(t, "doctor", "--config", configPath)
	require.NoError(t, err)
	require.Contains(t, stdout, "Config OK")
	require.Contains(t, stdout, "* model deepseek -> openrouter/deepseek/deepseek-chat")
	require.Contains(t, stdout, "  model local -> local/llama3")
	require.Contains(t, stdout, "role migration: deepseek")
	require.Contains(t, stdout, "git:")
}

func TestDoctorRejectsUnbuildableRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  local:
    type: ollama
models:
  main:
    provider: local
    default: true
`), 0o644))

	_, _, err := execute(t, "doctor", "--config", path)
	require.ErrorContains(t, err, "build registry")
}

func TestAddrFlagOverridesConfig(t *testing.T) {
	cfg, err := loadConfig(&Options{ConfigPath: exampleConfig(t), Addr: "127.0.0.1:9999", Transport: "ndjson"})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, "ndjson", cfg.Server.Transport)
}

func TestRejectsUnknownTransport(t *testing.T) {
	_, _, err := execute(t, "doctor", "--config", exampleConfig(t), "--transport", "grpc")
	require.ErrorContains(t, err, "--transport")
}
