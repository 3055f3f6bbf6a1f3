package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yash23jamak/LegacyLift-B/internal/config"
)

func loadExample(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := loadExample(t)
	flags := daemonFlags{addr: "127.0.0.1:9090", transport: "ndjson", logLevel: "debug", noMetrics: true}

	require.NoError(t, flags.apply(cfg))
	require.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	require.Equal(t, "ndjson", cfg.Server.Transport)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.False(t, cfg.Server.MetricsEnabled)
}

func TestUnsetFlagsKeepConfig(t *testing.T) {
	cfg := loadExample(t)
	want := cfg.Server

	require.NoError(t, daemonFlags{}.apply(cfg))
	require.Equal(t, want, cfg.Server)
}

func TestBadTransportFlagIsRejected(t *testing.T) {
	cfg := loadExample(t)
	require.ErrorContains(t, daemonFlags{transport: "grpc"}.apply(cfg), "server.transport")
}
