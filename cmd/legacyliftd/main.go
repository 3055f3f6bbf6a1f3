// Command legacyliftd serves the analysis, migration report and migration
// jobs over plain HTTP uploads, Connect and NDJSON.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/config"
	"github.com/yash23jamak/LegacyLift-B/internal/logging"
	"github.com/yash23jamak/LegacyLift-B/internal/server"
	"github.com/yash23jamak/LegacyLift-B/internal/version"
)

// daemonFlags override the matching config keys when set.
type daemonFlags struct {
	configPath string
	addr       string
	transport  string
	logLevel   string
	noMetrics  bool
}

func (f daemonFlags) apply(cfg *config.Config) error {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.transport != "" {
		cfg.Server.Transport = f.transport
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.noMetrics {
		cfg.Server.MetricsEnabled = false
	}
	return cfg.Validate()
}

func newRootCmd() *cobra.Command {
	var flags daemonFlags

	cmd := &cobra.Command{
		Use:           "legacyliftd",
		Short:         "Serve JSP analysis and React migration jobs backed by an AI gateway",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}

			logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			logger.Info("config loaded",
				zap.String("version", version.Version),
				zap.Int("chunk_size", cfg.Pipeline.ChunkSize),
				zap.Int("concurrency", cfg.Pipeline.Concurrency),
				zap.Int64("max_upload_bytes", cfg.Server.MaxUploadBytes),
				zap.Bool("metrics", cfg.Server.MetricsEnabled),
			)

			srv, err := server.NewServer(cfg, logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "config file with providers, models and pipeline limits (default: configs/config.yaml)")
	f.StringVar(&flags.addr, "addr", "", "listen address (default: server.addr)")
	f.StringVar(&flags.transport, "transport", "", "job transport, connect or ndjson (default: server.transport)")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (default: logging.level)")
	f.BoolVar(&flags.noMetrics, "no-metrics", false, "do not serve /metrics")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "legacyliftd:", err)
		os.Exit(1)
	}
}
