// Package cli is the legacylift command line: it submits analysis and
// migration jobs to a running legacyliftd and renders their progress.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yash23jamak/LegacyLift-B/internal/config"
	"github.com/yash23jamak/LegacyLift-B/internal/version"
)

// Options are the persistent flags shared by every subcommand. Addr and
// Transport override the server section of the config when set.
type Options struct {
	ConfigPath string
	Addr       string
	Transport  string
}

func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "legacylift",
		Short:         "Analyze and migrate legacy JSP projects through a legacyliftd daemon",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(opts.Transport) {
			case "", "connect", "ndjson":
				return nil
			}
			return fmt.Errorf("--transport must be connect or ndjson, got %q", opts.Transport)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default: configs/config.yaml)")
	flags.StringVar(&opts.Addr, "addr", "", "daemon address (default: server.addr)")
	flags.StringVar(&opts.Transport, "transport", "", "connect or ndjson (default: server.transport)")

	cmd.AddGroup(
		&cobra.Group{ID: "jobs", Title: "Jobs:"},
		&cobra.Group{ID: "tools", Title: "Diagnostics:"},
	)
	for _, sub := range []*cobra.Command{NewAnalyzeCmd(opts), NewReportCmd(opts), NewMigrateCmd(opts)} {
		sub.GroupID = "jobs"
		cmd.AddCommand(sub)
	}
	for _, sub := range []*cobra.Command{NewDoctorCmd(opts), NewVersionCmd()} {
		sub.GroupID = "tools"
		cmd.AddCommand(sub)
	}
	return cmd
}

// Execute runs the CLI. An interrupt cancels the job in flight, which the
// daemon sees as a closed request.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "legacylift:", err)
		os.Exit(1)
	}
}

func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.Transport != "" {
		cfg.Server.Transport = strings.ToLower(opts.Transport)
	}
	return cfg, nil
}
