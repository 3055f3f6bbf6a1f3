package cli

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/yash23jamak/LegacyLift-B/internal/config"
	"github.com/yash23jamak/LegacyLift-B/internal/llm"
	"github.com/yash23jamak/LegacyLift-B/internal/llm/configbuilder"
	"github.com/yash23jamak/LegacyLift-B/internal/version"
)

// NewDoctorCmd checks that the config builds a usable model registry and that
// the git binary needed for repository jobs is on PATH. A missing git is
// reported but does not fail the command.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, model routes and git",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			registry, err := configbuilder.BuildRegistryFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("build registry: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Providers: %d, models: %d\n", len(cfg.Providers), len(cfg.Models))
			printRoutes(out, registry)
			printRoles(out, cfg.Strategy)
			fmt.Fprintf(out, "Pipeline: chunk size %d, content cap %d, concurrency %d, timeout %s\n",
				cfg.Pipeline.ChunkSize, cfg.Pipeline.MaxContentLength, cfg.Pipeline.Concurrency, cfg.Pipeline.RequestTimeout)
			fmt.Fprintf(out, "Daemon: %s over %s, metrics %v\n", cfg.Server.Addr, cfg.Server.Transport, cfg.Server.MetricsEnabled)

			if path, err := exec.LookPath(cfg.Collector.GitBinary); err != nil {
				fmt.Fprintf(out, "git: %q not found, repository jobs will fail\n", cfg.Collector.GitBinary)
			} else {
				fmt.Fprintf(out, "git: %s\n", path)
			}
			return nil
		},
	}
}

func printRoutes(out io.Writer, reg *llm.Registry) {
	for _, route := range reg.Routes() {
		marker := " "
		if route.Name == reg.DefaultModel() {
			marker = "*"
		}
		fmt.Fprintf(out, "%s model %s -> %s/%s (temperature %.2f)\n", marker, route.Name, route.Provider, route.Model, route.Temperature)
	}
}

func printRoles(out io.Writer, s config.StrategyConfig) {
	roles := s.RoleModels()
	for _, role := range []string{"analysis", "report", "migration"} {
		id := roles[role]
		if id == "" {
			id = "(default)"
		}
		fmt.Fprintf(out, "  role %s: %s\n", role, id)
	}
}

// NewVersionCmd prints build metadata and the User-Agent sent to AI backends.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			fmt.Fprintf(cmd.OutOrStdout(), "user agent: %s\n", version.UserAgent())
		},
	}
}
