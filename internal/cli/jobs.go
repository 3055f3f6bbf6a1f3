package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
	"github.com/yash23jamak/LegacyLift-B/internal/collector"
	"github.com/yash23jamak/LegacyLift-B/internal/rpc"
	"github.com/yash23jamak/LegacyLift-B/internal/rpc/jobs"
	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

// NewAnalyzeCmd analyzes a zip archive or a git repository.
func NewAnalyzeCmd(opts *Options) *cobra.Command {
	var zipPath, repoURL string
	var list bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a JSP project from a zip archive or git repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (zipPath == "") == (strings.TrimSpace(repoURL) == "") {
				return errors.New("exactly one of --zip or --repo is required")
			}
			if list && zipPath == "" {
				return errors.New("--list requires --zip")
			}

			req := rpc.RunRequest{Job: "analysis", RepoURL: repoURL}
			if zipPath != "" {
				data, err := os.ReadFile(zipPath)
				if err != nil {
					return err
				}
				req.Archive = data
			}
			if list {
				filter := false
				req.Filter = &filter
			}
			_, err := submit(cmd, opts, req)
			return err
		},
	}

	cmd.Flags().StringVar(&zipPath, "zip", "", "Path to a zip archive of the project")
	cmd.Flags().StringVar(&repoURL, "repo", "", "Git repository URL to clone and analyze")
	cmd.Flags().BoolVar(&list, "list", false, "Only list the archive's allowed files, without AI analysis")
	return cmd
}

// NewReportCmd builds a per-file migration report.
func NewReportCmd(opts *Options) *cobra.Command {
	var zipPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a JSP to React migration report for a zip archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readZip(zipPath)
			if err != nil {
				return err
			}
			_, err = submit(cmd, opts, rpc.RunRequest{Job: "report", Archive: data})
			return err
		},
	}

	cmd.Flags().StringVar(&zipPath, "zip", "", "Path to a zip archive of the project")
	return cmd
}

// NewMigrateCmd converts a project and optionally writes the converted files.
func NewMigrateCmd(opts *Options) *cobra.Command {
	var zipPath, outDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert a zip archive's pages to React components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readZip(zipPath)
			if err != nil {
				return err
			}
			resp, err := submit(cmd, opts, rpc.RunRequest{Job: "migration", Archive: data})
			if err != nil || outDir == "" {
				return err
			}

			files, err := convertedFiles(resp.Files)
			if err != nil {
				return err
			}
			guard, err := collector.NewPathGuard(outDir)
			if err != nil {
				return err
			}
			if err := guard.WriteFiles(files); err != nil {
				return fmt.Errorf("write converted files: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d files to %s\n", len(files), guard.BaseDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&zipPath, "zip", "", "Path to a zip archive of the project")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write converted files into")
	return cmd
}

func readZip(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("--zip is required")
	}
	return os.ReadFile(path)
}

// submit sends the job, prints progress to stderr and the response to stdout.
// Responses with an error status are printed and returned as an error.
func submit(cmd *cobra.Command, opts *Options, req rpc.RunRequest) (service.Response, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return service.Response{}, err
	}

	client := jobs.NewClient(cfg.Server.Addr, cfg.Server.Transport)
	status, resp, err := client.Run(cmd.Context(), req, func(ev rpc.JobEvent) {
		renderEvent(cmd, ev)
	})
	if err != nil {
		return resp, fmt.Errorf("daemon request: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return resp, err
	}
	if status >= 400 {
		return resp, fmt.Errorf("job failed with status %d: %s", status, resp.Error)
	}
	return resp, nil
}

func renderEvent(cmd *cobra.Command, ev rpc.JobEvent) {
	if ev.Type != rpc.EventBatch || ev.Batch == nil {
		return
	}
	b := ev.Batch
	out := cmd.ErrOrStderr()
	if b.Err != nil {
		fmt.Fprintf(out, "[batch %d/%d] gateway failure: %s\n", b.Batch+1, b.Batches, b.Err.Message)
		return
	}
	fmt.Fprintf(out, "[batch %d/%d] %d files, %d units, %d unparsed\n", b.Batch+1, b.Batches, len(b.Files), len(b.Units), b.Failures)
}

type convertedFile struct {
	FileName         string `json:"fileName"`
	ConvertedContent string `json:"convertedContent"`
}

// convertedFiles extracts writable files from migration units. Units that are
// not converted files, such as parse failures, are skipped.
func convertedFiles(units any) ([]batch.SourceFile, error) {
	data, err := json.Marshal(units)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unexpected migration result: %w", err)
	}

	var files []batch.SourceFile
	for _, u := range raw {
		var f convertedFile
		if json.Unmarshal(u, &f) != nil || strings.TrimSpace(f.FileName) == "" {
			continue
		}
		files = append(files, batch.SourceFile{Name: f.FileName, Content: f.ConvertedContent})
	}
	return files, nil
}
