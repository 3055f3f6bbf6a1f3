// Package service runs pipeline jobs for the transports and shapes their
// caller-facing responses.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
	"github.com/yash23jamak/LegacyLift-B/internal/collector"
	"github.com/yash23jamak/LegacyLift-B/internal/logging"
	"github.com/yash23jamak/LegacyLift-B/internal/pipeline"
	"github.com/yash23jamak/LegacyLift-B/internal/prompt"
)

// ErrNoInput is returned when a request carries neither an archive nor a repository URL.
var ErrNoInput = errors.New("please provide a ZIP file or repository URL")

// Request is a transport-neutral job request.
type Request struct {
	// Job is analysis, report or migration (aliases accepted, see prompt.ParseKind).
	Job     string
	Archive []byte
	RepoURL string
	// ListOnly returns the archive's files without calling the AI service.
	ListOnly bool
}

// Service wires collection, the pipeline runner and response shaping.
type Service struct {
	Runner    *pipeline.Runner
	Collector collector.Options
	Cloner    *collector.Cloner
	Logger    *zap.Logger
}

// AnalyzeArchive analyzes the allowed files of a zip upload.
func (s *Service) AnalyzeArchive(ctx context.Context, data []byte, obs pipeline.Observer) (pipeline.Outcome, error) {
	files, err := collector.FromArchive(data, s.Collector)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	return s.run(ctx, prompt.Analysis, files, obs)
}

// ListArchive returns the allowed files with the archive's root folder
// stripped. No AI call is made.
func (s *Service) ListArchive(data []byte) ([]batch.SourceFile, error) {
	opts := s.Collector
	opts.StripRoot = true
	return collector.FromArchive(data, opts)
}

// AnalyzeRepo clones a repository and analyzes its allowed files.
func (s *Service) AnalyzeRepo(ctx context.Context, repoURL string, obs pipeline.Observer) (pipeline.Outcome, error) {
	cleanURL, err := collector.SanitizeRepoURL(repoURL)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	if s.Cloner == nil {
		return pipeline.Outcome{}, errors.New("repository analysis is not configured")
	}
	files, err := collector.FromRepo(ctx, s.Cloner, cleanURL, s.Collector)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	return s.run(ctx, prompt.Analysis, files, obs)
}

// MigrationReport builds a per-file migration report for a zip upload.
func (s *Service) MigrationReport(ctx context.Context, data []byte, obs pipeline.Observer) (pipeline.Outcome, error) {
	files, err := collector.FromArchive(data, s.migrationOptions())
	if err != nil {
		return pipeline.Outcome{}, err
	}
	return s.run(ctx, prompt.MigrationReport, files, obs)
}

// Migrate converts the files of a zip upload.
func (s *Service) Migrate(ctx context.Context, data []byte, obs pipeline.Observer) (pipeline.Outcome, error) {
	files, err := collector.FromArchive(data, s.migrationOptions())
	if err != nil {
		return pipeline.Outcome{}, err
	}
	return s.run(ctx, prompt.Migration, files, obs)
}

// Handle dispatches a request and shapes the result. obs may be nil.
func (s *Service) Handle(ctx context.Context, req Request, obs pipeline.Observer) (int, Response) {
	kind := prompt.Analysis
	if strings.TrimSpace(req.Job) != "" {
		k, err := prompt.ParseKind(req.Job)
		if err != nil {
			return RespondError(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		}
		kind = k
	}

	var (
		out    pipeline.Outcome
		err    error
		source = SourceArchive
	)
	switch {
	case len(req.Archive) > 0 && req.ListOnly:
		files, err := s.ListArchive(req.Archive)
		if err != nil {
			return RespondError(err)
		}
		return RespondListing(files)
	case len(req.Archive) > 0 && kind == prompt.MigrationReport:
		out, err = s.MigrationReport(ctx, req.Archive, obs)
	case len(req.Archive) > 0 && kind == prompt.Migration:
		out, err = s.Migrate(ctx, req.Archive, obs)
	case len(req.Archive) > 0:
		out, err = s.AnalyzeArchive(ctx, req.Archive, obs)
	case strings.TrimSpace(req.RepoURL) != "" && kind == prompt.Analysis:
		source = SourceRepo
		out, err = s.AnalyzeRepo(ctx, req.RepoURL, obs)
	case strings.TrimSpace(req.RepoURL) != "":
		return RespondError(fmt.Errorf("%w: %s jobs need a ZIP upload", ErrInvalidRequest, kind))
	default:
		return RespondError(fmt.Errorf("%w: %v", ErrInvalidRequest, ErrNoInput))
	}
	if err != nil {
		logging.OrNop(s.Logger).Warn("job failed", zap.String("job", string(kind)), zap.Error(err))
		return RespondError(err)
	}
	return Respond(kind, source, out)
}

func (s *Service) migrationOptions() collector.Options {
	opts := s.Collector
	opts.RequireJSP = false
	return opts
}

func (s *Service) run(ctx context.Context, kind prompt.Kind, files []batch.SourceFile, obs pipeline.Observer) (pipeline.Outcome, error) {
	runner := *s.Runner
	runner.Observer = obs
	return runner.Run(ctx, pipeline.Job{Kind: kind, Files: files})
}
