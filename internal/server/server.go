// Package server hosts the LegacyLift HTTP daemon.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
	"github.com/yash23jamak/LegacyLift-B/internal/collector"
	"github.com/yash23jamak/LegacyLift-B/internal/config"
	"github.com/yash23jamak/LegacyLift-B/internal/llm/configbuilder"
	"github.com/yash23jamak/LegacyLift-B/internal/logging"
	"github.com/yash23jamak/LegacyLift-B/internal/observability"
	"github.com/yash23jamak/LegacyLift-B/internal/pipeline"
	"github.com/yash23jamak/LegacyLift-B/internal/rpc/jobs"
	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

// Server hosts the REST routes, the job stream and the Connect procedures.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *service.Service
	runner  jobs.Runner
	metrics *observability.Metrics
	now     func() time.Time
}

// NewServer wires providers, the pipeline and the service from cfg.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	registry, err := configbuilder.BuildRegistryFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	metrics := observability.NewMetrics()
	var gateway pipeline.Gateway = &pipeline.ModelGateway{
		Strategy: pipeline.NewStrategy(registry, cfg.Strategy),
		Timeout:  cfg.Pipeline.RequestTimeout,
		Metrics:  metrics,
		Logger:   logger,
	}
	gateway = pipeline.NewCachedGateway(gateway, cfg.Pipeline.CacheSize, cfg.Pipeline.CacheTTL, metrics)

	svc := &service.Service{
		Runner: &pipeline.Runner{
			Gateway: gateway,
			Batch: batch.Options{
				ChunkSize:        cfg.Pipeline.ChunkSize,
				MaxContentLength: cfg.Pipeline.MaxContentLength,
			},
			Concurrency: cfg.Pipeline.Concurrency,
			Logger:      logger,
			Metrics:     metrics,
		},
		Collector: collector.Options{
			AllowedExtensions: cfg.Pipeline.AllowedExtensions,
			RequireJSP:        cfg.Pipeline.RequireJSP,
			MaxDepth:          cfg.Pipeline.MaxDepth,
			MaxArchiveBytes:   cfg.Collector.MaxArchiveBytes,
			Logger:            logger,
		},
		Cloner: &collector.Cloner{
			Binary: cfg.Collector.GitBinary,
			Depth:  cfg.Collector.CloneDepth,
			Logger: logger,
		},
		Logger: logger,
	}
	return New(cfg, logger, svc, metrics), nil
}

// New builds a server around an existing service.
func New(cfg *config.Config, logger *zap.Logger, svc *service.Service, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logging.OrNop(logger),
		service: svc,
		runner:  &jobs.ServiceRunner{Service: svc},
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *Server) ndjsonOnly() bool {
	return strings.ToLower(strings.TrimSpace(s.cfg.Server.Transport)) == "ndjson"
}

// Handler returns the routed handler, wrapped for h2c unless the daemon runs
// in NDJSON-only mode.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.healthHandler)
	mux.HandleFunc("/metrics", s.metricsHandler)
	mux.Handle("/api/v1/analyze-project", s.limitBody(http.HandlerFunc(s.analyzeProjectHandler)))
	mux.Handle("/api/v1/migration-report", s.limitBody(s.archiveJobHandler("report")))
	mux.Handle("/api/v1/migration-project", s.limitBody(s.archiveJobHandler("migration")))
	mux.Handle(jobs.StreamPath, s.limitBody(jobs.NewHandler(s.runner, s.metrics)))

	if s.ndjsonOnly() {
		return mux
	}

	path, handler := jobs.NewConnectHandler(s.service, s.metrics)
	mux.Handle(path, s.limitBody(handler))
	path, handler = jobs.NewConnectStreamHandler(s.runner, s.metrics)
	mux.Handle(path, s.limitBody(handler))
	return h2c.NewHandler(mux, &http2.Server{})
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting legacylift daemon", zap.String("addr", s.cfg.Server.Addr), zap.String("transport", s.cfg.Server.Transport))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down legacylift daemon")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"message":   "Server is healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Server.MetricsEnabled {
		http.NotFound(w, r)
		return
	}

	promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	limit := s.cfg.Server.MaxUploadBytes
	if limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}
