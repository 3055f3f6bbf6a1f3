package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate reports every problem found, joined, rather than stopping at the
// first one.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(c.Providers) == 0 {
		fail("no providers configured")
	}
	for _, name := range sortedNames(c.Providers) {
		if c.Providers[name].Type == "" {
			fail("providers.%s.type is required", name)
		}
	}

	if len(c.Models) == 0 {
		fail("no models configured")
	}
	defaults := 0
	for _, name := range sortedNames(c.Models) {
		m := c.Models[name]
		if _, ok := c.Providers[m.Provider]; !ok {
			fail("models.%s.provider %q is not a configured provider", name, m.Provider)
		}
		if t := m.Temperature; t != nil && (*t < 0 || *t > 2) {
			fail("models.%s.temperature %.2f is outside [0,2]", name, *t)
		}
		if m.MaxTokens < 0 {
			fail("models.%s.max_tokens must be >= 0", name)
		}
		if m.Default {
			defaults++
		}
	}
	if len(c.Models) > 0 && defaults == 0 {
		fail("no model is marked default")
	}

	p := c.Pipeline
	for _, check := range []struct {
		ok  bool
		key string
	}{
		{p.ChunkSize > 0, "pipeline.chunk_size must be > 0"},
		{p.MaxContentLength > 0, "pipeline.max_content_length must be > 0"},
		{p.RequestTimeout > 0, "pipeline.request_timeout must be > 0"},
		{p.Concurrency >= 1, "pipeline.concurrency must be >= 1"},
		{p.MaxDepth > 0, "pipeline.max_depth must be > 0"},
		{p.CacheSize >= 0, "pipeline.cache_size must be >= 0"},
		{c.Collector.CloneDepth >= 0, "collector.clone_depth must be >= 0"},
	} {
		if !check.ok {
			errs = append(errs, errors.New(check.key))
		}
	}

	s := c.Strategy
	for key, id := range map[string]string{
		"default_model":   s.DefaultModel,
		"analysis_model":  s.AnalysisModel,
		"report_model":    s.ReportModel,
		"migration_model": s.MigrationModel,
	} {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if _, ok := c.Models[id]; !ok {
			fail("strategy.%s %q is not a configured model", key, id)
		}
	}
	for _, id := range s.Fallbacks {
		if _, ok := c.Models[id]; !ok {
			fail("strategy.fallbacks: %q is not a configured model", id)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Server.Transport)) {
	case "", "connect", "ndjson":
	default:
		fail("server.transport must be connect or ndjson, got %q", c.Server.Transport)
	}

	return errors.Join(errs...)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
