package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yash23jamak/LegacyLift-B/internal/collector"
	"github.com/yash23jamak/LegacyLift-B/internal/config"
	"github.com/yash23jamak/LegacyLift-B/internal/observability"
	"github.com/yash23jamak/LegacyLift-B/internal/pipeline"
	"github.com/yash23jamak/LegacyLift-B/internal/prompt"
	"github.com/yash23jamak/LegacyLift-B/internal/server"
	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

type gatewayFunc func(ctx context.Context, p prompt.Prompt, role string) (string, error)

func (f gatewayFunc) Complete(ctx context.Context, p prompt.Prompt, role string) (string, error) {
	return f(ctx, p, role)
}

func startDaemon(t *testing.T, gw pipeline.Gateway) string {
	t.Helper()
	metrics := observability.NewMetrics()
	svc := &service.Service{
		Runner:    &pipeline.Runner{Gateway: gw, Metrics: metrics},
		Collector: collector.Options{RequireJSP: true},
	}
	cfg := &config.Config{Server: config.ServerConfig{Transport: "connect"}}
	ts := httptest.NewServer(server.New(cfg, nil, svc, metrics).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func exampleConfig(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)
	return path
}

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "project.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeZipOverConnect(t *testing.T) {
	url := startDaemon(t, gatewayFunc(func(ctx context.Context, p prompt.Prompt, role string) (string, error) {
		return `[{"fileName":"index.jsp","issues":[]}]`, nil
	}))
	zipPath := writeZip(t, map[string]string{"web/index.jsp": "<p/>"})

	stdout, stderr, err := execute(t, "analyze", "--zip", zipPath, "--config", exampleConfig(t), "--addr", url)
	require.NoError(t, err)
	require.Contains(t, stdout, `"outcome": "success"`)
	require.Contains(t, stderr, "[batch 1/1] 1 files, 1 units, 0 unparsed")
}

func TestAnalyzeListOverNDJSON(t *testing.T) {
	url := startDaemon(t, gatewayFunc(func(ctx context.Context, p prompt.Prompt, role string) (string, error) {
		t.Fatal("listing must not call the gateway")
		return "", nil
	}))
	zipPath := writeZip(t, map[string]string{"shop/web/index.jsp": "<p/>"})

	stdout, _, err := execute(t, "analyze", "--zip", zipPath, "--list", "--transport", "ndjson", "--config", exampleConfig(t), "--addr", url)
	require.NoError(t, err)
	require.Contains(t, stdout, `"name": "web/index.jsp"`)
}

func TestAnalyzeFlagValidation(t *testing.T) {
	_, _, err := execute(t, "analyze")
	require.Error(t, err)

	_, _, err = execute(t, "analyze", "--repo", "https://example.com/a", "--list")
	require.Error(t, err)
}

func TestReportFailureStatusIsAnError(t *testing.T) {
	url := startDaemon(t, gatewayFunc(func(ctx context.Context, p prompt.Prompt, role string) (string, error) {
		return "", context.DeadlineExceeded
	}))
	zipPath := writeZip(t, map[string]string{"index.jsp": "<p/>"})

	stdout, stderr, err := execute(t, "report", "--zip", zipPath, "--config", exampleConfig(t), "--addr", url)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
	require.Contains(t, stdout, `"outcome": "upstream_failure"`)
	require.Contains(t, stderr, "gateway failure")
}

func TestMigrateRejectsEscapingNames(t *testing.T) {
	url := startDaemon(t, gatewayFunc(func(ctx context.Context, p prompt.Prompt, role string) (string, error) {
		return `[{"fileName":"src/Index.jsx","convertedContent":"export default function Index() {}"},{"fileName":"../evil.jsx","convertedContent":"x"}]`, nil
	}))
	zipPath := writeZip(t, map[string]string{"index.jsp": "<p/>"})
	outDir := t.TempDir()

	_, _, err := execute(t, "migrate", "--zip", zipPath, "--out", outDir, "--config", exampleConfig(t), "--addr", url)
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes base directory")
	_, statErr := os.Stat(filepath.Join(outDir, "src", "Index.jsx"))
	require.True(t, os.IsNotExist(statErr))
}

func TestMigrateWritesConvertedFiles(t *testing.T) {
	url := startDaemon(t, gatewayFunc(func(ctx context.Context, p prompt.Prompt, role string) (string, error) {
		return `[{"fileName":"src/Index.jsx","convertedContent":"export default function Index() {}"}]`, nil
	}))
	zipPath := writeZip(t, map[string]string{"index.jsp": "<p/>"})
	outDir := t.TempDir()

	_, stderr, err := execute(t, "migrate", "--zip", zipPath, "--out", outDir, "--config", exampleConfig(t), "--addr", url)
	require.NoError(t, err)
	require.Contains(t, stderr, "wrote 1 files")

	data, err := os.ReadFile(filepath.Join(outDir, "src", "Index.jsx"))
	require.NoError(t, err)
	require.Equal(t, "export default function Index() {}", string(data))
}

func TestConvertedFilesSkipsFailures(t *testing.T) {
	files, err := convertedFiles([]any{
		map[string]any{"fileName": "A.jsx", "convertedContent": "a"},
		map[string]any{"error": "Failed to parse AI response after multiple attempts", "raw": "??"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "A.jsx", files[0].Name)
}
