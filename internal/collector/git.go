package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
)

// RunFunc executes a command and returns its combined stderr on failure.
type RunFunc func(ctx context.Context, name string, args ...string) (string, error)

// Cloner makes shallow clones of remote repositories into temp directories.
type Cloner struct {
	Binary string
	Depth  int
	// TempDir is the parent for clone directories (os.TempDir when empty).
	TempDir string
	Run     RunFunc
	Logger  *zap.Logger
}

// SanitizeRepoURL trims spaces, a trailing slash and a trailing .git, then
// requires an http(s), ssh or scp-like git address.
func SanitizeRepoURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".git")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidRepoURL)
	}
	if strings.HasPrefix(s, "git@") && strings.Contains(s, ":") {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRepoURL, err)
	}
	switch u.Scheme {
	case "http", "https", "ssh":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRepoURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidRepoURL)
	}
	return s, nil
}

// Clone clones repoURL into a fresh temp directory. The returned cleanup
// removes it and is safe to call more than once.
func (c *Cloner) Clone(ctx context.Context, repoURL string) (string, func(), error) {
	sanitized, err := SanitizeRepoURL(repoURL)
	if err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp(c.TempDir, "legacylift-clone-")
	if err != nil {
		return "", nil, fmt.Errorf("create clone dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	args := []string{"clone", "--quiet"}
	if c.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(c.Depth))
	}
	args = append(args, "--", sanitized, dir)

	c.logger().Info("cloning repository", zap.String("repo", sanitized))
	if out, err := c.run()(ctx, c.binary(), args...); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("git clone %s: %w: %s", sanitized, err, strings.TrimSpace(out))
	}
	return dir, cleanup, nil
}

// FromRepo clones repoURL, collects its files and removes the clone.
func FromRepo(ctx context.Context, cloner *Cloner, repoURL string, opts Options) ([]batch.SourceFile, error) {
	dir, cleanup, err := cloner.Clone(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return FromDir(dir, opts)
}

func (c *Cloner) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "git"
}

func (c *Cloner) run() RunFunc {
	if c.Run != nil {
		return c.Run
	}
	return execRun
}

func (c *Cloner) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func execRun(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stderr.String(), err
	}
	return "", nil
}
