package collector

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
)

// PathGuard ensures writes stay within a base directory.
type PathGuard struct {
	BaseDir string
}

// NewPathGuard constructs a guard rooted at baseDir (defaults to current working directory).
func NewPathGuard(baseDir string) (*PathGuard, error) {
	if baseDir == "" {
		var err error
		baseDir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	return &PathGuard{BaseDir: absBase}, nil
}

// Resolve validates and returns an absolute path inside BaseDir.
func (g *PathGuard) Resolve(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("path is required")
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("absolute paths are not allowed")
	}
	abs := filepath.Clean(filepath.Join(g.BaseDir, clean))

	if !strings.HasPrefix(abs, g.BaseDir+string(os.PathSeparator)) && abs != g.BaseDir {
		return "", fmt.Errorf("path escapes base directory")
	}
	return abs, nil
}

// WriteFiles writes each file below BaseDir, creating parent directories.
// Nothing is written if any name escapes the base directory.
func (g *PathGuard) WriteFiles(files []batch.SourceFile) error {
	targets := make([]string, len(files))
	for i, f := range files {
		resolved, err := g.Resolve(f.Name)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		targets[i] = resolved
	}
	for i, f := range files {
		if err := os.MkdirAll(filepath.Dir(targets[i]), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(targets[i], []byte(f.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// cleanEntryName normalizes a zip entry name and rejects names that would
// escape the archive root.
func cleanEntryName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("entry %q: absolute paths are not allowed", name)
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("entry %q: path escapes archive root", name)
	}
	return clean, nil
}
