package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
)

// FromDir walks root up to opts.MaxDepth levels in lexical order and collects
// allowed files. Names are slash-separated and relative to root.
// Permission-denied directories and files are logged and skipped.
func FromDir(root string, opts Options) ([]batch.SourceFile, error) {
	opts = opts.withDefaults()

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var files []batch.SourceFile
	var walk func(dir, rel string, depth int) error
	walk = func(dir, rel string, depth int) error {
		if depth > opts.MaxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				opts.Logger.Warn("permission denied", zap.String("path", dir))
				return nil
			}
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			name := e.Name()
			full := filepath.Join(dir, name)
			relName := path.Join(rel, name)

			if e.IsDir() {
				if name == ".git" {
					continue
				}
				if err := walk(full, relName, depth+1); err != nil {
					return err
				}
				continue
			}
			if !e.Type().IsRegular() || !opts.allowed(name) {
				continue
			}
			data, err := os.ReadFile(full)
			if err != nil {
				if errors.Is(err, fs.ErrPermission) {
					opts.Logger.Warn("permission denied", zap.String("path", full))
					continue
				}
				return err
			}
			files = append(files, batch.SourceFile{Name: relName, Content: string(data)})
		}
		return nil
	}

	if err := walk(root, "", 0); err != nil {
		return nil, err
	}
	opts.Logger.Debug("collected files", zap.String("root", root), zap.Int("files", len(files)))
	return finish(files, opts)
}
