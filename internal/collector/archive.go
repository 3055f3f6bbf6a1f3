package collector

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
)

// FromArchive reads a zip buffer and returns the allowed files in archive
// order. Entries that would escape the archive root are skipped.
func FromArchive(data []byte, opts Options) ([]batch.SourceFile, error) {
	opts = opts.withDefaults()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedArchive, err)
	}

	var (
		files []batch.SourceFile
		total int64
	)
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !opts.allowed(entry.Name) {
			continue
		}
		name, err := cleanEntryName(entry.Name)
		if err != nil {
			opts.Logger.Warn("skipping archive entry", zap.String("entry", entry.Name), zap.Error(err))
			continue
		}
		content, err := readEntry(entry, opts.MaxArchiveBytes-total, opts.MaxArchiveBytes > 0)
		if err != nil {
			return nil, err
		}
		total += int64(len(content))
		if opts.StripRoot {
			name = StripRoot(name)
		}
		files = append(files, batch.SourceFile{Name: name, Content: string(content)})
	}

	return finish(files, opts)
}

func readEntry(entry *zip.File, remaining int64, capped bool) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if capped {
		r = io.LimitReader(rc, remaining+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedArchive, entry.Name, err)
		}
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	if capped && int64(len(content)) > remaining {
		return nil, ErrArchiveTooLarge
	}
	return content, nil
}
