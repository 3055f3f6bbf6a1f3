// Package collector turns uploaded archives, directories and cloned
// repositories into the ordered list of source files the pipeline batches.
package collector

import (
	"errors"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
)

// DefaultMaxDepth bounds directory traversal.
const DefaultMaxDepth = 10

var (
	ErrNoFiles            = errors.New("archive contains no allowed file types")
	ErrNoJSP              = errors.New("archive does not contain any JSP files")
	ErrUnsupportedArchive = errors.New("upload is not a readable zip archive")
	ErrInvalidRepoURL     = errors.New("invalid repository URL")
	ErrArchiveTooLarge    = errors.New("archive exceeds the configured size limit")
)

// DefaultExtensions is used when Options.AllowedExtensions is empty.
var DefaultExtensions = []string{
	".jsp", ".jspx", ".jspf", ".html", ".htm", ".css", ".js", ".xml", ".properties",
}

// Options controls which files are collected.
type Options struct {
	AllowedExtensions []string
	RequireJSP        bool
	// StripRoot removes the leading path segment of archive entries
	// (a/b/c.jsp becomes b/c.jsp). Single-segment names are kept.
	StripRoot bool
	MaxDepth  int
	// MaxArchiveBytes caps the total uncompressed size read from an archive; 0 means no cap.
	MaxArchiveBytes int64
	Logger          *zap.Logger
}

func (o Options) withDefaults() Options {
	if len(o.AllowedExtensions) == 0 {
		o.AllowedExtensions = DefaultExtensions
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) allowed(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range o.AllowedExtensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// StripRoot drops the first slash-separated segment of name.
func StripRoot(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

func finish(files []batch.SourceFile, opts Options) ([]batch.SourceFile, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if opts.RequireJSP && !containsJSP(files) {
		return nil, ErrNoJSP
	}
	return files, nil
}

func containsJSP(files []batch.SourceFile) bool {
	for _, f := range files {
		if strings.EqualFold(path.Ext(f.Name), ".jsp") {
			return true
		}
	}
	return false
}
