package batch

import (
	"errors"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the maximum number of files sent in one model request.
	DefaultChunkSize = 5
	// DefaultMaxContentLength caps a single file's content, in characters.
	DefaultMaxContentLength = 10000
	// TruncationMarker is appended to content cut at the cap.
	TruncationMarker = "\n// Content truncated\n"
)

// ErrEmptyInput is returned when there is nothing to batch.
var ErrEmptyInput = errors.New("no source files to process")

// SourceFile is a collected file: a slash-separated name and its text.
type SourceFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Batch is a contiguous run of files processed by one model request.
type Batch struct {
	Index int
	Files []SourceFile
}

// Options controls batch cardinality and per-file truncation.
type Options struct {
	ChunkSize        int
	MaxContentLength int
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxContentLength <= 0 {
		o.MaxContentLength = DefaultMaxContentLength
	}
	return o
}

// Split partitions files into contiguous batches of at most ChunkSize files,
// truncating oversized content. Input order is preserved and every file appears
// exactly once.
func Split(files []SourceFile, opts Options) ([]Batch, error) {
	if len(files) == 0 {
		return nil, ErrEmptyInput
	}
	opts = opts.withDefaults()

	batches := make([]Batch, 0, (len(files)+opts.ChunkSize-1)/opts.ChunkSize)
	for start := 0; start < len(files); start += opts.ChunkSize {
		end := min(start+opts.ChunkSize, len(files))
		chunk := make([]SourceFile, 0, end-start)
		for _, f := range files[start:end] {
			chunk = append(chunk, SourceFile{
				Name:    f.Name,
				Content: Truncate(f.Content, opts.MaxContentLength),
			})
		}
		batches = append(batches, Batch{Index: len(batches), Files: chunk})
	}
	return batches, nil
}

// Truncate cuts content to limit characters and appends TruncationMarker.
// Content at or under the cap is returned unchanged.
func Truncate(content string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(content) <= limit {
		return content
	}
	n := 0
	for i := range content {
		if n == limit {
			return content[:i] + TruncationMarker
		}
		n++
	}
	return content
}

// Flatten concatenates the files of all batches in order.
func Flatten(batches []Batch) []SourceFile {
	var out []SourceFile
	for _, b := range batches {
		out = append(out, b.Files...)
	}
	return out
}
