package batch

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func makeFiles(n int) []SourceFile {
	files := make([]SourceFile, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, SourceFile{Name: fmt.Sprintf("web/page%d.jsp", i), Content: fmt.Sprintf("<p>%d</p>", i)})
	}
	return files
}

func TestSplitEmptyInput(t *testing.T) {
	_, err := Split(nil, Options{})
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = Split([]SourceFile{}, Options{ChunkSize: 3})
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestSplitCoversInputInOrder(t *testing.T) {
	for _, n := range []int{1, 4, 5, 6, 10, 12, 23} {
		for _, size := range []int{1, 2, 5, 7} {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				files := makeFiles(n)
				batches, err := Split(files, Options{ChunkSize: size})
				require.NoError(t, err)
				require.Equal(t, files, Flatten(batches))
				for i, b := range batches {
					require.Equal(t, i, b.Index)
					require.NotEmpty(t, b.Files)
					require.LessOrEqual(t, len(b.Files), size)
					if i < len(batches)-1 {
						require.Len(t, b.Files, size)
					}
				}
			})
		}
	}
}

func TestSplitTwelveFilesDefaultChunk(t *testing.T) {
	batches, err := Split(makeFiles(12), Options{})
	require.NoError(t, err)

	sizes := make([]int, 0, len(batches))
	for _, b := range batches {
		sizes = append(sizes, len(b.Files))
	}
	require.Equal(t, []int{5, 5, 2}, sizes)
}

func TestSplitTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", DefaultMaxContentLength+50)
	short := strings.Repeat("b", DefaultMaxContentLength)
	batches, err := Split([]SourceFile{{Name: "long.js", Content: long}, {Name: "short.js", Content: short}}, Options{})
	require.NoError(t, err)
	require.Len(t, batches, 1)

	got := batches[0].Files[0].Content
	require.Equal(t, DefaultMaxContentLength+len(TruncationMarker), len(got))
	require.True(t, strings.HasSuffix(got, TruncationMarker))
	require.Equal(t, short, batches[0].Files[1].Content)
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	files := []SourceFile{{Name: "a.css", Content: "0123456789"}}
	_, err := Split(files, Options{MaxContentLength: 4})
	require.NoError(t, err)
	require.Equal(t, "0123456789", files[0].Content)
}

func TestTruncateCountsCharacters(t *testing.T) {
	content := strings.Repeat("é", 8)
	got := Truncate(content, 5)
	require.Equal(t, strings.Repeat("é", 5)+TruncationMarker, got)
	require.Equal(t, 5+utf8.RuneCountInString(TruncationMarker), utf8.RuneCountInString(got))

	require.Equal(t, content, Truncate(content, 8))
	require.Equal(t, content, Truncate(content, 0))
}
