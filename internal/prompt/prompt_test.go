package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
)

func TestRenderLayout(t *testing.T) {
	got := Render([]batch.SourceFile{
		{Name: "index.jsp", Content: "<html/>"},
		{Name: "css/site.css", Content: "body{}"},
	})
	require.Equal(t, "File: index.jsp\n<html/>\n\nFile: css/site.css\nbody{}\n\n", got)
	require.Empty(t, Render(nil))
}

func TestBuildAppendsFilesAfterTemplate(t *testing.T) {
	b := batch.Batch{Index: 2, Files: []batch.SourceFile{{Name: "a.jsp", Content: "A"}}}

	for _, kind := range []Kind{Analysis, MigrationReport, Migration} {
		p := Build(kind, b)
		require.True(t, strings.HasPrefix(p.User, template(kind)+"\n\n"), kind)
		require.True(t, strings.HasSuffix(p.User, "File: a.jsp\nA\n\n"), kind)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := batch.Batch{Files: []batch.SourceFile{{Name: "x.js", Content: "var x;"}}}
	require.Equal(t, Build(Analysis, b), Build(Analysis, b))
}

func TestMigrationCarriesSystemMessage(t *testing.T) {
	b := batch.Batch{Files: []batch.SourceFile{{Name: "x.jsp"}}}
	require.Equal(t, migrationSystem, Build(Migration, b).System)
	require.Empty(t, Build(Analysis, b).System)
	require.Empty(t, Build(MigrationReport, b).System)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"analysis":         Analysis,
		"Analyze":          Analysis,
		"report":           MigrationReport,
		"migration_report": MigrationReport,
		" migrate ":        Migration,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}
	_, err := ParseKind("deploy")
	require.Error(t, err)

	require.Equal(t, "report", MigrationReport.Role())
	require.Equal(t, "analysis", Analysis.Role())
}
