// Package prompt assembles the instruction text sent to the model for one batch.
package prompt

import (
	"fmt"
	"strings"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
)

// Kind selects the instruction template.
type Kind string

const (
	Analysis        Kind = "analysis"
	MigrationReport Kind = "migration_report"
	Migration       Kind = "migration"
)

// ParseKind maps a job name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Analysis, "analyze":
		return Analysis, nil
	case MigrationReport, "report":
		return MigrationReport, nil
	case Migration, "migrate":
		return Migration, nil
	default:
		return "", fmt.Errorf("unknown job kind %q", s)
	}
}

// Role is the strategy role used to pick a model for the kind.
func (k Kind) Role() string {
	switch k {
	case MigrationReport:
		return "report"
	case Migration:
		return "migration"
	default:
		return "analysis"
	}
}

// Prompt is the assembled request text for one batch.
type Prompt struct {
	System string
	User   string
}

// Build assembles the prompt for a batch. It is pure: identical input yields
// identical output.
func Build(kind Kind, b batch.Batch) Prompt {
	p := Prompt{User: template(kind) + "\n\n" + Render(b.Files)}
	if kind == Migration {
		p.System = migrationSystem
	}
	return p
}

// Render lays out files as "File: <name>\n<content>\n\n" blocks in order.
func Render(files []batch.SourceFile) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "File: %s\n%s\n\n", f.Name, f.Content)
	}
	return b.String()
}

func template(kind Kind) string {
	switch kind {
	case MigrationReport:
		return migrationReportTemplate
	case Migration:
		return migrationTemplate
	default:
		return analysisTemplate
	}
}
