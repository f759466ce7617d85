// Package export renders normalized conversations to files in several
// formats. JSON and JSONL carry the full wire contract; YAML mirrors it
// key for key; Markdown is a lossy human-readable rendering.
package export

import (
	"io"
	"strings"

	"github.com/kestrelhq/normlog/internal/logs"
)

// Exporter renders one conversation to a writer.
type Exporter interface {
	Export(conv *logs.NormalizedConversation, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"json", "jsonl", "yaml", "md"}
}

// NewExporter selects an exporter by format name. Names are
// case-insensitive; "markdown" is accepted as an alias for "md".
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	}
	return nil, &ExportError{Format: format, Err: errUnsupported}
}
