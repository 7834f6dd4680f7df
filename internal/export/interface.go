package export

import (
	"fmt"
	"io"

	"github.com/iksnae/chat2md/internal"
)

// Exporter defines the interface for all single-conversation export formats
type Exporter interface {
	Export(conv *internal.Conversation, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format. opts only affects the
// Markdown family.
func NewExporter(format string, opts internal.ConversionOptions) (Exporter, error) {
	switch format {
	case "md", "markdown":
		opts.Format = internal.FormatMarkdown
		return &MarkdownExporter{Options: opts}, nil
	case "mdx":
		opts.Format = internal.FormatMDX
		return &MarkdownExporter{Options: opts}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, mdx, jsonl, yaml, json)", format)
	}
}
