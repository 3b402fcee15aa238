package export

import (
	"fmt"
	"io"

	"github.com/iksnae/chatlog-viewer/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(table *internal.Table, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "csv":
		return &CSVExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json, csv)", format)
	}
}

func rowsOf(table *internal.Table) []internal.DelimitedRow {
	if table == nil || table.Rows == nil {
		return []internal.DelimitedRow{}
	}
	return table.Rows
}
