package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chatlog-viewer/internal"
)

// JSONLExporter exports tables in JSONL format (one row per line)
type JSONLExporter struct{}

// Export exports a table to JSONL format
func (e *JSONLExporter) Export(table *internal.Table, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, row := range rowsOf(table) {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
