package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/chatlog-viewer/internal"
)

// JSONExporter exports tables as a pretty-printed JSON array of objects
type JSONExporter struct{}

// Export writes every row as an object with keys in column order
func (e *JSONExporter) Export(table *internal.Table, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rowsOf(table))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
