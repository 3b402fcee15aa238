package export

import (
	"io"

	"github.com/iksnae/chatlog-viewer/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports tables as a YAML sequence of mappings
type YAMLExporter struct{}

// Export exports a table to YAML format
func (e *YAMLExporter) Export(table *internal.Table, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(rowsOf(table))
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
