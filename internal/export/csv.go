package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatlog-viewer/internal"
)

// CSVExporter writes tables back in the comma separated form the parser
// reads. Like the parser it does not quote: a comma inside a value becomes
// a field separator when the file is read again.
type CSVExporter struct{}

// Export exports a table to CSV format
func (e *CSVExporter) Export(table *internal.Table, w io.Writer) error {
	if table == nil || len(table.Columns) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, strings.Join(table.Columns, ",")); err != nil {
		return err
	}
	values := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			values[i] = strings.ReplaceAll(row.Get(col), "\n", " ")
		}
		if _, err := fmt.Fprintln(w, strings.Join(values, ",")); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}
