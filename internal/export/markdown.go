package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatlog-viewer/internal"
)

// MarkdownExporter exports tables as a Markdown pipe table
type MarkdownExporter struct{}

// Export exports a table to Markdown format
func (e *MarkdownExporter) Export(table *internal.Table, w io.Writer) error {
	rows := rowsOf(table)
	_, _ = fmt.Fprintf(w, "# Chat Log Export\n\n")
	_, _ = fmt.Fprintf(w, "**Rows:** %d\n\n", len(rows))

	if table == nil || len(table.Columns) == 0 {
		return nil
	}

	header := make([]string, len(table.Columns))
	divider := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = escapeCell(col)
		divider[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(divider, " | "))

	cells := make([]string, len(table.Columns))
	for _, row := range rows {
		for i, col := range table.Columns {
			cells[i] = escapeCell(row.Get(col))
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | ")); err != nil {
			return err
		}
	}

	return nil
}

// escapeCell keeps a value on one table row and escapes emphasis markers
func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", "<br>")
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
