package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/iksnae/chatlog-viewer/internal/export"
	"github.com/spf13/cobra"
)

// Where export reads messages from
const (
	exportFromCSV  = "csv"
	exportFromJSON = "json"
	exportFromText = "text"
)

var (
	exportFilters  queryFlags
	exportFrom     string
	exportFormat   string
	exportOut      string
	exportSessions bool
	exportLimit    int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export chat messages or sessions of the selected source",
	Long: `Export chat messages of the selected source to a file or stdout.

--from picks the upstream representation:
  csv   the service's CSV export (default)
  json  the structured chat log endpoint
  text  the plaintext transcript, parsed locally

--format picks the output: jsonl, md, yaml, json or csv.
With --sessions the session list is exported instead of messages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		return withApp(func(a *app) error {
			ctx := commandContext(cmd)

			var table *internal.Table
			err := internal.ShowProgress(ctx, "Fetching data to export...", func() error {
				var fetchErr error
				table, fetchErr = exportTable(ctx, a, exportFilters.query())
				return fetchErr
			})
			if err != nil {
				return err
			}

			if exportOut == "" || exportOut == "-" {
				return writeTable(exporter, table, cmd.OutOrStdout(), "")
			}

			path := exportOut
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, exportFileName(exporter))
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
			}
			file, err := os.Create(path)
			if err != nil {
				return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
			}
			if err := writeTable(exporter, table, file, path); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
			}

			internal.PrintSuccess(fmt.Sprintf("Export complete: %d row(s) written to %s", len(table.Rows), path))
			return nil
		})
	},
}

// exportTable fetches what export should write as a table
func exportTable(ctx context.Context, a *app, q internal.ChatLogQuery) (*internal.Table, error) {
	if exportSessions {
		sessions, err := a.viewer.FetchSessions(ctx)
		if err != nil {
			return nil, err
		}
		return internal.SessionTable(sessions), nil
	}

	switch exportFrom {
	case exportFromCSV:
		return a.viewer.ExportChatLogs(ctx, q)
	case exportFromJSON:
		pageSize := exportLimit
		if pageSize < 1 {
			pageSize = a.cfg.PageSize
		}
		a.viewer.SetPage(internal.DefaultPage, pageSize)
		page, err := a.viewer.FetchChatLogs(ctx, q)
		if err != nil {
			return nil, err
		}
		return internal.ChatLogTable(page.Items), nil
	case exportFromText:
		records, err := a.viewer.FetchChatLogsRaw(ctx, q)
		if err != nil {
			return nil, err
		}
		internal.SortChatLogs(records)
		return internal.ChatLogTable(records), nil
	default:
		return nil, fmt.Errorf("unsupported source representation: %s (supported: csv, json, text)", exportFrom)
	}
}

func writeTable(exporter export.Exporter, table *internal.Table, w io.Writer, path string) error {
	if err := exporter.Export(table, w); err != nil {
		return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
	}
	return nil
}

func exportFileName(exporter export.Exporter) string {
	name := "chatlog"
	if exportSessions {
		name = "sessions"
	}
	if exportFilters.talker != "" {
		name += "_" + exportFilters.talker
	}
	return name + "." + exporter.Extension()
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFrom, "from", exportFromCSV, "Upstream representation (csv, json, text)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json, csv)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or directory (default stdout)")
	exportCmd.Flags().BoolVar(&exportSessions, "sessions", false, "Export the session list instead of messages")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "Messages to fetch with --from json (default page size)")
	rootCmd.AddCommand(exportCmd)
}
