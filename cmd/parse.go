package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/iksnae/chatlog-viewer/internal/export"
	"github.com/spf13/cobra"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse <csv|sessions|transcript> <file|->",
	Short: "Parse a plaintext export offline",
	Long: `Parse a plaintext payload saved from the chatlog service without
contacting it. The kind is one of:
  csv         comma-delimited table with a header line
  sessions    session listing ("Name(id) time" header lines)
  transcript  chat transcript ("Sender(id) time" header plus content line)

Use - to read from stdin. Without --format the result is printed as a table.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		parser, err := newParser(cfg)
		if err != nil {
			return err
		}

		text, err := readInput(cmd.InOrStdin(), args[1])
		if err != nil {
			return err
		}

		table, err := parseTable(parser, args[0], text)
		if err != nil {
			return err
		}

		if parseFormat == "" {
			displayTable(cmd.OutOrStdout(), table)
			return nil
		}
		exporter, err := export.NewExporter(parseFormat)
		if err != nil {
			return err
		}
		if err := exporter.Export(table, cmd.OutOrStdout()); err != nil {
			return &internal.ExportError{Format: parseFormat, Err: err}
		}
		return nil
	},
}

func parseTable(parser *internal.Parser, kind, text string) (*internal.Table, error) {
	switch kind {
	case "csv":
		return internal.NewTable(parser.ParseDelimitedTable(text)), nil
	case "sessions":
		return internal.SessionTable(parser.ParseSessionList(text)), nil
	case "transcript":
		return internal.ChatLogTable(parser.ParseChatTranscript(text)), nil
	default:
		return nil, fmt.Errorf("unsupported kind: %s (supported: csv, sessions, transcript)", kind)
	}
}

func readInput(stdin io.Reader, name string) (string, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "Output format (jsonl, md, yaml, json, csv)")
	rootCmd.AddCommand(parseCmd)
}
