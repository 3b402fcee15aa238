package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/chatlog-viewer/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		table     *internal.Table
		wantLines int
	}{
		{"chat logs", internal.CreateTestTable(4), 4},
		{"empty table", internal.NewTable(nil), 0},
		{"nil table", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&JSONLExporter{}).Export(tt.table, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			lines := 0
			scanner := bufio.NewScanner(&buf)
			for scanner.Scan() {
				var row map[string]string
				if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
					t.Errorf("line %d is not a JSON object: %v", lines, err)
				}
				lines++
			}
			if lines != tt.wantLines {
				t.Errorf("lines = %d, want %d", lines, tt.wantLines)
			}
		})
	}
}

func TestJSONLExporter_Values(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(internal.CreateTestTable(1), &buf); err != nil {
		t.Fatal(err)
	}

	var row map[string]string
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &row); err != nil {
		t.Fatal(err)
	}
	if row["senderName"] != "Alice" || row["senderId"] != "u1" {
		t.Errorf("row = %v", row)
	}
}
