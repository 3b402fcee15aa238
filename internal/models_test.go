package internal

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDelimitedRow_MarshalJSON_KeepsColumnOrder(t *testing.T) {
	row := DelimitedRow{
		Columns: []string{"zeta", "alpha", "mid"},
		Values:  map[string]string{"zeta": "1", "alpha": "2", "mid": "3"},
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(data), `{"zeta":"1","alpha":"2","mid":"3"}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestDelimitedRow_MarshalYAML_KeepsColumnOrder(t *testing.T) {
	row := DelimitedRow{
		Columns: []string{"b", "a"},
		Values:  map[string]string{"a": "x", "b": "z"},
	}

	data, err := yaml.Marshal(row)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if got, want := string(data), "b: z\na: x\n"; got != want {
		t.Errorf("yaml.Marshal() = %q, want %q", got, want)
	}
}

func TestDelimitedRow_Get(t *testing.T) {
	row := DelimitedRow{Columns: []string{"a"}, Values: map[string]string{"a": "1"}}
	if row.Get("a") != "1" {
		t.Errorf("Get(a) = %q, want 1", row.Get("a"))
	}
	if row.Get("missing") != "" {
		t.Errorf("Get(missing) = %q, want empty", row.Get("missing"))
	}
	if row.Len() != 1 {
		t.Errorf("Len() = %d, want 1", row.Len())
	}
}

func TestChatLogRecord_JSON(t *testing.T) {
	tests := []struct {
		name       string
		record     ChatLogRecord
		wantInJSON string
	}{
		{
			name:       "valid timestamp",
			record:     ChatLogRecord{SenderName: "Alice", SenderID: "u1", Time: "2024-01-01", Content: "hi", Timestamp: 1704067200000},
			wantInJSON: `"timestamp":1704067200000`,
		},
		{
			name:       "NaN timestamp",
			record:     ChatLogRecord{SenderName: "Alice", SenderID: "u1", Time: "garbage", Content: "hi", Timestamp: math.NaN()},
			wantInJSON: `"timestamp":null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.record)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if !strings.Contains(string(data), tt.wantInJSON) {
				t.Errorf("Marshal() = %s, want it to contain %s", data, tt.wantInJSON)
			}

			var back ChatLogRecord
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !sameRecords([]ChatLogRecord{back}, []ChatLogRecord{tt.record}) {
				t.Errorf("round trip = %+v, want %+v", back, tt.record)
			}
		})
	}
}

func TestChatLogRecord_UnmarshalTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		isNaN bool
	}{
		{"explicit", `{"senderName":"Bob","time":"2024-01-01T10:00:00Z","timestamp":1704103200000}`, 1704103200000, false},
		{"missing", `{"senderName":"Bob","time":"2024-01-01T10:00:00Z"}`, 0, true},
		{"null", `{"senderName":"Bob","time":"2024-01-01T10:00:00Z","timestamp":null}`, 0, true},
		{"no time", `{"senderName":"Bob"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec ChatLogRecord
			if err := json.Unmarshal([]byte(tt.input), &rec); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if tt.isNaN {
				if rec.HasTimestamp() {
					t.Errorf("Timestamp = %v, want NaN until resolved", rec.Timestamp)
				}
				if !rec.At().IsZero() {
					t.Errorf("At() = %v, want zero time", rec.At())
				}
				return
			}
			if rec.Timestamp != tt.want || rec.At().UnixMilli() != int64(tt.want) {
				t.Errorf("Timestamp = %v, want %v", rec.Timestamp, tt.want)
			}
		})
	}
}

func TestSource_JSON(t *testing.T) {
	input := `{"source_id":"src-1","name":"Personal","status":"online","platform":"wechat","version":3}`

	var src Source
	if err := json.Unmarshal([]byte(input), &src); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if src.SourceID != "src-1" || src.Name != "Personal" || src.Status != "online" {
		t.Errorf("Unmarshal() = %+v", src)
	}
	if src.Extra["platform"] != "wechat" {
		t.Errorf("Extra[platform] = %v, want wechat", src.Extra["platform"])
	}
	if _, ok := src.Extra["source_id"]; ok {
		t.Error("Extra should not repeat known fields")
	}

	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]any{
		"source_id": "src-1",
		"name":      "Personal",
		"status":    "online",
		"platform":  "wechat",
		"version":   float64(3),
	}
	for k, v := range want {
		if !reflect.DeepEqual(back[k], v) {
			t.Errorf("round trip %s = %v, want %v", k, back[k], v)
		}
	}
}

func TestSource_Label(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{Source{SourceID: "src-1", Name: "Personal"}, "Personal"},
		{Source{SourceID: "src-1"}, "src-1"},
	}
	for _, tt := range tests {
		if got := tt.src.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestContact_Field(t *testing.T) {
	c := Contact{"nickName": "Alice", "count": float64(3), "flag": true, "empty": nil}
	tests := []struct {
		key  string
		want string
	}{
		{"nickName", "Alice"},
		{"count", "3"},
		{"flag", "true"},
		{"empty", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := c.Field(tt.key); got != tt.want {
			t.Errorf("Field(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestChatLogQuery_Params(t *testing.T) {
	tests := []struct {
		name  string
		query ChatLogQuery
		want  map[string]string
	}{
		{
			name:  "empty",
			query: ChatLogQuery{},
			want:  map[string]string{},
		},
		{
			name:  "all fields",
			query: ChatLogQuery{Time: "2024-01-01", Talker: "g1", Sender: "u1", Keyword: "hi", Limit: 20, Offset: 40, Format: "text"},
			want: map[string]string{
				"time": "2024-01-01", "talker": "g1", "sender": "u1", "keyword": "hi",
				"limit": "20", "offset": "40", "format": "text",
			},
		},
		{
			name:  "zero offset omitted",
			query: ChatLogQuery{Talker: "g1", Limit: 20},
			want:  map[string]string{"talker": "g1", "limit": "20"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Params(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Params() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTable(t *testing.T) {
	rows := []DelimitedRow{
		{Columns: []string{"a", "b"}, Values: map[string]string{"a": "1", "b": "2"}},
		{Columns: []string{"b", "c"}, Values: map[string]string{"b": "3", "c": "4"}},
	}
	table := NewTable(rows)
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("Columns = %v, want %v", table.Columns, want)
	}
	if len(table.Rows) != 2 {
		t.Errorf("Rows = %d, want 2", len(table.Rows))
	}

	if empty := NewTable(nil); len(empty.Columns) != 0 || len(empty.Rows) != 0 {
		t.Errorf("NewTable(nil) = %+v, want empty", empty)
	}
}

func TestChatLogTable(t *testing.T) {
	table := ChatLogTable(CreateTestChatLogs(3))
	if want := []string{"senderName", "senderId", "time", "content"}; !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("Columns = %v, want %v", table.Columns, want)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("Rows = %d, want 3", len(table.Rows))
	}
	if got := table.Rows[1].Get("senderId"); got != "u2" {
		t.Errorf("Rows[1].senderId = %q, want u2", got)
	}
}

func TestSessionTable(t *testing.T) {
	table := SessionTable([]SessionRecord{{Name: "Ops", ID: "g456", LastMessageTime: "2024-01-02"}})
	if len(table.Rows) != 1 || table.Rows[0].Get("id") != "g456" {
		t.Errorf("SessionTable() = %+v", table)
	}
}
