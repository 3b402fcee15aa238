package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

// DelimitedRow is one data line of a delimited table, keyed by header name.
// Columns keeps the header order for display; lookups go through Values.
type DelimitedRow struct {
	Columns []string
	Values  map[string]string
}

// Get returns the cell for column, or "" when the column is unknown
func (r DelimitedRow) Get(column string) string {
	return r.Values[column]
}

// Len returns the number of distinct columns in the row
func (r DelimitedRow) Len() int {
	return len(r.Columns)
}

// MarshalJSON encodes the row as a JSON object with keys in column order
func (r DelimitedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := sonic.ConfigStd.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := sonic.ConfigStd.Marshal(r.Values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the row as a mapping with keys in column order
func (r DelimitedRow) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, col := range r.Columns {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Values[col]},
		)
	}
	return node, nil
}

// SessionRecord is one line of a session listing
type SessionRecord struct {
	Name            string `json:"name" yaml:"name"`
	ID              string `json:"id" yaml:"id"`
	LastMessageTime string `json:"lastMessageTime" yaml:"last_message_time"`
	// DisplayName mirrors Name; kept separate so aliases can diverge later.
	DisplayName string `json:"displayName" yaml:"display_name"`
}

// ChatLogRecord is one message of a chat transcript
type ChatLogRecord struct {
	SenderName string `json:"senderName" yaml:"sender_name"`
	SenderID   string `json:"senderId" yaml:"sender_id"`
	Time       string `json:"time" yaml:"time"`
	Content    string `json:"content" yaml:"content"`
	// Timestamp is Time in epoch milliseconds, NaN when Time is not a date.
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`
}

// HasTimestamp reports whether Timestamp holds a real instant
func (r ChatLogRecord) HasTimestamp() bool {
	return !math.IsNaN(r.Timestamp)
}

// At returns the record time, or the zero time when Timestamp is NaN
func (r ChatLogRecord) At() time.Time {
	if !r.HasTimestamp() {
		return time.Time{}
	}
	return time.UnixMilli(int64(r.Timestamp))
}

type chatLogRecordJSON struct {
	SenderName string   `json:"senderName"`
	SenderID   string   `json:"senderId"`
	Time       string   `json:"time"`
	Content    string   `json:"content"`
	Timestamp  *float64 `json:"timestamp"`
}

// MarshalJSON writes a NaN timestamp as null, which JSON cannot represent
// otherwise
func (r ChatLogRecord) MarshalJSON() ([]byte, error) {
	out := chatLogRecordJSON{
		SenderName: r.SenderName,
		SenderID:   r.SenderID,
		Time:       r.Time,
		Content:    r.Content,
	}
	if r.HasTimestamp() {
		ts := r.Timestamp
		out.Timestamp = &ts
	}
	return sonic.ConfigStd.Marshal(out)
}

// UnmarshalJSON reads a null or missing timestamp as NaN. Decoding does not
// know the location Time was written in; Parser.ResolveTimestamps derives the
// missing values.
func (r *ChatLogRecord) UnmarshalJSON(data []byte) error {
	var in chatLogRecordJSON
	if err := sonic.ConfigStd.Unmarshal(data, &in); err != nil {
		return err
	}
	r.SenderName = in.SenderName
	r.SenderID = in.SenderID
	r.Time = in.Time
	r.Content = in.Content
	if in.Timestamp != nil {
		r.Timestamp = *in.Timestamp
	} else {
		r.Timestamp = math.NaN()
	}
	return nil
}

// Source is an upstream account/dataset the viewer reads from
type Source struct {
	SourceID    string
	Name        string
	Description string
	Status      string
	// Extra holds keys the viewer does not interpret
	Extra map[string]any
}

var sourceKnownKeys = []string{"source_id", "name", "description", "status"}

// Label returns a human readable name for the source
func (s Source) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.SourceID
}

// MarshalJSON merges Extra back into the encoded object
func (s Source) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+len(sourceKnownKeys))
	for k, v := range s.Extra {
		out[k] = v
	}
	out["source_id"] = s.SourceID
	if s.Name != "" {
		out["name"] = s.Name
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Status != "" {
		out["status"] = s.Status
	}
	return sonic.ConfigStd.Marshal(out)
}

// UnmarshalJSON decodes known keys and keeps the rest in Extra
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("source is not an object")
	}
	s.SourceID = stringField(raw, "source_id")
	s.Name = stringField(raw, "name")
	s.Description = stringField(raw, "description")
	s.Status = stringField(raw, "status")
	for _, k := range sourceKnownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		s.Extra = raw
	} else {
		s.Extra = nil
	}
	return nil
}

// stringField reads key from m as a string; numbers are formatted
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Contact is a contact row as returned by the service. Its keys are not
// fixed upstream, so it is rendered generically.
type Contact map[string]any

// Field returns the value for key formatted as a string
func (c Contact) Field(key string) string {
	return stringField(c, key)
}

// ChatLogQuery holds the filters for a chat log request
type ChatLogQuery struct {
	Time    string
	Talker  string
	Sender  string
	Keyword string
	Limit   int
	Offset  int
	Format  string
}

// Params converts the query to request parameters, omitting empty fields
func (q ChatLogQuery) Params() map[string]string {
	params := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			params[k] = v
		}
	}
	set("time", q.Time)
	set("talker", q.Talker)
	set("sender", q.Sender)
	set("keyword", q.Keyword)
	set("format", q.Format)
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Offset > 0 {
		params["offset"] = strconv.Itoa(q.Offset)
	}
	return params
}

// Page is a typed view of a normalized response
type Page[T any] struct {
	Items      []T
	Total      int
	Pagination map[string]any
}

// Table is an ordered set of columns and rows; it is what exporters write
type Table struct {
	Columns []string
	Rows    []DelimitedRow
}

// NewTable builds a table whose columns are the union of the row columns
// in first-seen order
func NewTable(rows []DelimitedRow) *Table {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for _, col := range row.Columns {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	return &Table{Columns: columns, Rows: rows}
}

// ChatLogTable converts chat log records into a table
func ChatLogTable(records []ChatLogRecord) *Table {
	columns := []string{"senderName", "senderId", "time", "content"}
	rows := make([]DelimitedRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, DelimitedRow{
			Columns: columns,
			Values: map[string]string{
				"senderName": rec.SenderName,
				"senderId":   rec.SenderID,
				"time":       rec.Time,
				"content":    rec.Content,
			},
		})
	}
	return &Table{Columns: columns, Rows: rows}
}

// SessionTable converts session records into a table
func SessionTable(records []SessionRecord) *Table {
	columns := []string{"name", "id", "lastMessageTime"}
	rows := make([]DelimitedRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, DelimitedRow{
			Columns: columns,
			Values: map[string]string{
				"name":            rec.Name,
				"id":              rec.ID,
				"lastMessageTime": rec.LastMessageTime,
			},
		})
	}
	return &Table{Columns: columns, Rows: rows}
}
