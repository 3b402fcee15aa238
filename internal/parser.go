package internal

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// recordHeaderPattern matches "<name>(<id>) <rest>". Name and id are the
// shortest runs up to the first parenthesis pair.
var recordHeaderPattern = regexp.MustCompile(`^(.+?)\((.+?)\)[\s\p{Zs}]+(.+)$`)

// Parser converts plaintext exports into records. It holds no per-call state,
// so a single Parser can be shared.
type Parser struct {
	log Logger
	loc *time.Location
}

// NewParser creates a Parser. Transcript times without a zone are read in
// loc; nil means time.Local.
func NewParser(log Logger, loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{log: orNop(log), loc: loc}
}

// splitLines trims text and splits it on line breaks, dropping the \r of
// CRLF line endings
func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// ParseDelimitedTable parses comma separated text whose first line is the
// header. Quoting is not supported: every comma separates fields.
func (p *Parser) ParseDelimitedTable(text string) []DelimitedRow {
	if text == "" {
		p.log.Warnf("ParseDelimitedTable: empty input")
		return []DelimitedRow{}
	}

	lines := splitLines(text)
	if len(lines) < 2 {
		return []DelimitedRow{}
	}

	headers := splitFields(lines[0])
	columns := make([]string, 0, len(headers))
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if !seen[h] {
			seen[h] = true
			columns = append(columns, h)
		}
	}

	rows := make([]DelimitedRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitFields(line)
		row := DelimitedRow{
			Columns: columns,
			Values:  make(map[string]string, len(columns)),
		}
		for i, h := range headers {
			if i < len(values) {
				row.Values[h] = values[i]
			} else {
				row.Values[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ParseSessionList parses lines of the form "<name>(<id>) <last message time>".
// Blank and non-matching lines are skipped.
func (p *Parser) ParseSessionList(text string) []SessionRecord {
	if text == "" {
		p.log.Warnf("ParseSessionList: empty input")
		return []SessionRecord{}
	}

	sessions := make([]SessionRecord, 0)
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := recordHeaderPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		sessions = append(sessions, SessionRecord{
			Name:            name,
			ID:              strings.TrimSpace(m[2]),
			LastMessageTime: strings.TrimSpace(m[3]),
			DisplayName:     name,
		})
	}
	return sessions
}

// ParseChatTranscript parses a transcript of alternating
// "<sender>(<id>) <time>" header lines and content lines.
//
// The upstream call path sometimes hands over already decoded data, so input
// is coerced: strings and byte slices are parsed, []ChatLogRecord is returned
// as is, other slices are converted record by record, maps and structs are
// parsed from their JSON encoding and other scalars from fmt.Sprint.
func (p *Parser) ParseChatTranscript(input any) []ChatLogRecord {
	text, records, ok := p.coerceTranscript(input)
	if records != nil {
		return records
	}
	if !ok || text == "" {
		return []ChatLogRecord{}
	}

	m := newTranscriptMachine(p.loc)
	for _, line := range splitLines(text) {
		m.feed(line)
	}
	return m.finish()
}

// ResolveTimestamps derives the timestamp of records that arrived without
// one from their Time, read in the parser's location. Records whose Time is
// not a date keep a NaN timestamp.
func (p *Parser) ResolveTimestamps(records []ChatLogRecord) {
	for i := range records {
		if !records[i].HasTimestamp() {
			records[i].Timestamp = ParseTimestamp(records[i].Time, p.loc)
		}
	}
}

// coerceTranscript turns input into transcript text. A non-nil record slice
// short-circuits parsing.
func (p *Parser) coerceTranscript(input any) (string, []ChatLogRecord, bool) {
	switch v := input.(type) {
	case nil:
		p.log.Warnf("ParseChatTranscript: empty input")
		return "", nil, false
	case string:
		if v == "" {
			p.log.Warnf("ParseChatTranscript: empty input")
			return "", nil, false
		}
		return v, nil, true
	case []byte:
		if len(v) == 0 {
			p.log.Warnf("ParseChatTranscript: empty input")
			return "", nil, false
		}
		return string(v), nil, true
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			p.log.Warnf("ParseChatTranscript: raw JSON input could not be decoded, parsing as text: %v", err)
			return string(v), nil, true
		}
		return p.coerceTranscript(decoded)
	case []ChatLogRecord:
		p.log.Warnf("ParseChatTranscript: input is already a record slice, returning it unchanged")
		if v == nil {
			return "", []ChatLogRecord{}, false
		}
		return "", v, false
	}

	rv := reflect.ValueOf(input)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		p.log.Warnf("ParseChatTranscript: input is a %T, converting elements to records", input)
		data, err := json.Marshal(input)
		if err != nil {
			p.log.Warnf("ParseChatTranscript: cannot encode %T: %v", input, err)
			return "", nil, false
		}
		var records []ChatLogRecord
		if err := json.Unmarshal(data, &records); err != nil {
			p.log.Warnf("ParseChatTranscript: elements of %T are not records: %v", input, err)
			return "", nil, false
		}
		if records == nil {
			records = []ChatLogRecord{}
		}
		p.ResolveTimestamps(records)
		return "", records, false
	case reflect.Map, reflect.Struct, reflect.Pointer:
		p.log.Warnf("ParseChatTranscript: input is a %T, parsing its JSON form", input)
		data, err := json.Marshal(input)
		if err != nil {
			p.log.Warnf("ParseChatTranscript: cannot encode %T: %v", input, err)
			return "", nil, false
		}
		return string(data), nil, true
	default:
		p.log.Warnf("ParseChatTranscript: unexpected input type %T, parsing its string form", input)
		return fmt.Sprint(input), nil, true
	}
}
