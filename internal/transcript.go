package internal

import (
	"strings"
	"time"
)

type transcriptState int

const (
	expectHeader transcriptState = iota
	expectContent
)

func (s transcriptState) String() string {
	switch s {
	case expectHeader:
		return "expect-header"
	case expectContent:
		return "expect-content"
	default:
		return "unknown"
	}
}

// transcriptMachine classifies transcript lines one at a time.
//
//	expect-header  + blank line      -> expect-header (skipped)
//	expect-header  + non-header line -> expect-header (skipped)
//	expect-header  + header line     -> expect-content
//	expect-content + any line        -> expect-header (line is the content)
//
// There is no lookahead: a header directly followed by another header takes
// that second header as its content.
type transcriptMachine struct {
	state   transcriptState
	pending ChatLogRecord
	records []ChatLogRecord
	loc     *time.Location
}

func newTranscriptMachine(loc *time.Location) *transcriptMachine {
	return &transcriptMachine{
		state:   expectHeader,
		records: make([]ChatLogRecord, 0),
		loc:     loc,
	}
}

func (m *transcriptMachine) feed(line string) {
	line = strings.TrimSpace(line)

	switch m.state {
	case expectHeader:
		if line == "" {
			return
		}
		match := recordHeaderPattern.FindStringSubmatch(line)
		if match == nil {
			return
		}
		t := strings.TrimSpace(match[3])
		m.pending = ChatLogRecord{
			SenderName: strings.TrimSpace(match[1]),
			SenderID:   strings.TrimSpace(match[2]),
			Time:       t,
			Timestamp:  ParseTimestamp(t, m.loc),
		}
		m.state = expectContent
	case expectContent:
		m.pending.Content = line
		m.emit()
	}
}

func (m *transcriptMachine) emit() {
	m.records = append(m.records, m.pending)
	m.pending = ChatLogRecord{}
	m.state = expectHeader
}

// finish flushes a trailing header that had no content line
func (m *transcriptMachine) finish() []ChatLogRecord {
	if m.state == expectContent {
		m.pending.Content = ""
		m.emit()
	}
	return m.records
}
