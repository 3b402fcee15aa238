package cmd

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/iksnae/chatlog-viewer/testutil"
)

func newSourcesUpstream(t *testing.T) *testutil.Upstream {
	t.Helper()
	u := testutil.NewUpstream(t)
	u.Handle("/api/admin/accounts", testutil.JSONReply(testutil.ArrayEnvelope(t, testutil.SourcesFixture)))
	return u
}

// selectSource runs `sources use id` so later commands find it in stateDir
func selectSource(t *testing.T, u *testutil.Upstream, stateDir, id string) {
	t.Helper()
	if _, err := run(t, nil, upstreamArgs(u, stateDir, "sources", "use", id)...); err != nil {
		t.Fatalf("sources use %s: %v", id, err)
	}
}

func TestMediaCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"image", []string{"media", "image", "abc123"}, "http://media.local/image/abc123", false},
		{"kind is case insensitive", []string{"media", "VIDEO", "v1"}, "http://media.local/video/v1", false},
		{"unknown kind", []string{"media", "audio", "x"}, "", true},
		{"missing id", []string{"media", "image"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("CHATLOG_MEDIA_BASE", "http://media.local")

			out, err := run(t, nil, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("media error = %v, wantErr %v", err, tt.wantErr)
			}
			if strings.TrimSpace(out) != tt.want {
				t.Errorf("media output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	csvPath := testutil.WriteFile(t, dir, "log.csv", []byte(testutil.CSVFixture))

	t.Run("csv to json", func(t *testing.T) {
		out, err := run(t, nil, "parse", "csv", csvPath, "--format", "json")
		if err != nil {
			t.Fatalf("parse error = %v", err)
		}
		var rows []map[string]string
		testutil.JSONUnmarshal(t, []byte(out), &rows)
		if len(rows) != 2 || rows[1]["senderName"] != "Bob" || rows[1]["content"] != "hi there" {
			t.Errorf("rows = %v", rows)
		}
	})

	t.Run("transcript from stdin", func(t *testing.T) {
		out, err := run(t, strings.NewReader(testutil.TranscriptFixture), "parse", "transcript", "-", "-f", "jsonl")
		if err != nil {
			t.Fatalf("parse error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("lines = %d, want 2:\n%s", len(lines), out)
		}
		var first map[string]string
		testutil.JSONUnmarshal(t, []byte(lines[0]), &first)
		if first["senderId"] != "u1" || first["content"] != "hello" {
			t.Errorf("first = %v", first)
		}
	})

	t.Run("sessions as table", func(t *testing.T) {
		out, err := run(t, strings.NewReader(testutil.SessionListFixture), "parse", "sessions", "-")
		if err != nil {
			t.Fatalf("parse error = %v", err)
		}
		for _, want := range []string{"2 row(s)", "Team Alpha", "g456"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := run(t, nil, "parse", "xml", csvPath); err == nil {
			t.Error("parse xml should fail")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := run(t, nil, "parse", "csv", csvPath, "-f", "xml"); err == nil {
			t.Error("parse --format xml should fail")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := run(t, nil, "parse", "csv", filepath.Join(dir, "nope.csv")); err == nil {
			t.Error("parse of a missing file should fail")
		}
	})
}

func TestSourcesCommands(t *testing.T) {
	isolate(t)
	u := newSourcesUpstream(t)
	stateDir := t.TempDir()

	out, err := run(t, nil, upstreamArgs(u, stateDir, "sources", "--json")...)
	if err != nil {
		t.Fatalf("sources error = %v", err)
	}
	var sources []map[string]any
	testutil.JSONUnmarshal(t, []byte(out), &sources)
	if len(sources) != 2 || sources[0]["source_id"] != "src-1" || sources[0]["platform"] != "wechat" {
		t.Errorf("sources = %v", sources)
	}

	out, err = run(t, nil, upstreamArgs(u, stateDir, "sources", "use", "src-2")...)
	if err != nil {
		t.Fatalf("sources use error = %v", err)
	}
	if !strings.Contains(out, "Using source Work") {
		t.Errorf("sources use output = %q", out)
	}

	out, err = run(t, nil, upstreamArgs(u, stateDir, "sources")...)
	if err != nil {
		t.Fatalf("sources error = %v", err)
	}
	if !strings.Contains(out, "2 source(s)") || !strings.Contains(out, "Work") {
		t.Errorf("sources output = %q", out)
	}

	if _, err := run(t, nil, upstreamArgs(u, stateDir, "sources", "use", "missing")...); err == nil {
		t.Error("sources use of an unknown id should fail")
	}

	if _, err := run(t, nil, upstreamArgs(u, stateDir, "sources", "clear")...); err != nil {
		t.Fatalf("sources clear error = %v", err)
	}
	_, err = run(t, nil, upstreamArgs(u, stateDir, "sessions")...)
	if !errors.Is(err, internal.ErrNoSourceSelected) {
		t.Errorf("sessions after clear error = %v, want ErrNoSourceSelected", err)
	}
}

func TestSourcesTestCommand(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"reachable", `{"success":true,"message":"3 sessions"}`, "Source is reachable", false},
		{"failed", `{"success":false,"message":"key expired"}`, "key expired", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			u := newSourcesUpstream(t)
			u.Handle("/api/v1/chatlog/test", testutil.JSONReply([]byte(tt.body)))
			stateDir := t.TempDir()
			selectSource(t, u, stateDir, "src-1")

			out, err := run(t, nil, upstreamArgs(u, stateDir, "sources", "test")...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sources test error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
			last := u.Requests()[u.RequestCount()-1]
			if last.Query().Get("source") != "src-1" {
				t.Errorf("tested source = %q, want src-1", last.Query().Get("source"))
			}
		})
	}
}

func TestSessionsAndContactsCommands(t *testing.T) {
	isolate(t)
	u := newSourcesUpstream(t)
	u.Handle("/api/v1/session", testutil.TextReply(testutil.SessionListFixture))
	u.Handle("/api/v1/contact", testutil.JSONReply(testutil.PagedEnvelope(t, testutil.ContactsFixture, 2, 1, 20)))
	stateDir := t.TempDir()
	selectSource(t, u, stateDir, "src-1")

	out, err := run(t, nil, upstreamArgs(u, stateDir, "sessions")...)
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	for _, want := range []string{"2 session(s)", "Team Alpha", "g123", "Ops"} {
		if !strings.Contains(out, want) {
			t.Errorf("sessions output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, nil, upstreamArgs(u, stateDir, "contacts", "--page-size", "5")...)
	if err != nil {
		t.Fatalf("contacts error = %v", err)
	}
	for _, want := range []string{"2 of 2 contact(s)", "Alice", "Page 1 of 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("contacts output missing %q:\n%s", want, out)
		}
	}
	last := u.Requests()[u.RequestCount()-1]
	if last.Query().Get("pageSize") != "5" || last.Query().Get("page") != "1" {
		t.Errorf("contacts query = %s", last.RawQuery)
	}
}

func TestChatlogCommand(t *testing.T) {
	isolate(t)
	u := newSourcesUpstream(t)
	u.Handle("/api/v1/chatlog", testutil.JSONReply(testutil.MetaEnvelope(t, testutil.ChatLogsFixture, 12)))
	u.Handle("/api/v1/chatlog?format=text", testutil.TextReply(testutil.TranscriptFixture))
	stateDir := t.TempDir()
	selectSource(t, u, stateDir, "src-1")

	t.Run("paged json", func(t *testing.T) {
		out, err := run(t, nil, upstreamArgs(u, stateDir, "chatlog", "--talker", "g123", "--page", "2", "--page-size", "5", "--json")...)
		if err != nil {
			t.Fatalf("chatlog error = %v", err)
		}
		var records []map[string]any
		testutil.JSONUnmarshal(t, []byte(out), &records)
		if len(records) != 2 || records[0]["senderName"] != "Alice" {
			t.Errorf("records = %v", records)
		}

		q := u.Requests()[u.RequestCount()-1].Query()
		if q.Get("talker") != "g123" || q.Get("limit") != "5" || q.Get("offset") != "5" || q.Get("source") != "src-1" {
			t.Errorf("chatlog query = %v", q)
		}
	})

	t.Run("display", func(t *testing.T) {
		out, err := run(t, nil, upstreamArgs(u, stateDir, "chatlog", "--page-size", "5")...)
		if err != nil {
			t.Fatalf("chatlog error = %v", err)
		}
		for _, want := range []string{"2 message(s)", "hi there", "Page 1 of 3"} {
			if !strings.Contains(out, want) {
				t.Errorf("chatlog output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("raw transcript", func(t *testing.T) {
		out, err := run(t, nil, upstreamArgs(u, stateDir, "chatlog", "--raw", "--json")...)
		if err != nil {
			t.Fatalf("chatlog --raw error = %v", err)
		}
		var records []map[string]any
		testutil.JSONUnmarshal(t, []byte(out), &records)
		if len(records) != 2 || records[1]["senderId"] != "u2" || records[1]["content"] != "hi there" {
			t.Errorf("records = %v", records)
		}
	})
}

func TestExportCommand(t *testing.T) {
	isolate(t)
	u := newSourcesUpstream(t)
	u.Handle("/api/v1/chatlog?format=csv", testutil.TextReply(testutil.CSVFixture))
	u.Handle("/api/v1/chatlog?format=text", testutil.TextReply(testutil.TranscriptFixture))
	u.Handle("/api/v1/chatlog", testutil.JSONReply(testutil.MetaEnvelope(t, testutil.ChatLogsFixture, 2)))
	u.Handle("/api/v1/session", testutil.TextReply(testutil.SessionListFixture))
	stateDir := t.TempDir()
	selectSource(t, u, stateDir, "src-1")

	countLines := func(t *testing.T, out string) int {
		t.Helper()
		n := 0
		scanner := bufio.NewScanner(strings.NewReader(out))
		for scanner.Scan() {
			var row map[string]string
			testutil.JSONUnmarshal(t, scanner.Bytes(), &row)
			n++
		}
		return n
	}

	tests := []struct {
		name      string
		args      []string
		wantLines int
	}{
		{"csv export", []string{"export"}, 2},
		{"structured", []string{"export", "--from", "json"}, 2},
		{"transcript", []string{"export", "--from", "text"}, 2},
		{"sessions", []string{"export", "--sessions"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, nil, upstreamArgs(u, stateDir, tt.args...)...)
			if err != nil {
				t.Fatalf("export error = %v", err)
			}
			if got := countLines(t, out); got != tt.wantLines {
				t.Errorf("lines = %d, want %d:\n%s", got, tt.wantLines, out)
			}
		})
	}

	t.Run("markdown to directory", func(t *testing.T) {
		outDir := t.TempDir()
		if _, err := run(t, nil, upstreamArgs(u, stateDir, "export", "-f", "md", "--talker", "g123", "-o", outDir)...); err != nil {
			t.Fatalf("export error = %v", err)
		}
		data, err := os.ReadFile(filepath.Join(outDir, "chatlog_g123.md"))
		if err != nil {
			t.Fatalf("export file: %v", err)
		}
		if !strings.Contains(string(data), "**Rows:** 2") {
			t.Errorf("markdown = %s", data)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		if _, err := run(t, nil, upstreamArgs(u, stateDir, "export", "-f", "xml")...); err == nil {
			t.Error("export -f xml should fail")
		}
	})

	t.Run("unsupported representation", func(t *testing.T) {
		if _, err := run(t, nil, upstreamArgs(u, stateDir, "export", "--from", "xml")...); err == nil {
			t.Error("export --from xml should fail")
		}
	})
}

func TestHealthcheckCommand(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		isolate(t)
		u := newSourcesUpstream(t)
		u.Handle("/api/v1/chatlog/test", testutil.JSONReply([]byte(`{"success":true}`)))
		stateDir := t.TempDir()
		selectSource(t, u, stateDir, "src-1")

		out, err := run(t, nil, upstreamArgs(u, stateDir, "healthcheck")...)
		if err != nil {
			t.Fatalf("healthcheck error = %v\n%s", err, out)
		}
		if !strings.Contains(out, "chatlog-viewer is ready") {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("no source selected", func(t *testing.T) {
		isolate(t)
		u := newSourcesUpstream(t)

		out, err := run(t, nil, upstreamArgs(u, t.TempDir(), "healthcheck")...)
		if err != nil {
			t.Fatalf("healthcheck error = %v", err)
		}
		if !strings.Contains(out, "No source selected") {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("service down", func(t *testing.T) {
		isolate(t)
		u := testutil.NewUpstream(t)
		u.Handle("/api/admin/accounts", testutil.Reply{Status: 500, Body: []byte("boom")})

		if _, err := run(t, nil, upstreamArgs(u, t.TempDir(), "healthcheck")...); err == nil {
			t.Error("healthcheck should fail when the service errors")
		}
	})
}
