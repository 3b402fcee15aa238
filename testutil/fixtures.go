package testutil

import (
	"encoding/json"
	"testing"
)

// Plaintext payloads as the chatlog service serves them
const (
	TranscriptFixture = "Alice(u1) 2024-01-01T10:00:00\nhello\nBob(u2) 2024-01-01T10:01:00\nhi there"

	SessionListFixture = "Team Alpha(g123) 2024-01-01 10:00\n\nbad line\nOps(g456) 2024-01-02"

	CSVFixture = "senderName,senderId,time,content\n" +
		"Alice,u1,2024-01-01 10:00:00,hello\n" +
		"Bob,u2,2024-01-01 10:01:00,hi there"
)

// SourcesFixture is two accounts as /api/admin/accounts lists them
var SourcesFixture = []map[string]any{
	{"source_id": "src-1", "name": "Personal", "status": "online", "platform": "wechat"},
	{"source_id": "src-2", "name": "Work", "status": "offline"},
}

// ChatLogsFixture is two messages as the structured chat log endpoint
// returns them
var ChatLogsFixture = []map[string]any{
	{"senderName": "Alice", "senderId": "u1", "time": "2024-01-01T10:00:00Z", "content": "hello"},
	{"senderName": "Bob", "senderId": "u2", "time": "2024-01-01T10:01:00Z", "content": "hi there"},
}

// ContactsFixture is one page of contacts
var ContactsFixture = []map[string]any{
	{"userName": "u1", "nickName": "Alice", "remark": "A"},
	{"userName": "u2", "nickName": "Bob"},
}

// ArrayEnvelope wraps items as {success:true, data:[...]}
func ArrayEnvelope(t *testing.T, items any) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]any{"success": true, "data": items})
}

// MetaEnvelope wraps items as {success:true, data:[...], meta:{total}}
func MetaEnvelope(t *testing.T, items any, total int) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]any{
		"success": true,
		"data":    items,
		"meta":    map[string]any{"total": total},
	})
}

// PagedEnvelope wraps items as {success:true, data:{items, total, pagination}}
func PagedEnvelope(t *testing.T, items any, total, page, pageSize int) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]any{
		"success": true,
		"data": map[string]any{
			"items": items,
			"total": total,
			"pagination": map[string]any{
				"page":     page,
				"pageSize": pageSize,
			},
		},
	})
}

// FailureEnvelope is {success:false, message}
func FailureEnvelope(t *testing.T, message string) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]any{"success": false, "message": message})
}

// StringBody encodes s as a JSON string body
func StringBody(t *testing.T, s string) []byte {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}
