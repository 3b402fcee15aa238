package internal

import (
	"time"
)

// CreateTestChatLogs creates n chat log records one minute apart, starting
// at 2024-01-01T10:00:00Z
func CreateTestChatLogs(n int) []ChatLogRecord {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	records := make([]ChatLogRecord, 0, n)
	senders := []struct{ name, id string }{{"Alice", "u1"}, {"Bob", "u2"}}
	for i := 0; i < n; i++ {
		at := start.Add(time.Duration(i) * time.Minute)
		s := senders[i%len(senders)]
		records = append(records, ChatLogRecord{
			SenderName: s.name,
			SenderID:   s.id,
			Time:       at.Format(time.RFC3339),
			Content:    "message " + string(rune('A'+i%26)),
			Timestamp:  float64(at.UnixMilli()),
		})
	}
	return records
}

// CreateTestTable creates a chat log table of n records
func CreateTestTable(n int) *Table {
	return ChatLogTable(CreateTestChatLogs(n))
}

// CreateTestSource creates a source with sample fields
func CreateTestSource(id string) Source {
	return Source{
		SourceID:    id,
		Name:        "Test " + id,
		Description: "test source",
		Status:      "online",
	}
}
