package internal

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseTimestamp parses s as a calendar date-time and returns epoch
// milliseconds. Strings without a zone are read in loc. It returns NaN when
// s is not a recognizable date.
func ParseTimestamp(s string, loc *time.Location) (ms float64) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	if loc == nil {
		loc = time.Local
	}
	// dateparse has panicked on pathological input in the past; the parsers
	// must stay total.
	defer func() {
		if recover() != nil {
			ms = math.NaN()
		}
	}()
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return math.NaN()
	}
	return float64(t.UnixMilli())
}

// SortChatLogs orders records by timestamp, oldest first. Records without a
// timestamp go last and keep their relative order.
func SortChatLogs(records []ChatLogRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case !a.HasTimestamp():
			return false
		case !b.HasTimestamp():
			return true
		default:
			return a.Timestamp < b.Timestamp
		}
	})
}
