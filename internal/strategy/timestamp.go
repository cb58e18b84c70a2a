package strategy

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses ISO-8601 variants and the EXIF date layout.
// Timestamps without a zone are interpreted as UTC so two naive values
// compare consistently.
func ParseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// TimestampsWithin reports whether both timestamps parse and differ by at
// most tolerance.
func TimestampsWithin(a, b string, tolerance time.Duration) bool {
	ta, ok := ParseTimestamp(a)
	if !ok {
		return false
	}
	tb, ok := ParseTimestamp(b)
	if !ok {
		return false
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
