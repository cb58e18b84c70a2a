package report

import (
	"fmt"
	"sync"
	"time"

	"photorestore/internal/events"
)

// Log levels used in the processing log.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// LogEntry is one processing log line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Log collects processing log entries and counts infrastructure errors. It
// implements events.Observer and is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []LogEntry
	errors  int
	now     func() time.Time
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

var _ events.Observer = (*Log)(nil)

func (l *Log) add(level, msg string, countError bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Timestamp: l.now(), Level: level, Message: msg})
	if countError {
		l.errors++
	}
}

// Infof appends an info entry.
func (l *Log) Infof(format string, args ...any) { l.add(LevelInfo, fmt.Sprintf(format, args...), false) }

// Warnf appends a warning entry.
func (l *Log) Warnf(format string, args ...any) { l.add(LevelWarn, fmt.Sprintf(format, args...), false) }

// Errorf appends an error entry and counts it.
func (l *Log) Errorf(format string, args ...any) { l.add(LevelError, fmt.Sprintf(format, args...), true) }

// Entries returns a copy of the collected entries.
func (l *Log) Entries() []LogEntry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Errors returns the number of counted infrastructure errors.
func (l *Log) Errors() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errors
}

// Observe records the events worth keeping in the report. Progress and
// per-subject match events are dropped.
func (l *Log) Observe(e events.Event) {
	switch e.Type {
	case events.PhaseCompleted:
		l.Infof("%s: %d/%d in %s", e.Phase, e.Completed, e.Total, e.Elapsed.Round(time.Millisecond))
	case events.IndexBuilt:
		l.Infof("reference index built: %d assets", e.Total)
	case events.HashFailed:
		if kind, _ := e.Fields["hash"].(string); kind == "perceptual" {
			return
		}
		l.Errorf("hash failed: %s: %v", e.Path, e.Err)
	case events.HashTimedOut:
		l.Errorf("hash timed out after %s: %s", e.Elapsed, e.Path)
	case events.FileSkipped:
		l.Errorf("skipped %s: %v", e.Path, e.Err)
	case events.StageFailed:
		l.Errorf("copy failed: %s: %v", e.Path, e.Err)
	}
}
