package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"photorestore/internal/events"
)

func newTestObserver(level slog.Level) (*Observer, *bytes.Buffer) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	return NewObserver(slog.New(newJSONHandler(&buf, lvl, false))), &buf
}

func TestObserverHashFailedWarns(t *testing.T) {
	o, buf := newTestObserver(slog.LevelInfo)
	o.Observe(events.Event{Type: events.HashFailed, Path: "/x/a.jpg", Err: errors.New("boom")})

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"event_type":"hash_failed"`, `"path":"/x/a.jpg"`, `"error":"boom"`, `"impact"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestObserverPerceptualFailureIsDebug(t *testing.T) {
	o, buf := newTestObserver(slog.LevelInfo)
	o.Observe(events.Event{Type: events.HashFailed, Path: "/x/a.heic", Fields: map[string]any{"hash": "perceptual"}})
	if buf.Len() != 0 {
		t.Fatalf("expected nothing at info level, got %s", buf.String())
	}
}

func TestObserverSamplesProgress(t *testing.T) {
	o, buf := newTestObserver(slog.LevelInfo)
	o.Observe(events.Event{Type: events.PhaseStarted, Phase: "compare", Total: 100})
	for i := 1; i <= 100; i++ {
		o.Observe(events.Event{Type: events.Progress, Phase: "compare", Completed: i, Total: 100})
	}
	lines := strings.Count(buf.String(), `"msg":"progress"`)
	if lines < 10 || lines > 11 {
		t.Fatalf("progress lines = %d, want about 10", lines)
	}
}

func TestObserverEmptyBatchProgress(t *testing.T) {
	o, buf := newTestObserver(slog.LevelInfo)
	o.Observe(events.Event{Type: events.Progress, Phase: "hash_subject"})
	if !strings.Contains(buf.String(), `"progress_percent":100`) {
		t.Fatalf("expected 100%% for empty batch, got %s", buf.String())
	}
}

func TestObserverMatchedDecision(t *testing.T) {
	o, buf := newTestObserver(slog.LevelDebug)
	o.Observe(events.Event{Type: events.Matched, Path: "/s/a.jpg", Fields: map[string]any{"kind": "exact", "reason": "content hash"}})
	out := buf.String()
	if !strings.Contains(out, `"decision_result":"exact"`) || !strings.Contains(out, `"decision_reason":"content hash"`) {
		t.Fatalf("decision attrs missing: %s", out)
	}
}

func TestObserverNilLogger(t *testing.T) {
	NewObserver(nil).Observe(events.Event{Type: events.StageFailed})
}
