package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionIDHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "session-123"))
	logger.Info("hello")

	if !strings.Contains(buf.String(), `"session_id":"session-123"`) {
		t.Fatalf("expected session_id in output, got: %s", buf.String())
	}
}

func TestSessionIDHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "session-abc")).With("extra", "value")
	logger.Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"session_id":"session-abc"`) || !strings.Contains(out, `"extra":"value"`) {
		t.Fatalf("missing attrs in output: %s", out)
	}
}

func TestSessionIDHandlerContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "s"))
	ctx := WithPhase(WithRunID(context.Background(), "run-7"), "compare")
	logger.InfoContext(ctx, "hello")

	out := buf.String()
	if !strings.Contains(out, `"run_id":"run-7"`) || !strings.Contains(out, `"phase":"compare"`) {
		t.Fatalf("expected context fields in output: %s", out)
	}
}

func TestSessionIDHandlerNilBase(t *testing.T) {
	if _, ok := newSessionIDHandler(nil, "s").(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when base is nil")
	}
}
