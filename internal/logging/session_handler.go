package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID tags every record with the id of the photorestore process
// that wrote it.
const FieldSessionID = "session_id"

// runTagHandler stamps records with the process session id and with the
// reconciliation run id and pipeline phase stored on the record's context
// (see WithRunID and WithPhase), so one log file can be split per run.
type runTagHandler struct {
	next    slog.Handler
	session slog.Attr
}

func newSessionIDHandler(next slog.Handler, sessionID string) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &runTagHandler{next: next, session: slog.String(FieldSessionID, sessionID)}
}

func (h *runTagHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *runTagHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.session)
	if fields := ContextFields(ctx); len(fields) > 0 {
		record.AddAttrs(fields...)
	}
	return h.next.Handle(ctx, record)
}

func (h *runTagHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	return &clone
}

func (h *runTagHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}
