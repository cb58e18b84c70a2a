// Package logging assembles structured slog loggers and formatting helpers used
// across photorestore.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, tags every record with a per-process session id, and adapts the
// matching core's events into log lines through NewObserver. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
