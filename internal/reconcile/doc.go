// Package reconcile drives one end-to-end reconciliation run.
//
// A Runner takes a loaded config and executes the phases in order: preflight
// checks, the output lock, scanning both corpora, hashing through the
// optional SQLite cache, building the reference index, comparing subjects,
// Live Photo pairing, staging copies, and writing the JSON report. Every
// phase reports through events.Observer; the runner fans events out to the
// structured logger, the report's processing log, and any caller observer.
//
// Per-file problems never abort a run. Setup failures (preflight, lock,
// cache open, index build) and cancellation do.
package reconcile
