// Package asset defines the shared data shapes exchanged by every photorestore
// component: the media Asset, the closed match Kind, per-subject Results, and
// the Live Photo pair types.
//
// Assets are created by enumeration (internal/scan or an external caller) and
// mutated only by the hash computer (bulk) or by the match engine's lazy
// perceptual-hash step, which is memoized per asset. Equality is identity:
// two assets are equal iff their IDs are equal.
//
// Result and PairResult constructors enforce the kind/confidence invariants so
// downstream consumers (report, staging, CLI) can switch on Kind without
// re-validating payloads.
package asset
