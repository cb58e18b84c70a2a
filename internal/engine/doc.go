// Package engine selects the single best reference match for each subject.
//
// Compare evaluates strategies in strict priority order: an exact content
// hash lookup short-circuits everything; otherwise the subject's perceptual
// hash (computed lazily when enabled) is checked against nearby index
// buckets and the first definitive perceptual match wins. Failing that the
// candidate set is narrowed through the compound dimensions/day index, then
// the day index, then the whole corpus, and every applicable strategy runs
// against it keeping the highest confidence (ties keep the earliest
// candidate). Subjects with no opinion from any strategy get NoMatch.
//
// CompareAll runs Compare over a batch on a bounded worker pool. Each
// subject is owned by exactly one worker, lazy hashes are computed in a
// separate pass before matching begins, and results come back in input
// order.
package engine
