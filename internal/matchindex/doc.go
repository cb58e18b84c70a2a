// Package matchindex builds the read-only lookup structures the match engine
// queries for each subject.
//
// An Index is constructed once from the reference corpus and never mutated
// afterwards, so it can be shared by concurrent matchers without locking.
// It holds four views of the corpus:
//
//   - an exact map from content hash to asset (last write wins on duplicates)
//   - a compound map keyed by dimensions and capture day
//   - a day map keyed by capture day
//   - perceptual buckets keyed by the leading 16 bits of the perceptual hash
//
// Every list-valued view preserves corpus order so tie-breaking downstream is
// deterministic. Perceptual candidate retrieval probes a fixed set of
// neighbouring buckets and is an approximation: it does not guarantee every
// hash within the uncertain threshold is returned.
package matchindex
