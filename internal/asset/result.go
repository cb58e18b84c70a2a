package asset

import "math"

// Result is the outcome of comparing one subject asset against the reference corpus.
//
// Invariants: Kind == KindExact implies Confidence == 1 and Matched != nil;
// Kind == KindNoMatch implies Confidence == 0 and Matched == nil; every other
// kind carries a Matched asset. Build values with NewMatch or NoMatch.
type Result struct {
	Subject    *Asset
	Kind       Kind
	Matched    *Asset
	Confidence float64
	Reason     string
}

// NewMatch builds a result for a matched reference. Confidence is clamped to
// [0,1]; exact matches always carry 1.0. A nil reference degrades to NoMatch.
func NewMatch(subject *Asset, kind Kind, matched *Asset, confidence float64, reason string) Result {
	if matched == nil || kind == KindNoMatch {
		return NoMatch(subject, reason)
	}
	if kind == KindExact {
		confidence = 1.0
	}
	return Result{
		Subject:    subject,
		Kind:       kind,
		Matched:    matched,
		Confidence: ClampConfidence(confidence),
		Reason:     reason,
	}
}

// NoMatch builds a result for a subject with no equivalent in the corpus.
func NoMatch(subject *Asset, reason string) Result {
	if reason == "" {
		reason = "No match found in reference library"
	}
	return Result{Subject: subject, Kind: KindNoMatch, Reason: reason}
}

// IsMissing reports whether the subject has no equivalent in the corpus.
func (r Result) IsMissing() bool { return r.Kind == KindNoMatch }

// NeedsReview reports whether the match requires manual review.
func (r Result) NeedsReview() bool { return r.Kind == KindUncertain }

// Better reports whether r should replace current as the best candidate.
// Ties keep current, so the earlier candidate wins.
func (r Result) Better(current *Result) bool {
	if current == nil {
		return true
	}
	return r.Confidence > current.Confidence
}

// ClampConfidence limits value to the closed interval [0,1]. NaN maps to 0.
func ClampConfidence(value float64) float64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
