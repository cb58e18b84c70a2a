package asset

// LivePair is an image plus an optional companion video sharing a base name.
type LivePair struct {
	Image *Asset
	Video *Asset
}

// Complete reports whether the video half is present. This is structural and
// independent of any matching outcome.
func (p LivePair) Complete() bool { return p.Video != nil }

// PairResult aggregates the per-half results of a LivePair.
type PairResult struct {
	Pair  LivePair
	Image Result
	Video *Result
}

// IsMissing reports whether either present half has no match.
func (r PairResult) IsMissing() bool {
	if r.Image.IsMissing() {
		return true
	}
	return r.Video != nil && r.Video.IsMissing()
}

// NeedsReview reports whether, while not missing, either half is uncertain.
func (r PairResult) NeedsReview() bool {
	if r.IsMissing() {
		return false
	}
	if r.Image.NeedsReview() {
		return true
	}
	return r.Video != nil && r.Video.NeedsReview()
}
