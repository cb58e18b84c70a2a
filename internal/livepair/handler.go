package livepair

import (
	"context"

	"photorestore/internal/asset"
	"photorestore/internal/engine"
)

// Matcher is the subset of the match engine the handler needs.
type Matcher interface {
	Compare(subject *asset.Asset) asset.Result
	CompareAll(ctx context.Context, subjects []*asset.Asset, progress engine.ProgressFunc) ([]asset.Result, error)
}

// Handler matches pair halves independently.
type Handler struct {
	matcher Matcher
}

// NewHandler wraps a matcher.
func NewHandler(m Matcher) *Handler {
	return &Handler{matcher: m}
}

// Compare matches both halves of a pair.
func (h *Handler) Compare(pair asset.LivePair) asset.PairResult {
	result := asset.PairResult{Pair: pair, Image: h.matcher.Compare(pair.Image)}
	if pair.Video != nil {
		video := h.matcher.Compare(pair.Video)
		result.Video = &video
	}
	return result
}

// CompareAll matches every half in one batch and reassembles pair results in
// pair order. On cancellation only pairs whose halves all completed are
// returned, together with the context error.
func (h *Handler) CompareAll(ctx context.Context, pairs []asset.LivePair, progress engine.ProgressFunc) ([]asset.PairResult, error) {
	subjects := make([]*asset.Asset, 0, len(pairs)*2)
	for _, p := range pairs {
		subjects = append(subjects, p.Image)
		if p.Video != nil {
			subjects = append(subjects, p.Video)
		}
	}
	results, err := h.matcher.CompareAll(ctx, subjects, progress)
	return Assemble(pairs, results), err
}

// Assemble builds pair results from per-asset results. Pairs with a half
// missing from results are omitted.
func Assemble(pairs []asset.LivePair, results []asset.Result) []asset.PairResult {
	bySubject := make(map[asset.ID]asset.Result, len(results))
	for _, r := range results {
		if r.Subject != nil {
			bySubject[r.Subject.ID] = r
		}
	}
	out := make([]asset.PairResult, 0, len(pairs))
	for _, p := range pairs {
		image, ok := bySubject[p.Image.ID]
		if !ok {
			continue
		}
		pr := asset.PairResult{Pair: p, Image: image}
		if p.Video != nil {
			video, ok := bySubject[p.Video.ID]
			if !ok {
				continue
			}
			pr.Video = &video
		}
		out = append(out, pr)
	}
	return out
}

// MissingComponents splits missing halves into images and videos.
func MissingComponents(results []asset.PairResult) (images, videos []asset.Result) {
	for _, r := range results {
		if r.Image.IsMissing() {
			images = append(images, r.Image)
		}
		if r.Video != nil && r.Video.IsMissing() {
			videos = append(videos, *r.Video)
		}
	}
	return images, videos
}

// Uncertain returns pairs that need manual review.
func Uncertain(results []asset.PairResult) []asset.PairResult {
	var out []asset.PairResult
	for _, r := range results {
		if r.NeedsReview() {
			out = append(out, r)
		}
	}
	return out
}
