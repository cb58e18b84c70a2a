package strategy

import (
	"fmt"
	"math"
	"strings"

	"photorestore/internal/asset"
	"photorestore/internal/phash"
)

const hashBits = phash.Bits

// Metadata confidence tiers.
const (
	ConfidenceDimensionsAndSize = 0.85
	ConfidenceDimensionsOnly    = 0.70
	ConfidenceSizeOnly          = 0.65
	ConfidenceDateOnly          = 0.50
)

// Video confidence factors.
const (
	factorTimestamp        = 0.8
	factorDimensions       = 0.7
	factorDurationClose    = 0.9
	factorDurationTolerant = 0.6
	factorSize             = 0.6
)

// Exact matches equal, non-empty content hashes.
func Exact(subject, ref *asset.Asset) (asset.Result, bool) {
	if subject == nil || ref == nil {
		return asset.Result{}, false
	}
	if !subject.HasContentHash() || !ref.HasContentHash() {
		return asset.Result{}, false
	}
	if subject.ContentHash != ref.ContentHash {
		return asset.Result{}, false
	}
	return asset.NewMatch(subject, asset.KindExact, ref, 1.0, "Content hash match"), true
}

// Perceptual compares perceptual hashes of two images by Hamming distance.
func Perceptual(subject, ref *asset.Asset, policy Policy) (asset.Result, bool) {
	if subject == nil || ref == nil || subject.IsVideo || ref.IsVideo {
		return asset.Result{}, false
	}
	if !subject.HasPerceptualHash() || !ref.HasPerceptualHash() {
		return asset.Result{}, false
	}
	distance, err := phash.Distance(subject.PerceptualHash, ref.PerceptualHash)
	if err != nil {
		return asset.Result{}, false
	}
	return PerceptualFromDistance(subject, ref, distance, policy)
}

// PerceptualFromDistance applies the perceptual thresholds to a known distance.
func PerceptualFromDistance(subject, ref *asset.Asset, distance int, policy Policy) (asset.Result, bool) {
	match := policy.PerceptualMatchThreshold
	switch {
	case distance < 0:
		return asset.Result{}, false
	case distance <= match:
		confidence := 1 - float64(distance)/hashBits
		reason := fmt.Sprintf("Perceptual hash match (distance=%d)", distance)
		return asset.NewMatch(subject, asset.KindPerceptual, ref, confidence, reason), true
	case distance <= policy.PerceptualUncertainThreshold:
		confidence := 0.5 - float64(distance-match)/float64(hashBits-match)
		reason := fmt.Sprintf("Perceptual hash close match (distance=%d)", distance)
		return asset.NewMatch(subject, asset.KindUncertain, ref, confidence, reason), true
	default:
		return asset.Result{}, false
	}
}

// Metadata matches two images by capture time, dimensions and file size.
// Timestamps within tolerance are mandatory.
func Metadata(subject, ref *asset.Asset, policy Policy) (asset.Result, bool) {
	if subject == nil || ref == nil || subject.IsVideo || ref.IsVideo {
		return asset.Result{}, false
	}
	if !subject.HasTimestamp() || !ref.HasTimestamp() {
		return asset.Result{}, false
	}
	if !TimestampsWithin(subject.Timestamp, ref.Timestamp, policy.DateTolerance) {
		return asset.Result{}, false
	}

	dimsOK := DimensionsMatch(subject.Dimensions, ref.Dimensions, policy.DimensionTolerance)
	ratio := sizeRatio(subject.Size, ref.Size)
	sizeOK := math.Abs(ratio-1) <= policy.SizeTolerance

	var confidence float64
	var reason string
	switch {
	case dimsOK && sizeOK:
		confidence = ConfidenceDimensionsAndSize
		reason = "Metadata match (date, dimensions and size match)"
	case dimsOK:
		confidence = ConfidenceDimensionsOnly
		reason = fmt.Sprintf("Metadata match (date and dimensions match, size ratio=%.2f)", ratio)
	case sizeOK:
		confidence = ConfidenceSizeOnly
		reason = "Metadata match (date and size match)"
	default:
		confidence = ConfidenceDateOnly
		reason = "Weak metadata match (date only)"
	}
	return asset.NewMatch(subject, asset.KindMetadata, ref, confidence, reason), true
}

// Video matches two videos by timestamp, dimensions, duration and size.
// The result kind is Metadata.
func Video(subject, ref *asset.Asset, policy Policy) (asset.Result, bool) {
	if subject == nil || ref == nil || !subject.IsVideo || !ref.IsVideo {
		return asset.Result{}, false
	}
	if !subject.HasTimestamp() || !ref.HasTimestamp() {
		return asset.Result{}, false
	}
	if !TimestampsWithin(subject.Timestamp, ref.Timestamp, policy.DateTolerance) {
		return asset.Result{}, false
	}
	factors := []float64{factorTimestamp}
	reasons := []string{"date match"}

	if subject.Dimensions != nil && ref.Dimensions != nil {
		if !DimensionsMatch(subject.Dimensions, ref.Dimensions, policy.DimensionTolerance) {
			return asset.Result{}, false
		}
		factors = append(factors, factorDimensions)
		reasons = append(reasons, "dimensions match")
	}

	if subject.Duration != nil && ref.Duration != nil {
		diff := math.Abs(*subject.Duration - *ref.Duration)
		base := policy.DurationTolerance.Seconds()
		switch {
		case diff > base*policy.DurationRejectFactor:
			return asset.Result{}, false
		case diff <= base:
			factors = append(factors, factorDurationClose)
			reasons = append(reasons, "duration match")
		default:
			factors = append(factors, factorDurationTolerant)
			reasons = append(reasons, fmt.Sprintf("duration within %.1fs", diff))
		}
	}

	if subject.Size > 0 && ref.Size > 0 {
		ratio := sizeRatio(subject.Size, ref.Size)
		if ratio >= policy.VideoSizeMin && ratio <= policy.VideoSizeMax {
			factors = append(factors, factorSize)
			reasons = append(reasons, "size match")
		}
	}

	var sum float64
	for _, f := range factors {
		sum += f
	}
	confidence := sum / float64(len(factors))
	reason := "Video match (" + strings.Join(reasons, ", ") + ")"
	return asset.NewMatch(subject, asset.KindMetadata, ref, confidence, reason), true
}

func sizeRatio(subject, ref int64) float64 {
	if ref <= 0 {
		return 0
	}
	return float64(subject) / float64(ref)
}
