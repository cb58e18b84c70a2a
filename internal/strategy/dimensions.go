package strategy

import "photorestore/internal/asset"

// Ratio returns min(a,b)/max(a,b), or 0 when both are zero.
func Ratio(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi == 0 {
		return 0
	}
	return lo / hi
}

// DimensionsMatch compares two dimension pairs in normal and rotated
// orientation. A nil side never matches.
func DimensionsMatch(a, b *asset.Dimensions, tolerance float64) bool {
	if a == nil || b == nil {
		return false
	}
	floor := 1 - tolerance
	aw, ah := float64(a.Width), float64(a.Height)
	bw, bh := float64(b.Width), float64(b.Height)
	if Ratio(aw, bw) >= floor && Ratio(ah, bh) >= floor {
		return true
	}
	return Ratio(aw, bh) >= floor && Ratio(ah, bw) >= floor
}
