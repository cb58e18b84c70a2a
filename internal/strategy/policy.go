package strategy

import "time"

// Policy collects matching thresholds and tolerances.
type Policy struct {
	PerceptualMatchThreshold     int
	PerceptualUncertainThreshold int
	DateTolerance                time.Duration
	SizeTolerance                float64
	DimensionTolerance           float64
	DurationTolerance            time.Duration
	DurationRejectFactor         float64
	VideoSizeMin                 float64
	VideoSizeMax                 float64
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		PerceptualMatchThreshold:     5,
		PerceptualUncertainThreshold: 10,
		DateTolerance:                300 * time.Second,
		SizeTolerance:                0.15,
		DimensionTolerance:           0.02,
		DurationTolerance:            time.Second,
		DurationRejectFactor:         3,
		VideoSizeMin:                 0.9,
		VideoSizeMax:                 1.1,
	}
}

// Normalized fills zero or out-of-range fields with defaults.
func (p Policy) Normalized() Policy {
	def := DefaultPolicy()
	if p.PerceptualMatchThreshold <= 0 || p.PerceptualMatchThreshold >= 64 {
		p.PerceptualMatchThreshold = def.PerceptualMatchThreshold
	}
	if p.PerceptualUncertainThreshold < p.PerceptualMatchThreshold {
		p.PerceptualUncertainThreshold = p.PerceptualMatchThreshold
		if def.PerceptualUncertainThreshold > p.PerceptualUncertainThreshold {
			p.PerceptualUncertainThreshold = def.PerceptualUncertainThreshold
		}
	}
	if p.PerceptualUncertainThreshold > 64 {
		p.PerceptualUncertainThreshold = 64
	}
	if p.DateTolerance <= 0 {
		p.DateTolerance = def.DateTolerance
	}
	if p.SizeTolerance <= 0 || p.SizeTolerance >= 1 {
		p.SizeTolerance = def.SizeTolerance
	}
	if p.DimensionTolerance <= 0 || p.DimensionTolerance >= 1 {
		p.DimensionTolerance = def.DimensionTolerance
	}
	if p.DurationTolerance <= 0 {
		p.DurationTolerance = def.DurationTolerance
	}
	if p.DurationRejectFactor < 1 {
		p.DurationRejectFactor = def.DurationRejectFactor
	}
	if p.VideoSizeMin <= 0 || p.VideoSizeMax <= 0 || p.VideoSizeMin > p.VideoSizeMax {
		p.VideoSizeMin = def.VideoSizeMin
		p.VideoSizeMax = def.VideoSizeMax
	}
	return p
}
