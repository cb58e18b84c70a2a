package logging

import "sync"

// ProgressSampler throttles the progress updates of one phase to percentage
// buckets. The first update and the completing update always pass; repeats
// of the completing update do not. It is safe for concurrent use.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize float64
	lastBucket int
	finished   bool
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 5).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether the update completed/total should be logged.
func (s *ProgressSampler) ShouldLog(completed, total int) bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if completed >= total {
		if s.finished {
			return false
		}
		s.finished = true
		return true
	}
	bucket := int(Percent(completed, total) / s.bucketSize)
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}

// Reset clears the sampler state when a phase restarts.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBucket = -1
	s.finished = false
}

// Percent converts completed/total into a percentage; an empty batch is 100%.
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(completed) * 100 / float64(total)
}
