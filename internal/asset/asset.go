package asset

import (
	"path/filepath"
	"strings"
	"sync"
)

// ID is the opaque, path-like identity of an asset.
type ID string

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// Dimensions holds pixel width and height.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Asset describes one media item and, lazily, its computed identifiers.
//
// Optional fields use their zero value (empty string or nil pointer) to mean
// "not computed or unavailable". Absence is never an error.
type Asset struct {
	ID      ID
	Size    int64
	IsVideo bool

	ContentHash    string
	PerceptualHash string
	Timestamp      string
	Dimensions     *Dimensions
	Duration       *float64

	lazyOnce sync.Once
}

// New constructs an asset with the required identity attributes.
func New(id string, size int64, isVideo bool) *Asset {
	return &Asset{ID: ID(id), Size: size, IsVideo: isVideo}
}

// Equal reports whether two assets share the same identifier.
func (a *Asset) Equal(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.ID == other.ID
}

// Path returns the identifier as a filesystem path.
func (a *Asset) Path() string {
	if a == nil {
		return ""
	}
	return string(a.ID)
}

// Name returns the final path element of the identifier.
func (a *Asset) Name() string {
	return filepath.Base(a.Path())
}

// Ext returns the lowercase extension of the identifier, including the dot.
func (a *Asset) Ext() string {
	return strings.ToLower(filepath.Ext(a.Path()))
}

// HasContentHash reports whether a content hash has been computed.
func (a *Asset) HasContentHash() bool { return a != nil && a.ContentHash != "" }

// HasPerceptualHash reports whether a perceptual hash has been computed.
func (a *Asset) HasPerceptualHash() bool { return a != nil && a.PerceptualHash != "" }

// HasTimestamp reports whether a capture timestamp is known.
func (a *Asset) HasTimestamp() bool { return a != nil && strings.TrimSpace(a.Timestamp) != "" }

// WithDimensions sets pixel dimensions and returns the asset for chaining.
func (a *Asset) WithDimensions(width, height int) *Asset {
	a.Dimensions = &Dimensions{Width: width, Height: height}
	return a
}

// WithDuration sets the video duration in seconds and returns the asset.
func (a *Asset) WithDuration(seconds float64) *Asset {
	a.Duration = &seconds
	return a
}

// EnsurePerceptualHash computes and stores the perceptual hash on first call
// when the asset is an image whose hash is still absent. Later calls are
// no-ops even when the first computation produced nothing. It reports whether
// compute ran during this call.
//
// The memo cell is synchronized, but callers that mutate other fields while
// matching concurrently must still give each worker exclusive ownership.
func (a *Asset) EnsurePerceptualHash(compute func(path string) string) bool {
	if a == nil || a.IsVideo || compute == nil {
		return false
	}
	ran := false
	a.lazyOnce.Do(func() {
		if a.PerceptualHash != "" {
			return
		}
		ran = true
		a.PerceptualHash = compute(a.Path())
	})
	return ran
}
