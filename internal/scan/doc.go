// Package scan walks a media folder and builds the assets the matching core
// consumes: identity, size, kind, capture timestamp, pixel dimensions, and
// video duration.
//
// Metadata comes from the cheapest source that knows it: EXIF for image
// capture times, image headers for dimensions, and ffprobe for videos when
// the binary is installed. Anything unavailable is left absent. A file that
// cannot be read is skipped and reported through the observer; it never
// aborts the scan.
package scan
