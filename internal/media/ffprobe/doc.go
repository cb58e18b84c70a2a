// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - VideoInfo: the duration, dimensions, and capture time used for matching
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Parse: decodes previously captured ffprobe JSON
//
// A missing ffprobe binary is reported as ErrNotFound so callers can degrade
// to size-and-timestamp matching for videos.
package ffprobe
