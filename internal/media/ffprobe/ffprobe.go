package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNotFound reports that the ffprobe executable is not on PATH.
var ErrNotFound = errors.New("ffprobe not found")

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Duration  string            `json:"duration"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Tags      map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// VideoInfo is the subset of probe output used for video matching. Zero
// values mean unknown.
type VideoInfo struct {
	Width        int
	Height       int
	Duration     float64
	CreationTime string
}

// HasDimensions reports whether both width and height are known.
func (v VideoInfo) HasDimensions() bool { return v.Width > 0 && v.Height > 0 }

// HasDuration reports whether a positive duration is known.
func (v VideoInfo) HasDuration() bool { return v.Duration > 0 }

// Available reports whether binary can be resolved on PATH.
func Available(binary string) bool {
	_, err := exec.LookPath(binaryOrDefault(binary))
	return err == nil
}

func binaryOrDefault(binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "ffprobe"
	}
	return binary
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = binaryOrDefault(binary)
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, binary)
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w", path, err)
	}
	return Parse(output)
}

// Parse decodes ffprobe JSON output.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Probe runs Inspect and reduces the result to VideoInfo.
func Probe(ctx context.Context, binary, path string) (VideoInfo, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return VideoInfo{}, err
	}
	return result.Video(), nil
}

// Video extracts matching metadata from the first video stream, falling back
// to container values for duration and creation time.
func (r Result) Video() VideoInfo {
	var info VideoInfo
	var stream *Stream
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, "video") {
			stream = &r.Streams[i]
			break
		}
	}
	if stream != nil {
		info.Width = max(stream.Width, 0)
		info.Height = max(stream.Height, 0)
		info.Duration = validFloat(parseFloat(stream.Duration))
		info.CreationTime = strings.TrimSpace(stream.Tags["creation_time"])
	}
	if info.Duration <= 0 {
		info.Duration = validFloat(r.DurationSeconds())
	}
	if info.CreationTime == "" {
		info.CreationTime = strings.TrimSpace(r.Format.Tags["creation_time"])
	}
	if apple := strings.TrimSpace(r.Format.Tags["com.apple.quicktime.creationdate"]); apple != "" {
		info.CreationTime = apple
	}
	return info
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

func validFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
