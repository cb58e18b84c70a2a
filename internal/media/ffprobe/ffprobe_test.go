package ffprobe

import (
	"context"
	"errors"
	"math"
	"testing"
)

const iphoneProbe = `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac", "duration": "2.9"},
    {"index": 1, "codec_type": "video", "codec_name": "hevc", "width": 1920, "height": 1440,
     "duration": "2.966667", "tags": {"creation_time": "2021-06-01T10:00:00.000000Z"}}
  ],
  "format": {
    "duration": "3.000000",
    "size": "4150000",
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "tags": {"com.apple.quicktime.creationdate": "2021-06-01T12:00:00+0200"}
  }
}`

func TestParseVideo(t *testing.T) {
	result, err := Parse([]byte(iphoneProbe))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	info := result.Video()
	if info.Width != 1920 || info.Height != 1440 {
		t.Fatalf("dimensions = %dx%d", info.Width, info.Height)
	}
	if math.Abs(info.Duration-2.966667) > 1e-9 {
		t.Fatalf("duration = %v", info.Duration)
	}
	if info.CreationTime != "2021-06-01T12:00:00+0200" {
		t.Fatalf("creation time = %q", info.CreationTime)
	}
	if !info.HasDimensions() || !info.HasDuration() {
		t.Fatal("expected dimensions and duration")
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("video streams = %d", result.VideoStreamCount())
	}
	if result.SizeBytes() != 4150000 {
		t.Fatalf("size = %d", result.SizeBytes())
	}
}

func TestVideoFallsBackToContainer(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", Duration: "N/A"}},
		Format:  Format{Duration: "5.5", Tags: map[string]string{"creation_time": "2020-01-01T00:00:00Z"}},
	}
	info := result.Video()
	if info.Duration != 5.5 {
		t.Fatalf("duration = %v", info.Duration)
	}
	if info.CreationTime != "2020-01-01T00:00:00Z" {
		t.Fatalf("creation time = %q", info.CreationTime)
	}
	if info.HasDimensions() {
		t.Fatal("dimensions should be unknown")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.Video().Duration != 0 {
		t.Fatal("invalid duration should be unknown")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestInspectMissingBinary(t *testing.T) {
	_, err := Inspect(context.Background(), "definitely-not-ffprobe-xyz", "/tmp/a.mov")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if Available("definitely-not-ffprobe-xyz") {
		t.Fatal("Available should be false")
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
