package scan

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"strings"
	"time"

	// Registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"

	"photorestore/internal/asset"
	"photorestore/internal/media/ffprobe"
)

// naiveLayout renders local wall-clock times without a zone, matching how
// cameras record EXIF DateTimeOriginal.
const naiveLayout = "2006-01-02T15:04:05"

// ExifTimestamp returns the raw EXIF capture time of path, preferring
// DateTimeOriginal over DateTime. The value keeps the EXIF layout
// ("2006:01:02 15:04:05"). HEIC and HEIF files are read through their Exif
// item.
func ExifTimestamp(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var src io.Reader = f
	if isHEIFPath(path) {
		info, err := f.Stat()
		if err != nil {
			return "", err
		}
		payload, err := heifExif(f, info.Size())
		if err != nil {
			return "", err
		}
		src = bytes.NewReader(payload)
	}

	x, err := exif.Decode(src)
	if err != nil {
		return "", err
	}
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			continue
		}
		value = strings.TrimRight(strings.TrimSpace(value), "\x00")
		if value != "" && !strings.HasPrefix(value, "0000") {
			return value, nil
		}
	}
	return "", errors.New("no exif capture time")
}

// MtimeTimestamp renders a modification time as a naive local timestamp.
func MtimeTimestamp(mtime time.Time) string {
	return mtime.In(time.Local).Format(naiveLayout)
}

// ImageDimensions reads pixel dimensions from the image header without
// decoding pixels.
func ImageDimensions(path string) (*asset.Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("image reports empty dimensions")
	}
	return &asset.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// Prober extracts video metadata. The ffprobe-backed default is used when
// Options.Prober is nil.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.VideoInfo, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) (ffprobe.VideoInfo, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, path string) (ffprobe.VideoInfo, error) {
	return f(ctx, path)
}

// FFprobe returns a Prober that shells out to binary.
func FFprobe(binary string) Prober {
	return ProberFunc(func(ctx context.Context, path string) (ffprobe.VideoInfo, error) {
		return ffprobe.Probe(ctx, binary, path)
	})
}
