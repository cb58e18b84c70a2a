package testsupport

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	WriteFileByte(t, path, size, 0x42)
}

// WriteFileByte is WriteFile with a caller-chosen fill byte, so two files of
// equal size can differ in content.
func WriteFileByte(t testing.TB, path string, size int64, fill byte) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	mkdirFor(t, path)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = fill
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// Pattern draws a deterministic test image. Different seeds produce images
// with clearly different perceptual hashes.
func Pattern(width, height, seed int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v uint8
			switch seed % 4 {
			case 0:
				v = uint8(x * 255 / max(width-1, 1))
			case 1:
				v = uint8(y * 255 / max(height-1, 1))
			case 2:
				if (x/8+y/8)%2 == 0 {
					v = 255
				}
			default:
				if x < width/2 {
					v = 255
				}
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: uint8(seed * 37), A: 255})
		}
	}
	return img
}

// WriteJPEG encodes img as a JPEG at path with the given quality.
func WriteJPEG(t testing.TB, path string, img image.Image, quality int) {
	t.Helper()
	mkdirFor(t, path)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode jpeg %s: %v", path, err)
	}
}

// WritePNG encodes img as a PNG at path.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	mkdirFor(t, path)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png %s: %v", path, err)
	}
}

// SetModTime sets both access and modification time of path.
func SetModTime(t testing.TB, path string, ts time.Time) {
	t.Helper()
	if err := os.Chtimes(path, ts, ts); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func mkdirFor(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
}
