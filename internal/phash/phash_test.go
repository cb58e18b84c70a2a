package phash

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatParseRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xdeadbeefcafebabe, ^uint64(0)}
	for _, v := range values {
		formatted := Format(v)
		if len(formatted) != HexLength {
			t.Fatalf("Format(%x) length %d", v, len(formatted))
		}
		parsed, err := Parse(formatted)
		if err != nil {
			t.Fatalf("Parse(%q): %v", formatted, err)
		}
		if parsed != v {
			t.Fatalf("round trip mismatch: %x != %x", parsed, v)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "abc", "zzzzzzzzzzzzzzzz", "00000000000000000"} {
		if _, err := Parse(input); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) err = %v, want ErrMalformed", input, err)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0000000000000000", "0000000000000000", 0},
		{"0000000000000000", "0000000000000007", 3},
		{"ffffffffffffffff", "0000000000000000", 64},
		{"f000000000000000", "0000000000000001", 5},
	}
	for _, tt := range tests {
		got, err := Distance(tt.a, tt.b)
		if err != nil {
			t.Fatalf("Distance(%s,%s): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("Distance(%s,%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		back, _ := Distance(tt.b, tt.a)
		if back != got {
			t.Errorf("distance not symmetric for %s,%s", tt.a, tt.b)
		}
	}
	if _, err := Distance("bad", "0000000000000000"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestPrefix(t *testing.T) {
	got, err := Prefix("abcd000000000000")
	if err != nil {
		t.Fatalf("Prefix: %v", err)
	}
	if got != 0xabcd {
		t.Fatalf("Prefix = %x, want abcd", got)
	}
}

func TestComputeDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradient.png")
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	file.Close()

	first, err := Compute(path)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := Compute(path)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if first != second || !Valid(first) {
		t.Fatalf("expected stable valid hash, got %q and %q", first, second)
	}
}

func TestComputeOrEmptyOnUndecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := ComputeOrEmpty(path); got != "" {
		t.Fatalf("expected empty hash, got %q", got)
	}
	if got := ComputeOrEmpty(filepath.Join(t.TempDir(), "missing.png")); got != "" {
		t.Fatalf("expected empty hash for missing file, got %q", got)
	}
}
