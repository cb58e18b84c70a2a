package phash

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/corona10/goimagehash"
	_ "github.com/gen2brain/heic" // register HEIC/HEIF decoder
	_ "golang.org/x/image/bmp"    // register BMP decoder
	_ "golang.org/x/image/tiff"   // register TIFF decoder
	_ "golang.org/x/image/webp"   // register WebP decoder
)

// HexLength is the length of a formatted perceptual hash.
const HexLength = 16

// Bits is the number of bits compared by Distance.
const Bits = 64

// ErrMalformed reports a hash string that is not 16 hexadecimal characters.
var ErrMalformed = errors.New("malformed perceptual hash")

// Compute decodes the image at path and returns its DCT perceptual hash.
func Compute(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", path, err)
	}
	return FromImage(img)
}

// FromImage hashes an already decoded image.
func FromImage(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("nil image")
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("perception hash: %w", err)
	}
	return Format(hash.GetHash()), nil
}

// ComputeOrEmpty is Compute with decode failures mapped to "".
func ComputeOrEmpty(path string) string {
	hash, err := Compute(path)
	if err != nil {
		return ""
	}
	return hash
}

// Format renders a hash as 16 lowercase hex characters.
func Format(value uint64) string {
	return fmt.Sprintf("%016x", value)
}

// Parse converts a formatted hash back into its integer form.
func Parse(hex string) (uint64, error) {
	trimmed := strings.TrimSpace(hex)
	if len(trimmed) != HexLength {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, hex)
	}
	value, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, hex)
	}
	return value, nil
}

// Valid reports whether hex parses as a perceptual hash.
func Valid(hex string) bool {
	_, err := Parse(hex)
	return err == nil
}

// Distance returns the Hamming distance between two formatted hashes.
func Distance(a, b string) (int, error) {
	av, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return bits.OnesCount64(av ^ bv), nil
}

// Prefix returns the leading 16 bits of a formatted hash.
func Prefix(hex string) (uint16, error) {
	value, err := Parse(hex)
	if err != nil {
		return 0, err
	}
	return uint16(value >> 48), nil
}
