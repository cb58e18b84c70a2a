package scan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func heifBoxBytes(typ string, body ...[]byte) []byte {
	payload := bytes.Join(body, nil)
	out := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(out, uint32(8+len(payload)))
	copy(out[4:], typ)
	return append(out, payload...)
}

func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }

func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

// exifTIFF encodes a little-endian TIFF block holding only DateTimeOriginal.
func exifTIFF(dateTime string) []byte {
	le := binary.LittleEndian
	var b []byte
	b = append(b, 'I', 'I')
	b = le.AppendUint16(b, 42)
	b = le.AppendUint32(b, 8)
	// IFD0 at 8: one entry pointing at the Exif IFD.
	b = le.AppendUint16(b, 1)
	b = le.AppendUint16(b, 0x8769)
	b = le.AppendUint16(b, 4)
	b = le.AppendUint32(b, 1)
	b = le.AppendUint32(b, 26)
	b = le.AppendUint32(b, 0)
	// Exif IFD at 26: DateTimeOriginal stored at 44.
	value := append([]byte(dateTime), 0)
	b = le.AppendUint16(b, 1)
	b = le.AppendUint16(b, 0x9003)
	b = le.AppendUint16(b, 2)
	b = le.AppendUint32(b, uint32(len(value)))
	b = le.AppendUint32(b, 44)
	b = le.AppendUint32(b, 0)
	return append(b, value...)
}

// heifWithExif builds a minimal HEIF container whose only item is Exif.
func heifWithExif(itemType string, tiff []byte) []byte {
	ftyp := heifBoxBytes("ftyp", []byte("heic"), u32(0), []byte("mif1heic"))
	hdlr := heifBoxBytes("hdlr", u32(0), u32(0), []byte("pict"), make([]byte, 12), []byte{0})
	infe := heifBoxBytes("infe", []byte{2, 0, 0, 0}, u16(1), u16(0), []byte(itemType), []byte{0})
	iinf := heifBoxBytes("iinf", u32(0), u16(1), infe)

	item := append(append(u32(6), "Exif\x00\x00"...), tiff...)
	ilocLen := 8 + 4 + 2 + 2 + 2 + 2 + 2 + 4 + 4
	meta := func(offset uint32) []byte {
		iloc := heifBoxBytes("iloc", u32(0), []byte{0x44, 0x00}, u16(1),
			u16(1), u16(0), u16(1), u32(offset), u32(uint32(len(item))))
		return heifBoxBytes("meta", u32(0), hdlr, iinf, iloc)
	}
	metaLen := len(meta(0))
	if metaLen != 12+len(hdlr)+len(iinf)+ilocLen {
		panic("unexpected meta layout")
	}
	offset := uint32(len(ftyp) + metaLen + 8)
	return bytes.Join([][]byte{ftyp, meta(offset), heifBoxBytes("mdat", item)}, nil)
}

func writeHEIF(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExifTimestampHEIC(t *testing.T) {
	path := writeHEIF(t, "IMG_0001.HEIC", heifWithExif("Exif", exifTIFF("2019:07:04 10:11:12")))
	got, err := ExifTimestamp(path)
	if err != nil {
		t.Fatalf("ExifTimestamp: %v", err)
	}
	if got != "2019:07:04 10:11:12" {
		t.Fatalf("ExifTimestamp = %q", got)
	}
}

func TestHEIFExifMissingItem(t *testing.T) {
	data := heifWithExif("mime", exifTIFF("2019:07:04 10:11:12"))
	_, err := heifExif(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, errNoHEIFExif) {
		t.Fatalf("expected errNoHEIFExif, got %v", err)
	}
}

func TestHEIFExifRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"filler":    bytes.Repeat([]byte{0xAB}, 64),
		"truncated": heifWithExif("Exif", exifTIFF("2019:07:04 10:11:12"))[:40],
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := heifExif(bytes.NewReader(data), int64(len(data))); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestExifTimestampHEICWithoutExifFails(t *testing.T) {
	path := writeHEIF(t, "IMG_0002.heic", bytes.Repeat([]byte{0xAB}, 64))
	if _, err := ExifTimestamp(path); err == nil {
		t.Fatal("expected an error for a container without exif")
	}
}
