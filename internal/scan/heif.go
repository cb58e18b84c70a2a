package scan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// maxHEIFBox bounds the metadata boxes and Exif items read into memory.
const maxHEIFBox = 4 << 20

var (
	errMalformedHEIF = errors.New("malformed heif container")
	errNoHEIFExif    = errors.New("heif container has no exif item")
)

func isHEIFPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

type heifBox struct {
	typ  string
	body int64
	end  int64
}

func readHEIFBox(r io.ReaderAt, pos, limit int64) (heifBox, error) {
	var hdr [16]byte
	if _, err := r.ReadAt(hdr[:8], pos); err != nil {
		return heifBox{}, err
	}
	size := int64(binary.BigEndian.Uint32(hdr[:4]))
	b := heifBox{typ: string(hdr[4:8]), body: pos + 8}
	switch size {
	case 0:
		size = limit - pos
	case 1:
		if _, err := r.ReadAt(hdr[8:16], pos+8); err != nil {
			return heifBox{}, err
		}
		size = int64(binary.BigEndian.Uint64(hdr[8:16]))
		b.body += 8
	}
	if size < b.body-pos || size > limit-pos {
		return heifBox{}, errMalformedHEIF
	}
	b.end = pos + size
	return b, nil
}

func findHEIFBox(r io.ReaderAt, start, end int64, typ string) (heifBox, error) {
	for pos := start; pos+8 <= end; {
		b, err := readHEIFBox(r, pos, end)
		if err != nil {
			return heifBox{}, err
		}
		if b.typ == typ {
			return b, nil
		}
		pos = b.end
	}
	return heifBox{}, fmt.Errorf("%w: no %s box", errMalformedHEIF, typ)
}

func readHEIFBody(r io.ReaderAt, b heifBox) ([]byte, error) {
	n := b.end - b.body
	if n < 0 || n > maxHEIFBox {
		return nil, errMalformedHEIF
	}
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, b.body); err != nil {
		return nil, err
	}
	return buf, nil
}

// cursor reads big-endian fields, latching the first out-of-bounds read.
type cursor struct {
	b   []byte
	off int
	err error
}

func (c *cursor) uint(n int) uint64 {
	if c.err != nil || n == 0 {
		return 0
	}
	if n > 8 || c.off+n > len(c.b) {
		c.err = errMalformedHEIF
		return 0
	}
	var v uint64
	for _, x := range c.b[c.off : c.off+n] {
		v = v<<8 | uint64(x)
	}
	c.off += n
	return v
}

func (c *cursor) str(n int) string {
	if c.err != nil {
		return ""
	}
	if c.off+n > len(c.b) {
		c.err = errMalformedHEIF
		return ""
	}
	s := string(c.b[c.off : c.off+n])
	c.off += n
	return s
}

func (c *cursor) skip(n int) {
	if c.err != nil {
		return
	}
	if c.off+n > len(c.b) {
		c.err = errMalformedHEIF
		return
	}
	c.off += n
}

// heifExif returns the TIFF-encoded Exif payload stored as an item of a
// HEIF container.
func heifExif(r io.ReaderAt, size int64) ([]byte, error) {
	meta, err := findHEIFBox(r, 0, size, "meta")
	if err != nil {
		return nil, err
	}
	// meta is a full box; children start after version and flags.
	start := meta.body + 4

	iinf, err := findHEIFBox(r, start, meta.end, "iinf")
	if err != nil {
		return nil, err
	}
	body, err := readHEIFBody(r, iinf)
	if err != nil {
		return nil, err
	}
	id, err := exifItemID(body)
	if err != nil {
		return nil, err
	}

	iloc, err := findHEIFBox(r, start, meta.end, "iloc")
	if err != nil {
		return nil, err
	}
	if body, err = readHEIFBody(r, iloc); err != nil {
		return nil, err
	}
	offset, length, err := itemExtent(body, id)
	if err != nil {
		return nil, err
	}
	if length < 4 || length > maxHEIFBox || offset+length > uint64(size) {
		return nil, errMalformedHEIF
	}
	item := make([]byte, length)
	if _, err := r.ReadAt(item, int64(offset)); err != nil {
		return nil, err
	}
	return tiffPayload(item)
}

func exifItemID(iinf []byte) (uint64, error) {
	c := cursor{b: iinf}
	version := c.uint(1)
	c.skip(3)
	var count uint64
	if version == 0 {
		count = c.uint(2)
	} else {
		count = c.uint(4)
	}
	for i := uint64(0); i < count && c.err == nil; i++ {
		start := c.off
		size := int(c.uint(4))
		typ := c.str(4)
		if c.err != nil || size < 8 || start+size > len(iinf) {
			return 0, errMalformedHEIF
		}
		if typ == "infe" {
			e := cursor{b: iinf[start+8 : start+size]}
			v := e.uint(1)
			e.skip(3)
			if v >= 2 {
				var id uint64
				if v == 2 {
					id = e.uint(2)
				} else {
					id = e.uint(4)
				}
				e.skip(2)
				if e.str(4) == "Exif" && e.err == nil {
					return id, nil
				}
			}
		}
		c.off = start + size
	}
	if c.err != nil {
		return 0, c.err
	}
	return 0, errNoHEIFExif
}

func itemExtent(iloc []byte, id uint64) (offset, length uint64, err error) {
	c := cursor{b: iloc}
	version := c.uint(1)
	c.skip(3)
	sizes := c.uint(1)
	offsetSize, lengthSize := int(sizes>>4), int(sizes&0x0f)
	sizes = c.uint(1)
	baseSize, indexSize := int(sizes>>4), 0
	if version == 1 || version == 2 {
		indexSize = int(sizes & 0x0f)
	}
	var count uint64
	if version < 2 {
		count = c.uint(2)
	} else {
		count = c.uint(4)
	}
	for i := uint64(0); i < count && c.err == nil; i++ {
		var itemID uint64
		if version < 2 {
			itemID = c.uint(2)
		} else {
			itemID = c.uint(4)
		}
		var method uint64
		if version == 1 || version == 2 {
			method = c.uint(2) & 0x0f
		}
		c.skip(2)
		base := c.uint(baseSize)
		extents := c.uint(2)
		var first, firstLen uint64
		for j := uint64(0); j < extents && c.err == nil; j++ {
			c.skip(indexSize)
			off, n := c.uint(offsetSize), c.uint(lengthSize)
			if j == 0 {
				first, firstLen = off, n
			}
		}
		if itemID != id || c.err != nil {
			continue
		}
		if method != 0 || extents == 0 {
			return 0, 0, fmt.Errorf("%w: unsupported exif item location", errMalformedHEIF)
		}
		return base + first, firstLen, nil
	}
	if c.err != nil {
		return 0, 0, c.err
	}
	return 0, 0, errNoHEIFExif
}

// tiffPayload strips the Exif item header: a 4-byte offset to the TIFF
// header, normally preceded by "Exif\x00\x00".
func tiffPayload(item []byte) ([]byte, error) {
	skip := int(binary.BigEndian.Uint32(item[:4]))
	data := item[4:]
	if skip < len(data) && isTIFFHeader(data[skip:]) {
		return data[skip:], nil
	}
	for i := 0; i+4 <= len(data); i++ {
		if isTIFFHeader(data[i:]) {
			return data[i:], nil
		}
	}
	return nil, errNoHEIFExif
}

func isTIFFHeader(b []byte) bool {
	return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*"))
}
