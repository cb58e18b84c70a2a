package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxUniqueAttempts bounds the suffix search in UniquePath.
const maxUniqueAttempts = 10000

// CopyFile streams src to dst and carries over the source modification time.
// dst must not exist.
func CopyFile(src, dst string) error {
	return copyFile(src, dst, false)
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	return copyFile(src, dst, true)
}

func copyFile(src, dst string, verify bool) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return fmt.Errorf("copy %s: source is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	var reader io.Reader = in
	var writer io.Writer = out
	if verify {
		reader = io.TeeReader(in, srcHasher)
		writer = io.MultiWriter(out, dstHasher)
	}

	written, err := io.Copy(writer, reader)
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if verify && !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}

	mtime := srcInfo.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return fmt.Errorf("preserve modification time: %w", err)
	}
	return nil
}

// UniquePath returns a path in dir for name that does not exist yet. On
// collision the stem gets a numeric suffix: IMG_1.jpg, IMG_1_1.jpg, IMG_1_2.jpg.
func UniquePath(dir, name string) (string, error) {
	return UniquePathFunc(dir, name, nil)
}

// UniquePathFunc is UniquePath with an extra predicate for names that are
// already taken without existing on disk yet, such as planned dry-run copies.
func UniquePathFunc(dir, name string, taken func(path string) bool) (string, error) {
	free := func(candidate string) (bool, error) {
		if taken != nil && taken(candidate) {
			return false, nil
		}
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}

	candidate := filepath.Join(dir, name)
	if ok, err := free(candidate); err != nil || ok {
		return candidate, err
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i < maxUniqueAttempts; i++ {
		candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
		if ok, err := free(candidate); err != nil || ok {
			return candidate, err
		}
	}
	return "", fmt.Errorf("no free name for %s in %s", name, dir)
}
