package asset

import (
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".heic": {}, ".heif": {}, ".png": {},
	".gif": {}, ".webp": {}, ".tiff": {}, ".tif": {}, ".bmp": {},
}

var videoExtensions = map[string]struct{}{
	".mov": {}, ".mp4": {}, ".m4v": {}, ".avi": {}, ".mkv": {}, ".3gp": {},
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsImageExt reports whether ext (with or without leading dot) is a supported image extension.
func IsImageExt(ext string) bool {
	_, ok := imageExtensions[normalizeExt(ext)]
	return ok
}

// IsVideoExt reports whether ext is a supported video extension.
func IsVideoExt(ext string) bool {
	_, ok := videoExtensions[normalizeExt(ext)]
	return ok
}

// IsMediaExt reports whether ext is either an image or a video extension.
func IsMediaExt(ext string) bool {
	return IsImageExt(ext) || IsVideoExt(ext)
}

// IsImagePath classifies a path by its extension.
func IsImagePath(path string) bool { return IsImageExt(filepath.Ext(path)) }

// IsVideoPath classifies a path by its extension.
func IsVideoPath(path string) bool { return IsVideoExt(filepath.Ext(path)) }
