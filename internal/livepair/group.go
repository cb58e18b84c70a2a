package livepair

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"photorestore/internal/asset"
)

var imagePriority = []string{".heic", ".heif", ".jpg", ".jpeg"}

var videoPriority = []string{".mov", ".mp4", ".m4v"}

// GroupOptions tunes pair detection.
type GroupOptions struct {
	// IncludeImageOnly also emits groups that have an image but no video.
	IncludeImageOnly bool
	// PerFolder only groups files that share a directory as well as a stem.
	PerFolder bool
}

type group struct {
	order int
	byExt map[string]*asset.Asset
}

// Group detects pairs in first-appearance order.
func Group(subjects []*asset.Asset, opts GroupOptions) []asset.LivePair {
	folder := cases.Fold()
	groups := make(map[string]*group)
	var keys []string
	for _, s := range subjects {
		if s == nil {
			continue
		}
		key := groupKey(folder, s.Path(), opts.PerFolder)
		g, ok := groups[key]
		if !ok {
			g = &group{order: len(keys), byExt: make(map[string]*asset.Asset)}
			groups[key] = g
			keys = append(keys, key)
		}
		ext := s.Ext()
		if _, seen := g.byExt[ext]; !seen {
			g.byExt[ext] = s
		}
	}

	pairs := make([]asset.LivePair, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		image := pick(g.byExt, imagePriority)
		if image == nil || image.IsVideo {
			continue
		}
		video := pick(g.byExt, videoPriority)
		if video != nil && !video.IsVideo {
			video = nil
		}
		if video == nil && !opts.IncludeImageOnly {
			continue
		}
		pairs = append(pairs, asset.LivePair{Image: image, Video: video})
	}
	return pairs
}

func pick(byExt map[string]*asset.Asset, priority []string) *asset.Asset {
	for _, ext := range priority {
		if a, ok := byExt[ext]; ok {
			return a
		}
	}
	return nil
}

// groupKey is the case-folded stem of path, qualified by its directory when
// perFolder is set.
func groupKey(folder cases.Caser, path string, perFolder bool) string {
	base := filepath.Base(path)
	stem := folder.String(strings.TrimSuffix(base, filepath.Ext(base)))
	if perFolder {
		return filepath.Join(filepath.Dir(path), stem)
	}
	return stem
}

// PreferHEIC drops JPEG files whose base name also exists as HEIC or HEIF
// anywhere in paths. Order is otherwise preserved.
func PreferHEIC(paths []string) []string {
	folder := cases.Fold()
	hasHEIC := make(map[string]bool)
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".heic", ".heif":
			hasHEIC[groupKey(folder, p, false)] = true
		}
	}
	if len(hasHEIC) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".jpg", ".jpeg":
			if hasHEIC[groupKey(folder, p, false)] {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
