package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photorestore/internal/asset"
)

// Stats summarizes one run.
type Stats struct {
	SubjectFiles   int `json:"total_subject_files"`
	ReferenceFiles int `json:"total_reference_files"`
	Exact          int `json:"exact_matches"`
	Perceptual     int `json:"perceptual_matches"`
	Metadata       int `json:"metadata_matches"`
	Uncertain      int `json:"uncertain_matches"`
	Missing        int `json:"missing_files"`
	Errors         int `json:"errors"`
	LivePhotos     int `json:"live_photos_processed"`
	Staged         int `json:"staged_files"`
}

// Entry describes one subject file's outcome.
type Entry struct {
	Path        string     `json:"subject_path"`
	Kind        asset.Kind `json:"match_type"`
	Confidence  float64    `json:"confidence"`
	Reason      string     `json:"reason"`
	MatchedPath string     `json:"matched_reference_path,omitempty"`
	StagedPath  string     `json:"staged_path,omitempty"`
}

// PairEntry describes a Live Photo pair with a missing or uncertain half.
type PairEntry struct {
	ImagePath string `json:"subject_image_path"`
	VideoPath string `json:"subject_video_path,omitempty"`
	Image     Entry  `json:"image_result"`
	Video     *Entry `json:"video_result,omitempty"`
}

// Report is the persisted JSON document.
type Report struct {
	GeneratedAt        time.Time   `json:"generated_at"`
	RunID              string      `json:"run_id"`
	SubjectDir         string      `json:"subject_folder"`
	ReferenceDir       string      `json:"reference_folder"`
	DryRun             bool        `json:"dry_run"`
	Summary            Stats       `json:"summary"`
	Missing            []Entry     `json:"missing_files"`
	Uncertain          []Entry     `json:"uncertain_matches"`
	LivePhotoMissing   []PairEntry `json:"live_photo_missing"`
	LivePhotoUncertain []PairEntry `json:"live_photo_uncertain"`
	ProcessingLog      []LogEntry  `json:"processing_log"`
}

// Input carries everything Build needs.
type Input struct {
	RunID          string
	SubjectDir     string
	ReferenceDir   string
	DryRun         bool
	SubjectFiles   int
	ReferenceFiles int
	// Results holds outcomes for subjects outside any Live Photo pair.
	Results []asset.Result
	Pairs   []asset.PairResult
	// Staged maps subject ids to their copy destinations.
	Staged map[asset.ID]string
	Log    *Log
	Now    time.Time
}

// Tally counts results by kind. Each half of a pair counts once.
func Tally(results []asset.Result, pairs []asset.PairResult) Stats {
	var stats Stats
	count := func(r asset.Result) {
		switch r.Kind {
		case asset.KindExact:
			stats.Exact++
		case asset.KindPerceptual:
			stats.Perceptual++
		case asset.KindMetadata:
			stats.Metadata++
		case asset.KindUncertain:
			stats.Uncertain++
		case asset.KindNoMatch:
			stats.Missing++
		}
	}
	for _, r := range results {
		count(r)
	}
	for _, p := range pairs {
		stats.LivePhotos++
		count(p.Image)
		if p.Video != nil {
			count(*p.Video)
		}
	}
	return stats
}

// Build assembles the report document. Lists are never nil so they encode as
// empty arrays.
func Build(in Input) Report {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	stats := Tally(in.Results, in.Pairs)
	stats.SubjectFiles = in.SubjectFiles
	stats.ReferenceFiles = in.ReferenceFiles
	stats.Errors = in.Log.Errors()
	stats.Staged = len(in.Staged)

	r := Report{
		GeneratedAt:        now,
		RunID:              in.RunID,
		SubjectDir:         in.SubjectDir,
		ReferenceDir:       in.ReferenceDir,
		DryRun:             in.DryRun,
		Summary:            stats,
		Missing:            []Entry{},
		Uncertain:          []Entry{},
		LivePhotoMissing:   []PairEntry{},
		LivePhotoUncertain: []PairEntry{},
		ProcessingLog:      in.Log.Entries(),
	}
	if r.ProcessingLog == nil {
		r.ProcessingLog = []LogEntry{}
	}
	for _, res := range in.Results {
		switch {
		case res.IsMissing():
			r.Missing = append(r.Missing, entryOf(res, in.Staged))
		case res.NeedsReview():
			r.Uncertain = append(r.Uncertain, entryOf(res, in.Staged))
		}
	}
	for _, p := range in.Pairs {
		switch {
		case p.IsMissing():
			r.LivePhotoMissing = append(r.LivePhotoMissing, pairEntryOf(p, in.Staged))
		case p.NeedsReview():
			r.LivePhotoUncertain = append(r.LivePhotoUncertain, pairEntryOf(p, in.Staged))
		}
	}
	return r
}

func entryOf(res asset.Result, staged map[asset.ID]string) Entry {
	e := Entry{
		Path:       res.Subject.Path(),
		Kind:       res.Kind,
		Confidence: res.Confidence,
		Reason:     res.Reason,
	}
	if res.Matched != nil {
		e.MatchedPath = res.Matched.Path()
	}
	if res.Subject != nil {
		e.StagedPath = staged[res.Subject.ID]
	}
	return e
}

func pairEntryOf(p asset.PairResult, staged map[asset.ID]string) PairEntry {
	pe := PairEntry{
		ImagePath: p.Pair.Image.Path(),
		Image:     entryOf(p.Image, staged),
	}
	if p.Pair.Video != nil {
		pe.VideoPath = p.Pair.Video.Path()
	}
	if p.Video != nil {
		v := entryOf(*p.Video, staged)
		pe.Video = &v
	}
	return pe
}

// Write stores r as indented JSON at path, replacing any previous report
// atomically.
func Write(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp report: %w", err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}
	return r, nil
}
