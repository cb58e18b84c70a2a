package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"photorestore/internal/asset"
	"photorestore/internal/events"
	"photorestore/internal/fileutil"
	"photorestore/internal/logging"
	"photorestore/internal/report"
)

// Category folder names under the output directory.
const (
	MissingDir   = "missing"
	UncertainDir = "uncertain"
)

// Options configures a Stager.
type Options struct {
	OutputDir     string
	DryRun        bool
	Verify        bool
	CopyUncertain bool
	Observer      events.Observer
	Logger        *slog.Logger
	Log           *report.Log
}

// Outcome summarizes one staging pass.
type Outcome struct {
	// Staged maps each copied (or, in dry-run mode, planned) subject to its
	// destination.
	Staged map[asset.ID]string
	Copied int
	Failed int
}

// Stager copies subjects into the output directory.
type Stager struct {
	outputDir     string
	dryRun        bool
	verify        bool
	copyUncertain bool
	observer      events.Observer
	logger        *slog.Logger
	log           *report.Log

	planned map[string]bool
}

// New constructs a Stager.
func New(opts Options) *Stager {
	return &Stager{
		outputDir:     opts.OutputDir,
		dryRun:        opts.DryRun,
		verify:        opts.Verify,
		copyUncertain: opts.CopyUncertain,
		observer:      events.OrNop(opts.Observer),
		logger:        logging.NewComponentLogger(opts.Logger, "staging"),
		log:           opts.Log,
		planned:       make(map[string]bool),
	}
}

// Prepare creates the category folders. Dry runs only record the intent.
func (s *Stager) Prepare() error {
	if s.dryRun {
		s.log.Infof("[DRY RUN] Would create folder: %s", s.outputDir)
		return nil
	}
	for _, dir := range []string{MissingDir, UncertainDir} {
		if err := os.MkdirAll(filepath.Join(s.outputDir, dir), 0o755); err != nil {
			return fmt.Errorf("create %s folder: %w", dir, err)
		}
	}
	return nil
}

// Stage copies every missing subject, and every uncertain one when enabled,
// from standalone results and from both halves of each pair. Cancellation
// stops between files and returns what was done so far.
func (s *Stager) Stage(ctx context.Context, results []asset.Result, pairs []asset.PairResult) (Outcome, error) {
	out := Outcome{Staged: make(map[asset.ID]string)}
	if err := s.Prepare(); err != nil {
		return out, err
	}
	total := len(results)
	for _, p := range pairs {
		total++
		if p.Video != nil {
			total++
		}
	}
	s.observer.Observe(events.Event{Type: events.PhaseStarted, Phase: "stage", Total: total})

	stageOne := func(r asset.Result) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.stageResult(r, &out)
		return nil
	}
	for _, r := range results {
		if err := stageOne(r); err != nil {
			return out, err
		}
	}
	for _, p := range pairs {
		if err := stageOne(p.Image); err != nil {
			return out, err
		}
		if p.Video != nil {
			if err := stageOne(*p.Video); err != nil {
				return out, err
			}
		}
	}
	s.observer.Observe(events.Event{Type: events.PhaseCompleted, Phase: "stage", Completed: len(out.Staged), Total: total})
	return out, nil
}

func (s *Stager) stageResult(r asset.Result, out *Outcome) {
	var category string
	switch {
	case r.IsMissing():
		category = MissingDir
	case r.NeedsReview() && s.copyUncertain:
		category = UncertainDir
	default:
		return
	}
	if r.Subject == nil {
		return
	}
	dest, err := s.Copy(r.Subject.Path(), category)
	if err != nil {
		out.Failed++
		s.observer.Observe(events.Event{Type: events.StageFailed, Phase: "stage", Path: r.Subject.Path(), Err: err})
		return
	}
	out.Staged[r.Subject.ID] = dest
	if !s.dryRun {
		out.Copied++
	}
}

// Copy stages src into the category folder and returns the destination.
func (s *Stager) Copy(src, category string) (string, error) {
	dir := filepath.Join(s.outputDir, category)
	dest, err := fileutil.UniquePathFunc(dir, filepath.Base(src), func(p string) bool { return s.planned[p] })
	if err != nil {
		return "", err
	}
	if s.dryRun {
		s.planned[dest] = true
		s.log.Infof("[DRY RUN] Would copy: %s -> %s", src, dest)
		return dest, nil
	}

	copyFn := fileutil.CopyFile
	if s.verify {
		copyFn = fileutil.CopyFileVerified
	}
	if err := copyFn(src, dest); err != nil {
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	s.log.Infof("Copied: %s -> %s", src, dest)
	s.logger.Debug("file staged",
		logging.String(logging.FieldPath, src),
		logging.String("dest", dest),
		logging.String("category", category),
	)
	return dest, nil
}
