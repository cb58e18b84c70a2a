package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"photorestore/internal/asset"
	"photorestore/internal/events"
	"photorestore/internal/livepair"
	"photorestore/internal/logging"
	"photorestore/internal/media/ffprobe"
)

const defaultProbeTimeout = 30 * time.Second

// Options configures a Scanner.
type Options struct {
	// Phase names the scan in emitted events, e.g. "scan_subject".
	Phase string
	// PreferHEIC drops JPEG files shadowed by a HEIC of the same name.
	PreferHEIC   bool
	Workers      int
	Prober       Prober
	ProbeTimeout time.Duration
	// DisableProbe skips video inspection entirely.
	DisableProbe bool
	Observer     events.Observer
	Logger       *slog.Logger
}

// Scanner builds assets from a directory tree.
type Scanner struct {
	phase        string
	preferHEIC   bool
	workers      int
	prober       Prober
	probeTimeout time.Duration
	observer     events.Observer
	logger       *slog.Logger

	probeDisabled atomic.Bool
	missingProbe  sync.Once
}

// New constructs a Scanner from opts.
func New(opts Options) *Scanner {
	s := &Scanner{
		phase:        strings.TrimSpace(opts.Phase),
		preferHEIC:   opts.PreferHEIC,
		workers:      opts.Workers,
		prober:       opts.Prober,
		probeTimeout: opts.ProbeTimeout,
		observer:     events.OrNop(opts.Observer),
		logger:       logging.NewComponentLogger(opts.Logger, "scan"),
	}
	if s.phase == "" {
		s.phase = "scan"
	}
	if s.workers <= 0 {
		s.workers = 4
	}
	if s.prober == nil {
		s.prober = FFprobe("")
	}
	if s.probeTimeout <= 0 {
		s.probeTimeout = defaultProbeTimeout
	}
	s.probeDisabled.Store(opts.DisableProbe)
	return s
}

// Walk lists media files under root in lexical order. Hidden files and
// directories (leading dot) are skipped, which also drops AppleDouble
// "._" sidecars.
func Walk(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}
	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if asset.IsMediaExt(filepath.Ext(name)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return paths, nil
}

// Scan walks root and describes every media file found. Files that cannot be
// described are skipped. Output order follows Walk.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*asset.Asset, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	paths, err := Walk(ctx, abs)
	if err != nil {
		return nil, err
	}
	if s.preferHEIC {
		paths = livepair.PreferHEIC(paths)
	}
	return s.DescribeAll(ctx, paths)
}

// DescribeAll describes paths on a worker pool, preserving input order.
func (s *Scanner) DescribeAll(ctx context.Context, paths []string) ([]*asset.Asset, error) {
	start := time.Now()
	total := len(paths)
	s.observer.Observe(events.Event{Type: events.PhaseStarted, Phase: s.phase, Total: total})

	described := make([]*asset.Asset, total)
	jobs := make(chan int)
	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)
	for i := 0; i < min(s.workers, max(total, 1)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				a, err := s.Describe(ctx, paths[idx])
				if err != nil {
					s.observer.Observe(events.Event{Type: events.FileSkipped, Phase: s.phase, Path: paths[idx], Err: err})
				} else {
					described[idx] = a
				}
				n := done.Add(1)
				s.observer.Observe(events.Event{Type: events.Progress, Phase: s.phase, Completed: int(n), Total: total})
			}
		}()
	}
feed:
	for i := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*asset.Asset, 0, total)
	for _, a := range described {
		if a != nil {
			out = append(out, a)
		}
	}
	s.observer.Observe(events.Event{
		Type:      events.PhaseCompleted,
		Phase:     s.phase,
		Completed: len(out),
		Total:     total,
		Elapsed:   time.Since(start),
	})
	return out, nil
}

// Describe builds one asset from path. Only a failed stat is an error;
// missing metadata is left absent.
func (s *Scanner) Describe(ctx context.Context, path string) (*asset.Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}
	isVideo := asset.IsVideoPath(path)
	a := asset.New(path, info.Size(), isVideo)

	if isVideo {
		s.describeVideo(ctx, a)
	} else {
		if ts, err := ExifTimestamp(path); err == nil {
			a.Timestamp = ts
		}
		if dims, err := ImageDimensions(path); err == nil {
			a.Dimensions = dims
		}
	}
	if !a.HasTimestamp() {
		a.Timestamp = MtimeTimestamp(info.ModTime())
	}
	return a, nil
}

func (s *Scanner) describeVideo(ctx context.Context, a *asset.Asset) {
	if s.probeDisabled.Load() {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	info, err := s.prober.Probe(probeCtx, a.Path())
	if err != nil {
		if errors.Is(err, ffprobe.ErrNotFound) {
			s.probeDisabled.Store(true)
			s.missingProbe.Do(func() {
				logging.WarnWithContext(s.logger, "ffprobe unavailable; video metadata skipped", "ffprobe_missing",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "install ffmpeg to enable duration and dimension checks"),
					logging.String(logging.FieldImpact, "videos match on size and timestamp only"),
				)
			})
			return
		}
		s.logger.Debug("video probe failed", logging.String(logging.FieldPath, a.Path()), logging.Error(err))
		return
	}
	if info.HasDimensions() {
		a.WithDimensions(info.Width, info.Height)
	}
	if info.HasDuration() {
		a.WithDuration(info.Duration)
	}
	if ts := strings.TrimSpace(info.CreationTime); ts != "" {
		a.Timestamp = ts
	}
}
