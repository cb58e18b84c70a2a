package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"photorestore/internal/asset"
	"photorestore/internal/config"
	"photorestore/internal/engine"
	"photorestore/internal/events"
	"photorestore/internal/hashcache"
	"photorestore/internal/hashing"
	"photorestore/internal/livepair"
	"photorestore/internal/logging"
	"photorestore/internal/matchindex"
	"photorestore/internal/preflight"
	"photorestore/internal/report"
	"photorestore/internal/scan"
	"photorestore/internal/staging"
)

// Phase names reported through events.
const (
	PhaseScanSubject   = "scan_subject"
	PhaseScanReference = "scan_reference"
	PhaseHashSubject   = "hash_subject"
	PhaseHashReference = "hash_reference"
	PhaseCompare       = "compare"
)

// ProgressFunc receives progress for a named phase.
type ProgressFunc func(phase string, completed, total int)

// Options configures a Runner.
type Options struct {
	Logger *slog.Logger
	// Observer receives every event in addition to the logger and report log.
	Observer events.Observer
	Progress ProgressFunc
	// Prober overrides video inspection; nil uses ffprobe from the config.
	Prober scan.Prober
	Now    func() time.Time
}

// Summary describes a completed run.
type Summary struct {
	RunID      string
	Report     report.Report
	ReportPath string
	Index      matchindex.Stats
	CacheHits  int
	Staging    staging.Outcome
	Preflight  []preflight.Result
	Elapsed    time.Duration
}

// Runner executes reconciliation runs for one configuration.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	observer events.Observer
	progress ProgressFunc
	prober   scan.Prober
	now      func() time.Time
}

// New constructs a Runner. cfg must already be normalized.
func New(cfg *config.Config, opts Options) *Runner {
	r := &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(opts.Logger, "reconcile"),
		observer: opts.Observer,
		progress: opts.Progress,
		prober:   opts.Prober,
		now:      opts.Now,
	}
	if r.prober == nil {
		r.prober = scan.FFprobe(cfg.FFprobeBinary())
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// run carries the per-run state shared across phases.
type run struct {
	*Runner
	id       string
	logger   *slog.Logger
	observer events.Observer
	log      *report.Log
	cache    *hashcache.Cache
	noProbe  bool
	hits     int
}

func (r *Runner) begin(ctx context.Context) (context.Context, *run) {
	id := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, id))
	log := report.NewLog()
	state := &run{
		Runner:   r,
		id:       id,
		logger:   logger,
		log:      log,
		observer: events.Multi(logging.NewObserver(logger), log, r.observer),
	}
	return logging.WithRunID(ctx, id), state
}

// Run performs a full reconciliation and writes the report.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.cfg.RequireCorpora(); err != nil {
		return nil, err
	}
	start := r.now()
	ctx, st := r.begin(ctx)
	summary := &Summary{RunID: st.id, ReportPath: r.cfg.ReportPath()}

	checks, err := st.preflight(ctx)
	summary.Preflight = checks
	if err != nil {
		return summary, err
	}

	lock, err := staging.AcquireLock(r.cfg.Paths.OutputDir)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			st.logger.Warn("release output lock failed", logging.Error(err))
		}
	}()

	if err := st.openCache(ctx); err != nil {
		return summary, err
	}
	defer st.closeCache()

	subjects, reference, err := st.scanCorpora(ctx)
	if err != nil {
		return summary, err
	}
	st.log.Infof("Found %d subject files and %d reference files", len(subjects), len(reference))

	lazy := r.cfg.Matching.LazyPerceptual
	if err := st.hash(ctx, PhaseHashReference, reference, r.cfg.Hashing.ReferencePerceptual); err != nil {
		return summary, err
	}
	if err := st.hash(ctx, PhaseHashSubject, subjects, !lazy); err != nil {
		return summary, err
	}
	summary.CacheHits = st.hits

	idx, err := matchindex.BuildObserved(reference, st.observer)
	if err != nil {
		return summary, fmt.Errorf("build reference index: %w", err)
	}
	summary.Index = idx.Stats()
	st.observer.Observe(events.Event{
		Type:  events.IndexBuilt,
		Total: summary.Index.Assets,
		Fields: map[string]any{
			"exact_hashes":  summary.Index.ExactHashes,
			"compound_keys": summary.Index.CompoundKeys,
			"buckets":       summary.Index.Buckets,
			"unusable":      summary.Index.Unusable,
		},
	})

	results, err := st.compare(ctx, idx, subjects)
	if err != nil {
		return summary, err
	}
	if lazy && st.cache != nil {
		if _, err := st.cache.StoreAssets(ctx, subjects); err != nil {
			st.cacheWarning("store lazy perceptual hashes", err)
		}
	}

	standalone, pairs := st.pair(subjects, results)

	var outcome staging.Outcome
	if r.cfg.Staging.Enabled {
		stager := staging.New(staging.Options{
			OutputDir:     r.cfg.Paths.OutputDir,
			DryRun:        r.cfg.Staging.DryRun,
			Verify:        r.cfg.Staging.VerifyCopies,
			CopyUncertain: r.cfg.Staging.CopyUncertain,
			Observer:      st.observer,
			Logger:        st.logger,
			Log:           st.log,
		})
		outcome, err = stager.Stage(ctx, standalone, pairs)
		if err != nil {
			return summary, fmt.Errorf("stage files: %w", err)
		}
	}
	summary.Staging = outcome

	doc := report.Build(report.Input{
		RunID:          st.id,
		SubjectDir:     r.cfg.Paths.SubjectDir,
		ReferenceDir:   r.cfg.Paths.ReferenceDir,
		DryRun:         r.cfg.Staging.DryRun,
		SubjectFiles:   len(subjects),
		ReferenceFiles: len(reference),
		Results:        standalone,
		Pairs:          pairs,
		Staged:         outcome.Staged,
		Log:            st.log,
		Now:            r.now(),
	})
	if err := report.Write(summary.ReportPath, doc); err != nil {
		return summary, err
	}
	summary.Report = doc
	summary.Elapsed = r.now().Sub(start)

	st.logger.Info("reconciliation complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("subjects", doc.Summary.SubjectFiles),
		logging.Int("missing", doc.Summary.Missing),
		logging.Int("uncertain", doc.Summary.Uncertain),
		logging.Int("errors", doc.Summary.Errors),
		logging.Duration("elapsed", summary.Elapsed),
		logging.String("report", summary.ReportPath),
	)
	return summary, nil
}

func (st *run) preflight(ctx context.Context) ([]preflight.Result, error) {
	checks := preflight.RunAll(ctx, st.cfg)
	for _, c := range checks {
		if c.Passed {
			continue
		}
		if c.Optional {
			st.noProbe = true
			logging.WarnWithContext(st.logger, "optional dependency unavailable", "preflight_optional_failed",
				logging.String("check", c.Name),
				logging.String("detail", c.Detail),
				logging.String(logging.FieldImpact, "videos match on capture time and size only"),
				logging.String(logging.FieldErrorHint, "install ffprobe to compare video duration and dimensions"),
			)
			st.log.Warnf("%s unavailable: %s", c.Name, c.Detail)
		}
	}
	return checks, preflight.Err(checks)
}

func (st *run) openCache(ctx context.Context) error {
	if !st.cfg.Hashing.CacheEnabled {
		return nil
	}
	cache, err := hashcache.Open(ctx, st.cfg.HashCachePath())
	if err != nil {
		if errors.Is(err, hashcache.ErrSchemaMismatch) {
			return fmt.Errorf("%w (run `photorestore cache clear --reset` to rebuild it)", err)
		}
		return err
	}
	st.cache = cache
	return nil
}

func (st *run) closeCache() {
	if st.cache == nil {
		return
	}
	if err := st.cache.Close(); err != nil {
		st.cacheWarning("close", err)
	}
}

func (st *run) cacheWarning(action string, err error) {
	logging.WarnWithContext(st.logger, "hash cache "+action+" failed", "hash_cache_error",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "clear the cache with `photorestore cache clear --reset`"),
		logging.String(logging.FieldImpact, "affected files are rehashed on the next run"),
	)
}

func (st *run) scanner(phase string, preferHEIC bool) *scan.Scanner {
	return scan.New(scan.Options{
		Phase:        phase,
		PreferHEIC:   preferHEIC,
		Workers:      st.cfg.Hashing.Workers,
		Prober:       st.prober,
		DisableProbe: st.noProbe,
		Observer:     st.observer,
		Logger:       st.logger,
	})
}

func (st *run) scanCorpora(ctx context.Context) ([]*asset.Asset, []*asset.Asset, error) {
	preferHEIC := st.cfg.LivePhotos.Enabled && st.cfg.LivePhotos.PreferHEIC
	subjects, err := st.scanner(PhaseScanSubject, preferHEIC).Scan(ctx, st.cfg.Paths.SubjectDir)
	if err != nil {
		return nil, nil, fmt.Errorf("scan subject folder: %w", err)
	}
	reference, err := st.scanner(PhaseScanReference, false).Scan(ctx, st.cfg.Paths.ReferenceDir)
	if err != nil {
		return nil, nil, fmt.Errorf("scan reference folder: %w", err)
	}
	return subjects, reference, nil
}

// hash fills content (and optionally perceptual) hashes on assets, serving
// unchanged files from the cache and storing fresh results back.
func (st *run) hash(ctx context.Context, phase string, assets []*asset.Asset, withPerceptual bool) error {
	ctx = logging.WithPhase(ctx, phase)
	start := time.Now()
	paths := hashing.Paths(assets)
	st.observer.Observe(events.Event{Type: events.PhaseStarted, Phase: phase, Total: len(paths)})

	hashes := make(map[string]hashing.Hashes, len(paths))
	pending := paths
	if st.cache != nil {
		hits, misses, err := st.cache.Partition(ctx, paths, withPerceptual)
		switch {
		case err == nil:
			for path, h := range hits {
				hashes[path] = h
			}
			pending = misses
			st.hits += len(hits)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			st.cacheWarning("lookup", err)
		}
	}

	computer := hashing.New(hashing.Options{
		Workers:     st.cfg.Hashing.Workers,
		UnitTimeout: st.cfg.UnitTimeout(),
		Observer:    st.observer,
	})
	computed, err := computer.Compute(ctx, pending, withPerceptual, st.progressFor(phase))
	if err != nil {
		return fmt.Errorf("%s: %w", phase, err)
	}
	if st.cache != nil {
		if _, err := st.cache.Store(ctx, computed, withPerceptual); err != nil {
			st.cacheWarning("store", err)
		}
	}
	for path, h := range computed {
		hashes[path] = h
	}
	hashing.Apply(assets, hashes)

	st.observer.Observe(events.Event{
		Type:      events.PhaseCompleted,
		Phase:     phase,
		Completed: len(paths),
		Total:     len(paths),
		Elapsed:   time.Since(start),
		Fields:    map[string]any{"cache_hits": len(paths) - len(pending)},
	})
	return nil
}

func (st *run) matcher(idx *matchindex.Index) *engine.Engine {
	return engine.New(idx, engine.Options{
		Policy:         st.cfg.MatchPolicy(),
		LazyPerceptual: st.cfg.Matching.LazyPerceptual,
		Workers:        st.cfg.Matching.Workers,
		Observer:       st.observer,
	})
}

func (st *run) compare(ctx context.Context, idx *matchindex.Index, subjects []*asset.Asset) ([]asset.Result, error) {
	ctx = logging.WithPhase(ctx, PhaseCompare)
	start := time.Now()
	st.observer.Observe(events.Event{Type: events.PhaseStarted, Phase: PhaseCompare, Total: len(subjects)})
	results, err := st.matcher(idx).CompareAll(ctx, subjects, st.progressFor(PhaseCompare))
	if err != nil {
		return nil, fmt.Errorf("compare subjects: %w", err)
	}
	for _, res := range results {
		st.observer.Observe(events.Event{
			Type:  events.Matched,
			Phase: PhaseCompare,
			Path:  res.Subject.Path(),
			Fields: map[string]any{
				logging.FieldKind:       res.Kind.String(),
				logging.FieldConfidence: res.Confidence,
				"reason":                res.Reason,
			},
		})
	}
	st.observer.Observe(events.Event{
		Type:      events.PhaseCompleted,
		Phase:     PhaseCompare,
		Completed: len(results),
		Total:     len(subjects),
		Elapsed:   time.Since(start),
	})
	return results, nil
}

// pair splits results into standalone results and Live Photo pair results.
func (st *run) pair(subjects []*asset.Asset, results []asset.Result) ([]asset.Result, []asset.PairResult) {
	if !st.cfg.LivePhotos.Enabled {
		return results, nil
	}
	pairs := livepair.Group(subjects, st.cfg.PairOptions())
	if len(pairs) == 0 {
		return results, nil
	}
	paired := make(map[asset.ID]bool, len(pairs)*2)
	for _, p := range pairs {
		paired[p.Image.ID] = true
		if p.Video != nil {
			paired[p.Video.ID] = true
		}
	}
	standalone := make([]asset.Result, 0, len(results))
	for _, res := range results {
		if !paired[res.Subject.ID] {
			standalone = append(standalone, res)
		}
	}
	st.log.Infof("Detected %d Live Photo pairs", len(pairs))
	return standalone, livepair.Assemble(pairs, results)
}

func (st *run) progressFor(phase string) func(completed, total int) {
	return func(completed, total int) {
		st.observer.Observe(events.Event{Type: events.Progress, Phase: phase, Completed: completed, Total: total})
		if st.progress != nil {
			st.progress(phase, completed, total)
		}
	}
}
