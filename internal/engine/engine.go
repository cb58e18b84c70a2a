package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"photorestore/internal/asset"
	"photorestore/internal/events"
	"photorestore/internal/matchindex"
	"photorestore/internal/phash"
	"photorestore/internal/strategy"
)

const defaultProgressEvery = 25

// PerceptualFunc computes a perceptual hash, returning "" on failure.
type PerceptualFunc func(path string) string

// ProgressFunc receives (completed, total) updates.
type ProgressFunc func(completed, total int)

// Options configures an Engine.
type Options struct {
	Policy strategy.Policy
	// LazyPerceptual computes missing subject perceptual hashes on demand.
	LazyPerceptual bool
	Workers        int
	ProgressEvery  int
	Perceptual     PerceptualFunc
	Observer       events.Observer
}

// Engine matches subjects against an immutable index.
type Engine struct {
	idx           *matchindex.Index
	policy        strategy.Policy
	lazy          bool
	workers       int
	progressEvery int
	perceptual    PerceptualFunc
	observer      events.Observer
}

// New constructs an Engine. A nil index behaves as an empty corpus.
func New(idx *matchindex.Index, opts Options) *Engine {
	e := &Engine{
		idx:           idx,
		policy:        opts.Policy.Normalized(),
		lazy:          opts.LazyPerceptual,
		workers:       opts.Workers,
		progressEvery: opts.ProgressEvery,
		perceptual:    opts.Perceptual,
		observer:      events.OrNop(opts.Observer),
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU()
	}
	if e.progressEvery <= 0 {
		e.progressEvery = defaultProgressEvery
	}
	if e.perceptual == nil {
		e.perceptual = phash.ComputeOrEmpty
	}
	return e
}

// Policy returns the normalized policy in use.
func (e *Engine) Policy() strategy.Policy { return e.policy }

// Compare returns the best match for subject.
func (e *Engine) Compare(subject *asset.Asset) asset.Result {
	if subject == nil {
		return asset.NoMatch(nil, "")
	}

	if subject.HasContentHash() {
		if ref, ok := e.idx.Exact(subject.ContentHash); ok {
			if result, ok := strategy.Exact(subject, ref); ok {
				return result
			}
		}
	}

	if e.lazy {
		e.ensurePerceptual(subject)
	}

	if !subject.IsVideo && subject.HasPerceptualHash() {
		for _, ref := range e.idx.PerceptualCandidates(subject.PerceptualHash) {
			result, ok := strategy.Perceptual(subject, ref, e.policy)
			if ok && result.Kind == asset.KindPerceptual {
				return result
			}
		}
	}

	var best *asset.Result
	for _, ref := range e.candidates(subject) {
		for _, result := range e.evaluate(subject, ref) {
			if result.Better(best) {
				r := result
				best = &r
			}
		}
	}
	if best == nil {
		return asset.NoMatch(subject, "")
	}
	return *best
}

func (e *Engine) candidates(subject *asset.Asset) []*asset.Asset {
	if c := e.idx.ByDimensionsAndDay(subject); len(c) > 0 {
		return c
	}
	if c := e.idx.ByDay(subject); len(c) > 0 {
		return c
	}
	return e.idx.All()
}

// evaluate runs the strategies applicable to the subject's media type.
func (e *Engine) evaluate(subject, ref *asset.Asset) []asset.Result {
	var out []asset.Result
	if subject.IsVideo {
		if r, ok := strategy.Video(subject, ref, e.policy); ok {
			out = append(out, r)
		}
		return out
	}
	if r, ok := strategy.Perceptual(subject, ref, e.policy); ok {
		out = append(out, r)
	}
	if r, ok := strategy.Metadata(subject, ref, e.policy); ok {
		out = append(out, r)
	}
	return out
}

func (e *Engine) ensurePerceptual(subject *asset.Asset) bool {
	computed := subject.EnsurePerceptualHash(e.perceptual)
	if computed {
		e.observer.Observe(events.Event{
			Type:   events.LazyHashComputed,
			Path:   subject.Path(),
			Fields: map[string]any{"hash_found": subject.HasPerceptualHash()},
		})
	}
	return computed
}

// PrepareLazy computes missing perceptual hashes in a dedicated parallel
// pass. Videos and subjects already resolved by an exact hash hit are
// skipped. It is a no-op when lazy hashing is disabled.
func (e *Engine) PrepareLazy(ctx context.Context, subjects []*asset.Asset) (int, error) {
	if !e.lazy {
		return 0, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var pending []*asset.Asset
	for _, s := range subjects {
		if s == nil || s.IsVideo || s.HasPerceptualHash() {
			continue
		}
		if _, hit := e.idx.Exact(s.ContentHash); hit {
			continue
		}
		pending = append(pending, s)
	}
	if len(pending) == 0 {
		return 0, ctx.Err()
	}

	start := time.Now()
	jobs := make(chan *asset.Asset)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		computed int
	)
	for i := 0; i < min(e.workers, len(pending)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				if e.ensurePerceptual(s) {
					mu.Lock()
					computed++
					mu.Unlock()
				}
			}
		}()
	}
feed:
	for _, s := range pending {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- s:
		}
	}
	close(jobs)
	wg.Wait()

	e.observer.Observe(events.Event{
		Type:      events.PhaseCompleted,
		Phase:     "lazy_perceptual",
		Completed: computed,
		Total:     len(pending),
		Elapsed:   time.Since(start),
	})
	return computed, ctx.Err()
}

type compared struct {
	index  int
	result asset.Result
}

// CompareAll matches every subject and returns one result per subject in
// input order. On cancellation it returns the results of completed subjects,
// still in input order, together with ctx.Err().
func (e *Engine) CompareAll(ctx context.Context, subjects []*asset.Asset, progress ProgressFunc) ([]asset.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	total := len(subjects)
	if total == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(0, 0)
		}
		return []asset.Result{}, nil
	}

	// Lazy hashes mutate subjects, so compute them before matching fans out.
	if _, err := e.PrepareLazy(ctx, subjects); err != nil {
		return []asset.Result{}, err
	}

	results := make([]asset.Result, total)
	done := make([]bool, total)
	jobs := make(chan int)
	out := make(chan compared, total)

	var wg sync.WaitGroup
	for i := 0; i < min(e.workers, total); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out <- compared{index: idx, result: e.Compare(subjects[idx])}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range subjects {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	go func() {
		wg.Wait()
		close(out)
	}()

	completed := 0
	for c := range out {
		results[c.index] = c.result
		done[c.index] = true
		completed++
		if progress != nil && completed < total && completed%e.progressEvery == 0 {
			progress(completed, total)
		}
	}

	if completed < total {
		if err := ctx.Err(); err != nil {
			partial := make([]asset.Result, 0, completed)
			for i, ok := range done {
				if ok {
					partial = append(partial, results[i])
				}
			}
			return partial, err
		}
	}
	if progress != nil {
		progress(total, total)
	}
	return results, nil
}
