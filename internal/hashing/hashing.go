package hashing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"photorestore/internal/asset"
	"photorestore/internal/events"
	"photorestore/internal/phash"
)

// DefaultChunkSize is the read size used when streaming file content.
const DefaultChunkSize = 64 * 1024

const defaultProgressEvery = 10

// ErrDecoderPanic marks a perceptual hash abandoned because the decoder panicked.
var ErrDecoderPanic = errors.New("perceptual decoder panicked")

// Hashes holds the result for a single path. Empty strings mean absent.
type Hashes struct {
	Content    string
	Perceptual string
}

// ProgressFunc receives (completed, total) updates.
type ProgressFunc func(completed, total int)

// PerceptualFunc computes a perceptual hash for an image path.
type PerceptualFunc func(path string) (string, error)

// Options configures a Computer.
type Options struct {
	// Workers bounds concurrency; zero means runtime.NumCPU().
	Workers int
	// UnitTimeout abandons a unit that runs longer than this. Zero disables it.
	UnitTimeout time.Duration
	// ChunkSize is the streaming read size; zero means DefaultChunkSize.
	ChunkSize int
	// ProgressEvery batches progress callbacks; zero means every 10 units.
	ProgressEvery int
	Perceptual    PerceptualFunc
	Observer      events.Observer
}

// Computer hashes files in parallel.
type Computer struct {
	workers       int
	unitTimeout   time.Duration
	chunkSize     int
	progressEvery int
	perceptual    PerceptualFunc
	observer      events.Observer
}

// New constructs a Computer with defaults applied.
func New(opts Options) *Computer {
	c := &Computer{
		workers:       opts.Workers,
		unitTimeout:   opts.UnitTimeout,
		chunkSize:     opts.ChunkSize,
		progressEvery: opts.ProgressEvery,
		perceptual:    opts.Perceptual,
		observer:      events.OrNop(opts.Observer),
	}
	if c.workers <= 0 {
		c.workers = runtime.NumCPU()
	}
	if c.chunkSize <= 0 {
		c.chunkSize = DefaultChunkSize
	}
	if c.progressEvery <= 0 {
		c.progressEvery = defaultProgressEvery
	}
	if c.perceptual == nil {
		c.perceptual = phash.Compute
	}
	if c.unitTimeout < 0 {
		c.unitTimeout = 0
	}
	return c
}

// Workers reports the pool size.
func (c *Computer) Workers() int { return c.workers }

type unitResult struct {
	path   string
	hashes Hashes
}

// Compute hashes every path. Perceptual hashes are computed only when
// withPerceptual is set and the path has an image extension.
func (c *Computer) Compute(ctx context.Context, paths []string, withPerceptual bool, progress ProgressFunc) (map[string]Hashes, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	total := len(paths)
	out := make(map[string]Hashes, total)
	if total == 0 {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if progress != nil {
			progress(0, 0)
		}
		return out, nil
	}

	jobs := make(chan string)
	results := make(chan unitResult, total)

	workers := c.workers
	if workers > total {
		workers = total
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- unitResult{path: path, hashes: c.unit(path, withPerceptual)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for r := range results {
		out[r.path] = r.hashes
		completed++
		if progress != nil && completed < total && completed%c.progressEvery == 0 {
			progress(completed, total)
		}
	}

	if completed < total {
		if err := ctx.Err(); err != nil {
			return out, err
		}
	}
	if progress != nil {
		progress(total, total)
	}
	return out, nil
}

func (c *Computer) unit(path string, withPerceptual bool) Hashes {
	if c.unitTimeout <= 0 {
		return c.hashFile(path, withPerceptual)
	}
	done := make(chan Hashes, 1)
	go func() {
		done <- c.hashFile(path, withPerceptual)
	}()
	timer := time.NewTimer(c.unitTimeout)
	defer timer.Stop()
	select {
	case h := <-done:
		return h
	case <-timer.C:
		c.observer.Observe(events.Event{
			Type:    events.HashTimedOut,
			Path:    path,
			Elapsed: c.unitTimeout,
		})
		return Hashes{}
	}
}

func (c *Computer) hashFile(path string, withPerceptual bool) Hashes {
	content, err := ContentHash(path, c.chunkSize)
	if err != nil {
		c.observer.Observe(events.Event{Type: events.HashFailed, Path: path, Err: err})
		return Hashes{}
	}
	h := Hashes{Content: content}
	if withPerceptual && asset.IsImagePath(path) {
		perceptual, err := c.safePerceptual(path)
		if err != nil {
			c.observer.Observe(events.Event{
				Type:   events.HashFailed,
				Path:   path,
				Err:    err,
				Fields: map[string]any{"hash": "perceptual"},
			})
		} else {
			h.Perceptual = perceptual
		}
	}
	return h
}

// safePerceptual runs the perceptual hasher, converting a decoder panic on a
// corrupt file into an error for that unit.
func (c *Computer) safePerceptual(path string) (hash string, err error) {
	defer func() {
		if r := recover(); r != nil {
			hash = ""
			err = fmt.Errorf("%w: %v", ErrDecoderPanic, r)
		}
	}()
	return c.perceptual(path)
}

// ContentHash streams the file through SHA-256 in chunkSize reads and
// returns the lowercase hex digest.
func ContentHash(path string, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Apply copies computed hashes onto assets keyed by asset path. Empty
// results never overwrite existing values, and videos never receive a
// perceptual hash.
func Apply(assets []*asset.Asset, hashes map[string]Hashes) int {
	applied := 0
	for _, a := range assets {
		if a == nil {
			continue
		}
		h, ok := hashes[a.Path()]
		if !ok {
			continue
		}
		if h.Content != "" {
			a.ContentHash = h.Content
		}
		if h.Perceptual != "" && !a.IsVideo {
			a.PerceptualHash = h.Perceptual
		}
		applied++
	}
	return applied
}

// Paths returns the asset paths in order.
func Paths(assets []*asset.Asset) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		if a != nil {
			out = append(out, a.Path())
		}
	}
	return out
}
