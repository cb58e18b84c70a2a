package hashcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"photorestore/internal/asset"
	"photorestore/internal/hashing"
)

// Cache is a SQLite-backed store of file hashes.
type Cache struct {
	db   *sql.DB
	path string
}

// Stats summarizes cache contents.
type Stats struct {
	Path           string
	Entries        int
	WithPerceptual int
	FileBytes      int64
}

// Fingerprint identifies one version of a file on disk.
type Fingerprint struct {
	Size    int64
	ModTime time.Time
}

// Stat reads the fingerprint of path.
func Stat(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Open initializes or connects to the cache database at path.
func Open(ctx context.Context, path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: path}
	if err := cache.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns cached hashes for path when the stored fingerprint still
// matches fp. When needPerceptual is set, an image entry counts as a hit only
// if a perceptual hash was attempted when it was stored.
func (c *Cache) Lookup(ctx context.Context, path string, fp Fingerprint, needPerceptual bool) (hashing.Hashes, bool, error) {
	var (
		size           int64
		mtime          int64
		content        string
		perceptual     string
		perceptualDone bool
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT size, mtime_ns, content_hash, perceptual_hash, perceptual_done FROM file_hashes WHERE path = ?`,
		path,
	).Scan(&size, &mtime, &content, &perceptual, &perceptualDone)
	if errors.Is(err, sql.ErrNoRows) {
		return hashing.Hashes{}, false, nil
	}
	if err != nil {
		return hashing.Hashes{}, false, fmt.Errorf("lookup %s: %w", path, err)
	}
	if size != fp.Size || mtime != fp.ModTime.UnixNano() || content == "" {
		return hashing.Hashes{}, false, nil
	}
	if needPerceptual && asset.IsImagePath(path) && !perceptualDone {
		return hashing.Hashes{}, false, nil
	}
	return hashing.Hashes{Content: content, Perceptual: perceptual}, true, nil
}

// Partition splits paths into cache hits and paths that still need hashing.
// Files that cannot be stat'ed are returned as misses so the hash computer
// reports them.
func (c *Cache) Partition(ctx context.Context, paths []string, needPerceptual bool) (map[string]hashing.Hashes, []string, error) {
	hits := make(map[string]hashing.Hashes, len(paths))
	var misses []string
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		fp, err := Stat(path)
		if err != nil {
			misses = append(misses, path)
			continue
		}
		h, ok, err := c.Lookup(ctx, path, fp, needPerceptual)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			hits[path] = h
		} else {
			misses = append(misses, path)
		}
	}
	return hits, misses, nil
}

const upsertSQL = `INSERT INTO file_hashes (path, size, mtime_ns, content_hash, perceptual_hash, perceptual_done, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    perceptual_hash = CASE
        WHEN excluded.perceptual_done = 1 THEN excluded.perceptual_hash
        WHEN file_hashes.size = excluded.size AND file_hashes.mtime_ns = excluded.mtime_ns THEN file_hashes.perceptual_hash
        ELSE '' END,
    perceptual_done = CASE
        WHEN excluded.perceptual_done = 1 THEN 1
        WHEN file_hashes.size = excluded.size AND file_hashes.mtime_ns = excluded.mtime_ns THEN file_hashes.perceptual_done
        ELSE 0 END,
    size = excluded.size,
    mtime_ns = excluded.mtime_ns,
    content_hash = excluded.content_hash,
    updated_at = excluded.updated_at`

// Store records hashes for every path whose content hash is present. Files
// that vanished since hashing are skipped. perceptualDone marks that a
// perceptual hash was attempted for image entries, even when it came back
// empty. It returns the number of rows written.
func (c *Cache) Store(ctx context.Context, entries map[string]hashing.Hashes, perceptualDone bool) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin store tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	written := 0
	for path, h := range entries {
		if h.Content == "" {
			continue
		}
		fp, err := Stat(path)
		if err != nil {
			continue
		}
		done := 0
		if perceptualDone && asset.IsImagePath(path) {
			done = 1
		}
		if _, err := stmt.ExecContext(ctx, path, fp.Size, fp.ModTime.UnixNano(), h.Content, h.Perceptual, done, now); err != nil {
			return 0, fmt.Errorf("store %s: %w", path, err)
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit store: %w", err)
	}
	return written, nil
}

// StoreAssets records the hashes currently held by assets, for example after
// the lazy perceptual pass filled in subject hashes.
func (c *Cache) StoreAssets(ctx context.Context, assets []*asset.Asset) (int, error) {
	entries := make(map[string]hashing.Hashes)
	for _, a := range assets {
		if a == nil || a.IsVideo || !a.HasContentHash() || !a.HasPerceptualHash() {
			continue
		}
		entries[a.Path()] = hashing.Hashes{Content: a.ContentHash, Perceptual: a.PerceptualHash}
	}
	return c.Store(ctx, entries, true)
}

// Stats reports entry counts and the database file size.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: c.path}
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(CASE WHEN perceptual_hash <> '' THEN 1 ELSE 0 END), 0) FROM file_hashes`,
	).Scan(&stats.Entries, &stats.WithPerceptual)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	if info, err := os.Stat(c.path); err == nil {
		stats.FileBytes = info.Size()
	}
	return stats, nil
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM file_hashes`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// Prune removes entries whose files no longer exist and returns how many were
// deleted.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path FROM file_hashes`)
	if err != nil {
		return 0, fmt.Errorf("list cache paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, err
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			stale = append(stale, path)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	for _, path := range stale {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM file_hashes WHERE path = ?`, path); err != nil {
			return 0, fmt.Errorf("prune %s: %w", path, err)
		}
	}
	return len(stale), nil
}

// Remove deletes the database file at path together with its WAL sidecars.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
