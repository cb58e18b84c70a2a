// Package hashcache persists computed file hashes in SQLite so repeated runs
// over the same corpora skip re-reading unchanged files.
//
// Entries are keyed by absolute path and are valid only while the file's size
// and modification time match what was recorded. A perceptual hash is cached
// together with whether it was attempted at all, so images that cannot be
// decoded are not retried on every run.
//
// The schema is versioned. Opening a database written by an incompatible
// version fails with ErrSchemaMismatch; "photorestore cache clear --reset"
// removes it.
package hashcache
