// Package config loads, normalizes, and validates photorestore configuration.
//
// Configuration lives in a TOML file (by default
// ~/.config/photorestore/config.toml, falling back to ./photorestore.toml).
// Load applies repository defaults, expands ~ in every path, consults
// PHOTORESTORE_* environment variables for unset values, and validates
// thresholds before returning. CreateSample writes the embedded annotated
// sample file used by `photorestore config init`.
package config
