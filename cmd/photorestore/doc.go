// Package main hosts the photorestore CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration (file, PHOTORESTORE_*
// environment, then flags), builds the structured logger, and hands off to
// internal/reconcile for the actual work. Besides the full `run`, commands
// expose the individual building blocks: hashing a folder, listing Live
// Photo pairs, inspecting the hash cache, and checking prerequisites.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is only surfaced here.
package main
