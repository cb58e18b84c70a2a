// Package preflight provides readiness checks for the filesystem paths and
// external tools photorestore depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before scanning. A failed required check
//     aborts the run before any hashing work starts.
//   - The "photorestore doctor" command renders every check for the user.
//
// Optional checks (ffprobe) never fail a run; videos then match on size and
// timestamp alone.
package preflight
