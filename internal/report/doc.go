// Package report builds the JSON document a reconciliation run leaves behind:
// the summary counts, every missing and uncertain subject file, Live Photo
// pairs with a missing or uncertain half, and a processing log.
//
// Infrastructure failures (unreadable files, hash timeouts, failed copies)
// are counted under errors and never folded into the missing count.
package report
