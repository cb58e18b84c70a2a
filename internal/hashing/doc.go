// Package hashing computes content and perceptual hashes for batches of files
// on a bounded worker pool.
//
// Each file is an independent unit. A unit that cannot be read yields empty
// hashes and never aborts the batch; an image that cannot be decoded keeps
// its content hash and gets an empty perceptual hash. Progress is reported
// from a single collector goroutine so completed counts are monotonic, and
// the final (total, total) call is made exactly once for an uncancelled
// batch. Cancelling the context stops submission, lets in-flight units
// finish, and returns the partial mapping alongside ctx.Err().
package hashing
