// Package phash computes and compares 64-bit perceptual image hashes.
//
// Hashes are carried as 16 lowercase hexadecimal characters so they can be
// stored alongside content hashes and compared with Hamming distance. The
// leading 16 bits double as the bucket key for the match index.
package phash
