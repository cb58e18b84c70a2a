// Package staging copies subject files that need attention into the output
// directory: files with no equivalent go to missing/, files whose match needs
// review go to uncertain/.
//
// Copies never overwrite. A name collision gets a numeric suffix
// (IMG_0001_1.JPG). Dry-run mode plans the same destinations without touching
// the filesystem. A failed copy is reported as an infrastructure error and the
// file stays out of the staged set; it is still listed as missing or uncertain
// in the report.
//
// A run holds an exclusive lock on the output directory so two runs never
// interleave their copies.
package staging
