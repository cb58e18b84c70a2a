// Package livepair detects Live Photo pairs among subject assets and
// aggregates per-half match results into pair results.
//
// Files are grouped by directory and case-folded base name. The image half is
// chosen by extension priority (HEIC, HEIF, JPG, JPEG) and the video half by
// MOV, MP4, M4V. Each half is matched independently; a pair is missing when
// either present half has no match.
package livepair
