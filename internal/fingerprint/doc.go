// Package fingerprint computes cheap sampled content digests for video files.
//
// A fingerprint is the SHA-256 of the first 2 MiB of a file, plus 2 MiB from
// the file's midpoint when the file is larger than twice the sample size.
// Reading at most 4 MiB per file keeps re-scans of large libraries fast while
// still telling apart files that share a header but differ internally.
//
// Fingerprints detect likely content changes between scans. They are not
// integrity proofs and offer no resistance to crafted collisions.
package fingerprint
