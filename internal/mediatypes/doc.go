// Package mediatypes classifies files and derives their inventory identity.
//
// It is a dependency-free foundation imported by the indexer, the database
// layer and the HTTP handlers without creating import cycles.
//
// # Classification
//
// IsVideo decides from the file extension alone whether a path is a video:
//
//	if !mediatypes.IsVideo(path) {
//	    // skipped as non-video
//	}
//
// Known video extensions are listed in VideoExtensions; anything else is
// looked up in the platform MIME database and accepted when its type starts
// with "video/".
//
// # Identity
//
// IdentityOf maps a path string to the primary key used by the record store.
// It performs no I/O and never fails.
package mediatypes
