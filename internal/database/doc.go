// Package database provides the SQLite record store for the video inventory.
//
// Each row in the files table describes one video, keyed by the identity
// derived from its path, with a secondary index on path for re-scan lookups.
// Records carry three field groups: filesystem attributes, probe metadata and
// the content fingerprint. Upsert always refreshes the attributes and replaces
// the other two groups only when supplied, so the metadata and hash phases of
// a scan never clobber each other's results.
//
// The store is an append/update log of observations. Nothing is deleted when
// a file disappears from disk.
//
// The database uses WAL mode so readers are never blocked by a running scan.
// A small metadata table records the last completed scan.
package database
