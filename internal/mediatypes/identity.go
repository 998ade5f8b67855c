package mediatypes

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdentityOf derives the store key for a file from its path string.
//
// The key is the hex SHA-256 of the path bytes exactly as given, so the same
// path always maps to the same identity and two distinct paths collide only
// with negligible (2^-128 birthday) probability. Paths are not cleaned or
// case-folded; callers pass absolute paths.
func IdentityOf(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}
