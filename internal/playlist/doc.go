// Package playlist exports inventory selections as M3U playlists.
//
// The format is the minimal extended M3U used by most players: a "#EXTM3U"
// header followed by one absolute path per line. Paths are checked against
// the filesystem at export time and files that no longer exist are left out,
// so a playlist built from a stale inventory still plays.
package playlist
