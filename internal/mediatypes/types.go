package mediatypes

import (
	"mime"
	"path/filepath"
	"strings"
)

// FileType represents the content category of a file.
type FileType string

const (
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents any file the scanner does not inventory.
	FileTypeOther FileType = "other"
)

// VideoExtensions maps file extensions to whether they are known video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
	".m2ts": true,
	".vob":  true,
	".ogv":  true,
}

// MimeTypes maps file extensions to their MIME types. Lookups fall back to the
// platform MIME database for anything not listed here.
var MimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
	".m2ts": "video/mp2t",
	".vob":  "video/mpeg",
	".ogv":  "video/ogg",

	".m3u": "audio/x-mpegurl",
	".txt": "text/plain",
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mkv").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if m, ok := MimeTypes[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		// Strip parameters such as "; charset=utf-8"
		if idx := strings.Index(m, ";"); idx != -1 {
			m = m[:idx]
		}
		return strings.TrimSpace(m)
	}
	return "application/octet-stream"
}

// GetFileType returns the FileType for a given file extension.
func GetFileType(ext string) FileType {
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	if strings.HasPrefix(GetMimeType(ext), "video/") {
		return FileTypeVideo
	}
	return FileTypeOther
}

// IsVideo reports whether path names a video file, judged by its extension
// alone. The file is never opened, so videos with unusual extensions are
// missed.
func IsVideo(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return GetFileType(ext) == FileTypeVideo
}
