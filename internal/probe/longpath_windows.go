//go:build windows

package probe

import (
	"path/filepath"
	"strings"
)

// longPath adds the extended-length prefix to paths containing non-ASCII
// characters so ffprobe can open them.
func longPath(path string) string {
	if strings.HasPrefix(path, `\\?\`) {
		return path
	}
	clean := filepath.Clean(path)
	for _, r := range clean {
		if r > 127 {
			return `\\?\` + strings.ReplaceAll(clean, "/", `\`)
		}
	}
	return clean
}
