//go:build !windows

package probe

func longPath(path string) string {
	return path
}
