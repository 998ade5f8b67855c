package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"video-inventory/internal/database"
	"video-inventory/internal/filesystem"
	"video-inventory/internal/logging"
	"video-inventory/internal/mediatypes"
	"video-inventory/internal/metrics"
	"video-inventory/internal/progress"
)

// discoveryReportEvery controls how often a running count is reported while
// walking.
const discoveryReportEvery = 10

// WorkItem is one video file discovered under the scan root. The same list
// feeds both phases.
type WorkItem struct {
	Path       string
	Identity   string
	Name       string
	Extension  string
	SizeBytes  int64
	ModifiedAt time.Time
}

// Attributes returns the filesystem field group for an upsert.
func (w WorkItem) Attributes() database.Attributes {
	return database.Attributes{
		Name:       w.Name,
		Extension:  w.Extension,
		Path:       w.Path,
		SizeBytes:  w.SizeBytes,
		ModifiedAt: w.ModifiedAt,
	}
}

func newWorkItem(path string, info fs.FileInfo) WorkItem {
	return WorkItem{
		Path:       path,
		Identity:   mediatypes.IdentityOf(path),
		Name:       filepath.Base(path),
		Extension:  filepath.Ext(path),
		SizeBytes:  info.Size(),
		ModifiedAt: info.ModTime(),
	}
}

// validateRoot resolves root to an absolute directory path.
func validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}

	info, err := filesystem.StatWithRetry(abs, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidRoot, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}

	return abs, nil
}

// discover walks root and returns the video files beneath it together with
// the number of non-video files skipped. Directory symlinks are not followed,
// so the walk cannot loop; symlinks to regular files are included.
func (idx *Indexer) discover(ctx context.Context, run *runState, root string) ([]WorkItem, int, error) {
	var items []WorkItem
	nonVideo := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return fs.SkipAll
		default:
		}

		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, ok := regularFileInfo(path, d)
		if !ok {
			return nil
		}

		if !mediatypes.IsVideo(path) {
			nonVideo++
			metrics.ScanFilesDiscovered.WithLabelValues("other").Inc()
			logging.Info("Skipping %s (not a video)", path)
			idx.emit(run, progress.Event{Kind: progress.KindNonVideo, Path: path})
			return nil
		}

		metrics.ScanFilesDiscovered.WithLabelValues("video").Inc()
		items = append(items, newWorkItem(path, info))
		if len(items)%discoveryReportEvery == 0 {
			idx.emit(run, progress.Event{
				Kind:    progress.KindDiscovery,
				Message: fmt.Sprintf("found %d video files...", len(items)),
			})
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return items, nonVideo, fmt.Errorf("walk error: %w", err)
	}

	return items, nonVideo, ctx.Err()
}

// regularFileInfo returns the info for path when it is, or links to, a
// regular file.
func regularFileInfo(path string, d fs.DirEntry) (fs.FileInfo, bool) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			logging.Debug("Skipping broken symlink %s: %v", path, err)
			return nil, false
		}
		return info, info.Mode().IsRegular()
	}

	if !d.Type().IsRegular() {
		return nil, false
	}

	info, err := d.Info()
	if err != nil {
		logging.Warn("Error getting info for %s: %v", path, err)
		return nil, false
	}
	return info, true
}
