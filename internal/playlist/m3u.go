package playlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"video-inventory/internal/filesystem"
)

// Header is the first line of every exported playlist.
const Header = "#EXTM3U"

// ErrEmptyPlaylist is returned when none of the requested paths exist on disk.
var ErrEmptyPlaylist = errors.New("no existing files to export")

// Playlist is a named list of files resolved against the filesystem.
type Playlist struct {
	Name  string         `json:"name"`
	Items []PlaylistItem `json:"items"`
	Count int            `json:"count"`
}

// PlaylistItem is one requested file and whether it is currently on disk.
type PlaylistItem struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// New resolves paths in order. Each path is cleaned; files that are gone are
// kept as items with Exists false so callers can report them.
func New(name string, paths []string) *Playlist {
	p := &Playlist{
		Name:  name,
		Items: make([]PlaylistItem, 0, len(paths)),
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		p.Items = append(p.Items, PlaylistItem{
			Name:   filepath.Base(clean),
			Path:   clean,
			Exists: filesystem.PathExistsOnDisk(clean),
		})
	}

	p.Count = len(p.Items)
	return p
}

// Existing returns the paths of items present on disk, in order.
func (p *Playlist) Existing() []string {
	var paths []string
	for _, item := range p.Items {
		if item.Exists {
			paths = append(paths, item.Path)
		}
	}
	return paths
}

// WriteM3U writes the header followed by one path per line for every item
// that exists. Missing files are left out; if nothing remains the writer is
// untouched and ErrEmptyPlaylist is returned.
func WriteM3U(w io.Writer, p *Playlist) error {
	paths := p.Existing()
	if len(paths) == 0 {
		return ErrEmptyPlaylist
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return fmt.Errorf("failed to write playlist header: %w", err)
	}
	for _, path := range paths {
		if _, err := fmt.Fprintln(bw, path); err != nil {
			return fmt.Errorf("failed to write playlist entry: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	return nil
}
