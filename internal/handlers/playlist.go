package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"video-inventory/internal/logging"
	"video-inventory/internal/playlist"
)

// ExportPlaylist writes an M3U playlist of the files named by repeated id
// query parameters, in request order. Without ids the whole inventory is
// exported. Unknown identities and files missing on disk are left out.
func (h *Handlers) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["id"]

	var paths []string
	if len(ids) == 0 {
		files, err := h.store.ListAll(r.Context())
		if err != nil {
			logging.Error("failed to list files for playlist: %v", err)
			writeJSONError(w, "Failed to build playlist", http.StatusInternalServerError)
			return
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	} else {
		for _, id := range ids {
			rec, err := h.store.GetFile(r.Context(), id)
			if err != nil {
				logging.Error("failed to get file %s for playlist: %v", id, err)
				writeJSONError(w, "Failed to build playlist", http.StatusInternalServerError)
				return
			}
			if rec == nil {
				logging.Debug("playlist export: unknown identity %s", id)
				continue
			}
			paths = append(paths, rec.Path)
		}
	}

	pl := playlist.New("inventory", paths)

	var buf bytes.Buffer
	if err := playlist.WriteM3U(&buf, pl); err != nil {
		if errors.Is(err, playlist.ErrEmptyPlaylist) {
			writeJSONError(w, "No existing files to export", http.StatusNotFound)
			return
		}
		logging.Error("failed to write playlist: %v", err)
		writeJSONError(w, "Failed to build playlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.m3u"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Error("failed to send playlist: %v", err)
	}
}
