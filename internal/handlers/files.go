package handlers

import (
	"net/http"

	"video-inventory/internal/database"
	"video-inventory/internal/filesystem"
	"video-inventory/internal/logging"

	"github.com/gorilla/mux"
)

// FileListResponse wraps the inventory listing.
type FileListResponse struct {
	Files []database.FileRecord `json:"files"`
	Count int                   `json:"count"`
}

// OpenResponse tells the presentation layer whether a file can be opened.
type OpenResponse struct {
	Identity string `json:"identity"`
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
}

// ListFiles returns every stored record ordered by path.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.ListAll(r.Context())
	if err != nil {
		logging.Error("failed to list files: %v", err)
		writeJSONError(w, "Failed to list files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, FileListResponse{Files: files, Count: len(files)})
}

// GetFile returns one record by identity.
func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, rec)
}

// OpenFile resolves an identity to its path and checks the file is still on
// disk. Launching a player is left to the client.
func (h *Handlers) OpenFile(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, OpenResponse{
		Identity: rec.Identity,
		Path:     rec.Path,
		Exists:   filesystem.PathExistsOnDisk(rec.Path),
	})
}

// lookup loads the record named by the identity route variable, writing the
// error response itself when it cannot.
func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*database.FileRecord, bool) {
	identity := mux.Vars(r)["identity"]
	if identity == "" {
		writeJSONError(w, "Missing file identity", http.StatusBadRequest)
		return nil, false
	}

	rec, err := h.store.GetFile(r.Context(), identity)
	if err != nil {
		logging.Error("failed to get file %s: %v", identity, err)
		writeJSONError(w, "Failed to get file", http.StatusInternalServerError)
		return nil, false
	}
	if rec == nil {
		writeJSONError(w, "File not found", http.StatusNotFound)
		return nil, false
	}
	return rec, true
}

// GetStats returns inventory totals.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.CalculateStats(r.Context())
	if err != nil {
		logging.Error("failed to calculate stats: %v", err)
		writeJSONError(w, "Failed to calculate stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, stats)
}
