package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"video-inventory/internal/indexer"
	"video-inventory/internal/logging"
)

// scanRequest is the optional body of POST /api/scan.
type scanRequest struct {
	Root string `json:"root"`
}

// scanResponse acknowledges a started scan.
type scanResponse struct {
	Status string `json:"status"`
	Root   string `json:"root"`
}

// TriggerScan starts a scan of the root given in the JSON body or the root
// query parameter; with neither, the configured root is scanned.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.Body != nil {
		if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Root == "" {
		req.Root = r.URL.Query().Get("root")
	}

	root, err := h.scanner.TriggerScan(req.Root)
	switch {
	case errors.Is(err, indexer.ErrScanInProgress):
		writeJSONStatus(w, http.StatusConflict, "already_running", "A scan is already in progress")
		return
	case errors.Is(err, indexer.ErrStopped):
		writeJSONStatus(w, http.StatusServiceUnavailable, "stopping", "The server is shutting down")
		return
	case errors.Is(err, indexer.ErrInvalidRoot):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logging.Error("failed to start scan: %v", err)
		writeJSONError(w, "Failed to start scan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, scanResponse{Status: "started", Root: root})
}

// CancelScan aborts the running scan. Undispatched files are reported as
// aborted by the scan itself.
func (h *Handlers) CancelScan(w http.ResponseWriter, _ *http.Request) {
	if !h.scanner.CancelScan() {
		writeJSONStatus(w, http.StatusConflict, "idle", "No scan is in progress")
		return
	}
	writeJSONStatus(w, http.StatusOK, "cancelling", "")
}

// GetScanProgress returns the progress of the current or last scan.
func (h *Handlers) GetScanProgress(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, h.scanner.GetProgress())
}
