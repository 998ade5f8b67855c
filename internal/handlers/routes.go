package handlers

import (
	"net/http"

	"video-inventory/internal/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the health, version and API routes on r. API routes
// are registered with their full path on r itself: a method mismatch inside a
// mux subrouter is reported as 404 rather than 405.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Responses that grow with the inventory
	gzip := middleware.Compression(middleware.DefaultCompressionConfig())

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc("/api/scan", h.TriggerScan).Methods(http.MethodPost)
	r.HandleFunc("/api/scan", h.CancelScan).Methods(http.MethodDelete)
	r.HandleFunc("/api/scan", h.GetScanProgress).Methods(http.MethodGet)
	r.Handle("/api/files", gzip(http.HandlerFunc(h.ListFiles))).Methods(http.MethodGet)
	r.HandleFunc("/api/files/{identity}", h.GetFile).Methods(http.MethodGet)
	r.HandleFunc("/api/open/{identity}", h.OpenFile).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.GetStats).Methods(http.MethodGet)
	r.HandleFunc("/api/events", h.GetEvents).Methods(http.MethodGet)
	r.Handle("/api/playlist.m3u", gzip(http.HandlerFunc(h.ExportPlaylist))).Methods(http.MethodGet)
	r.HandleFunc("/api/version", h.GetVersion).Methods(http.MethodGet)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, "Method "+r.Method+" not allowed", http.StatusMethodNotAllowed)
}
