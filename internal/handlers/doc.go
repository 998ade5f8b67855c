// Package handlers implements the HTTP API over the video inventory.
//
// Commands:
//   - POST /api/scan: start a scan of {"root": "..."} or the configured root
//   - DELETE /api/scan: abort the running scan
//   - GET /api/scan: progress of the current scan
//
// Queries, all read-only against the store:
//   - GET /api/files and /api/files/{identity}: stored records
//   - GET /api/open/{identity}: path and whether it still exists on disk
//   - GET /api/stats: inventory totals
//   - GET /api/events[?wait=5s]: drain the progress event queue
//   - GET /api/playlist.m3u[?id=...]: M3U export of existing files
//
// Health probes (/health, /healthz, /livez, /readyz) and /version follow the
// usual container conventions. Handlers depend on the [Store] and [Scanner]
// interfaces so they can be exercised without a running scan.
package handlers
