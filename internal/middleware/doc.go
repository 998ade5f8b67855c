// Package middleware provides HTTP middleware for the inventory API.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//
// Health probes and event polling can be left out of the access log.
package middleware
