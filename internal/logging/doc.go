// Package logging provides a simple leveled logging interface for the
// video inventory service and CLI.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-file probe output, pool start/stop)
//   - INFO: General operational messages (scan phases, summaries)
//   - WARN: Warning conditions (unreadable paths, per-file failures)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable (or
// DEBUG=true) and can be overridden at runtime with SetLevel.
package logging
