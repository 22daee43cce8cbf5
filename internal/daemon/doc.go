// Package daemon hosts the long-running quill process: it enforces
// single-instance execution with a file lock, runs the workflow manager,
// and serves the HTTP API plus the per-job WebSocket progress endpoint.
package daemon
