// Package api implements the transport-neutral workflows shared by the CLI
// and the daemon's HTTP surface: submitting audio for transcription,
// listing and describing jobs, cancellation, and transcript export. It
// validates input before a job is created and converts store records into
// JSON-friendly views.
package api
