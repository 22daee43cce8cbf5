// Command quill is the operator CLI for the Quill transcription daemon.
//
// Queue commands talk straight to the shared SQLite database, so they work
// whether or not quilld is running. The status command additionally asks the
// daemon's HTTP API for live workflow health when it is reachable.
package main
