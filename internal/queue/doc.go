// Package queue persists transcription jobs and their results in SQLite and
// exposes helpers for driving the job lifecycle.
//
// The Store manages database connections, schema migrations, stats queries,
// heartbeat tracking, stuck-job recovery, and cancellation flags. Jobs capture
// progress checkpoints, submission options, and non-fatal notes so the
// workflow manager and the API can coordinate without additional state.
// Completed jobs carry their transcript segments, speaker aggregates,
// detected languages, and translations in side tables keyed by job id.
//
// Terminal statuses (completed, failed, cancelled) are final: Update refuses
// to modify a job once it has reached one, so late writers cannot resurrect a
// finished job.
package queue
