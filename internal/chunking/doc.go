// Package chunking carves long audio into bounded-duration chunks for
// transcription. The planner is greedy and deterministic: it walks left to
// right, aims for the target duration, and prefers to cut inside pauses
// between detected speech intervals so no chunk boundary lands mid-word.
package chunking
