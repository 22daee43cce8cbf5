// Package pipeline implements the transcription stages advanced by the
// workflow manager: loading audio, segmenting and chunking, diarization,
// batched transcription with sequential fallback, language detection,
// translation, and final result assembly. Each stage is a stage.Handler
// operating on the shared per-job State.
package pipeline
