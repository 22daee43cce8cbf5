// Package workflow advances transcription jobs through the pipeline stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and runs
// claimed jobs through the ordered stage sequence (load audio, chunk,
// diarize, transcribe, detect language, translate, finalize) while
// persisting progress checkpoints and fanning them out to live subscribers.
// Cancellation is cooperative: the flag is checked between stages and the
// job context is cancelled so external tool invocations stop promptly.
//
// Worker concurrency is bounded by config; each worker owns one job at a
// time from claim to terminal status.
package workflow
