package stage

import (
	"quill/internal/chunking"
	"quill/internal/langid"
	"quill/internal/media"
	"quill/internal/queue"
	"quill/internal/services/diarize"
	"quill/internal/vad"
)

// State is the in-memory context threaded through one job's stages. It is
// owned by the worker processing the job; nothing else touches it. Each
// stage reads what earlier stages produced and fills in its own outputs.
type State struct {
	Job *queue.Job

	// Progress reports an intra-stage checkpoint. Set by the manager; never
	// nil during Execute.
	Progress func(percent float64, message string)

	// LoadAudio outputs.
	Audio media.Audio

	// Segment & chunk outputs.
	Intervals  []vad.Interval
	Chunks     []chunking.Chunk
	ChunkDir   string
	ChunkPaths []string

	// Diarize outputs.
	Turns []diarize.Turn

	// Transcribe outputs. Transcripts has one entry per chunk; Degraded is
	// set when the batch call failed and the sequential fallback ran.
	Transcripts []string
	Degraded    bool

	// DetectLanguage outputs. LanguageSource records whether the code came
	// from the submitter's hint or from script analysis.
	Language       langid.Detection
	LanguageSource string

	// Translate outputs. Empty when translation is disabled, skipped, or
	// tolerated as failed.
	Translations []string
}
