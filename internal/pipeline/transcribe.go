package pipeline

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"quill/internal/config"
	"quill/internal/services"
	"quill/internal/services/asr"
	"quill/internal/stage"
)

// Transcribe converts chunk audio into text. It first attempts one batch
// inference call over all chunks; if that fails it degrades to sequential
// per-chunk calls where individual failures are tolerated and recorded as
// notes rather than failing the job.
type Transcribe struct {
	cfg         *config.Config
	transcriber asr.Transcriber
}

// NewTranscribe constructs the transcription stage.
func NewTranscribe(cfg *config.Config, transcriber asr.Transcriber) *Transcribe {
	return &Transcribe{cfg: cfg, transcriber: transcriber}
}

// Prepare verifies chunk files were produced.
func (t *Transcribe) Prepare(_ context.Context, st *stage.State) error {
	if len(st.ChunkPaths) == 0 {
		return services.Wrap(services.ErrFatalStage, "transcribe", "prepare",
			"No chunk files available for transcription", nil)
	}
	return nil
}

// Execute transcribes every chunk. The result always has exactly one text
// per chunk, with empty strings standing in for tolerated per-chunk
// failures during degraded sequential processing.
func (t *Transcribe) Execute(ctx context.Context, st *stage.State) error {
	job := st.Job
	hint := job.LanguageHint

	texts, err := t.transcriber.TranscribeBatch(ctx, st.ChunkPaths, hint)
	if err == nil {
		if len(texts) != len(st.ChunkPaths) {
			return services.Wrap(services.ErrFatalStage, "transcribe", "batch",
				fmt.Sprintf("Batch returned %d transcripts for %d chunks", len(texts), len(st.ChunkPaths)), nil)
		}
		st.Transcripts = texts
		st.Progress(percentTranscribeDone, fmt.Sprintf("Transcribed %d chunks in one batch", len(texts)))
		return nil
	}
	if ctx.Err() != nil {
		return services.Wrap(services.ErrFatalStage, "transcribe", "batch",
			"Transcription interrupted", ctx.Err())
	}

	// Batch inference failed; degrade to one call per chunk so a single
	// bad chunk cannot sink the whole job.
	st.Degraded = true
	job.AddNote(fmt.Sprintf("Batch transcription failed, falling back to sequential: %s", services.Message(err)))

	span := percentTranscribeDone - percentTranscribeStart
	transcripts := make([]string, len(st.ChunkPaths))
	failed := 0
	for i, path := range st.ChunkPaths {
		text, chunkErr := t.transcriber.TranscribeOne(ctx, path, hint)
		if chunkErr != nil {
			if ctx.Err() != nil {
				return services.Wrap(services.ErrFatalStage, "transcribe", "sequential",
					"Transcription interrupted", ctx.Err())
			}
			failed++
			job.AddNote(fmt.Sprintf("Chunk %d transcription failed: %s", i, services.Message(chunkErr)))
			transcripts[i] = ""
		} else {
			transcripts[i] = text
		}
		percent := percentTranscribeStart + span*float64(i+1)/float64(len(st.ChunkPaths))
		st.Progress(percent, fmt.Sprintf("Transcribed chunk %d of %d", i+1, len(st.ChunkPaths)))
	}

	// Even an all-failed fallback completes the job; the empty transcripts
	// and per-chunk notes tell the user what happened.
	st.Transcripts = transcripts
	st.Progress(percentTranscribeDone, fmt.Sprintf("Transcribed %d of %d chunks sequentially", len(st.ChunkPaths)-failed, len(st.ChunkPaths)))
	return nil
}

// HealthCheck reports whether the configured ASR command resolves.
func (t *Transcribe) HealthCheck(context.Context) stage.Health {
	command := strings.TrimSpace(t.cfg.ASR.Command)
	if command == "" {
		return stage.Unhealthy("transcribe", "no ASR command configured")
	}
	if _, err := exec.LookPath(command); err != nil {
		return stage.Unhealthy("transcribe", fmt.Sprintf("%s not found in PATH", command))
	}
	return stage.Healthy("transcribe")
}
