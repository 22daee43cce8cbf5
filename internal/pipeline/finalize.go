package pipeline

import (
	"context"
	"fmt"

	"quill/internal/chunking"
	"quill/internal/config"
	"quill/internal/langid"
	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/services/diarize"
	"quill/internal/stage"
	"quill/internal/transcript"
)

// Finalize assembles the per-chunk outputs into the stored result: segment
// rows, speaker aggregates, the detected language, and the translation. It
// also removes the per-job chunk directory.
type Finalize struct {
	cfg   *config.Config
	store *queue.Store
}

// NewFinalize constructs the result assembly stage.
func NewFinalize(cfg *config.Config, store *queue.Store) *Finalize {
	return &Finalize{cfg: cfg, store: store}
}

// Prepare verifies transcription produced one text per chunk.
func (f *Finalize) Prepare(_ context.Context, st *stage.State) error {
	if len(st.Transcripts) != len(st.Chunks) {
		return services.Wrap(services.ErrFatalStage, "finalize", "prepare",
			fmt.Sprintf("Have %d transcripts for %d chunks", len(st.Transcripts), len(st.Chunks)), nil)
	}
	return nil
}

// Execute persists the assembled result and cleans up chunk files.
func (f *Finalize) Execute(ctx context.Context, st *stage.State) error {
	job := st.Job

	segments := make([]queue.Segment, 0, len(st.Chunks))
	for i, chunk := range st.Chunks {
		speaker := ""
		if st.Job.EnableDiarization && f.cfg.Diarization.Enabled {
			speaker = diarize.SpeakerForSpan(st.Turns, chunk.Start, chunk.End, f.cfg.Diarization.FallbackSpeaker)
		}
		segments = append(segments, queue.Segment{
			JobID:        job.ID,
			ChunkIndex:   chunk.Index,
			StartSeconds: chunk.Start,
			EndSeconds:   chunk.End,
			Text:         st.Transcripts[i],
			Speaker:      speaker,
		})
	}

	result := transcript.Assemble(segments, st.Translations)

	if err := f.store.ReplaceSegments(ctx, job.ID, result.Segments); err != nil {
		return services.Wrap(services.ErrFatalStage, "finalize", "store segments",
			"Segments could not be persisted", err)
	}
	if err := f.store.ReplaceSpeakers(ctx, job.ID, result.Speakers); err != nil {
		return services.Wrap(services.ErrFatalStage, "finalize", "store speakers",
			"Speaker stats could not be persisted", err)
	}
	if st.Language.Code != "" {
		languages := []queue.DetectedLanguage{{
			JobID:      job.ID,
			Code:       st.Language.Code,
			Confidence: st.Language.Confidence,
			Source:     st.LanguageSource,
		}}
		if err := f.store.ReplaceDetectedLanguages(ctx, job.ID, languages); err != nil {
			return services.Wrap(services.ErrFatalStage, "finalize", "store language",
				"Detected language could not be persisted", err)
		}
	}
	if result.TranslatedText != "" {
		translation := queue.Translation{
			JobID:          job.ID,
			TargetLanguage: f.targetLanguage(st),
			SourceLanguage: st.Language.Code,
			Text:           result.TranslatedText,
			ModelName:      f.cfg.Translation.Model,
		}
		if err := f.store.SaveTranslation(ctx, translation); err != nil {
			return services.Wrap(services.ErrFatalStage, "finalize", "store translation",
				"Translation could not be persisted", err)
		}
	}

	if err := chunking.RemoveChunks(st.ChunkDir); err != nil {
		// Leftover chunk files waste disk but the result is already stored.
		job.AddNote(fmt.Sprintf("Chunk cleanup failed: %v", err))
	}

	st.Progress(percentComplete, fmt.Sprintf("Stored %d segments", len(result.Segments)))
	return nil
}

func (f *Finalize) targetLanguage(st *stage.State) string {
	if target := st.Job.TargetLanguage; target != "" {
		return langid.Normalize(target)
	}
	return langid.Normalize(f.cfg.Translation.TargetLanguage)
}

// HealthCheck reports whether the job store responds.
func (f *Finalize) HealthCheck(ctx context.Context) stage.Health {
	if _, err := f.store.Health(ctx); err != nil {
		return stage.Unhealthy("finalize", err.Error())
	}
	return stage.Healthy("finalize")
}
