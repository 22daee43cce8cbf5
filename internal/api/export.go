package api

import (
	"context"
	"fmt"
	"strings"

	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/transcript"
)

// Export formats accepted by the CLI and the HTTP endpoint.
const (
	FormatText = "text"
	FormatSRT  = "srt"
	FormatVTT  = "vtt"
)

// Transcript loads the stored result of a job and assembles its API view.
// Returns nil when the job does not exist.
func Transcript(ctx context.Context, store *queue.Store, jobID int64) (*TranscriptView, error) {
	job, err := store.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	segments, err := store.SegmentsForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	speakers, err := store.SpeakersForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	languages, err := store.DetectedLanguagesForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	translations, err := store.TranslationsForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result := transcript.Assemble(segments, nil)
	view := &TranscriptView{
		JobID:    jobID,
		FullText: result.FullText,
	}
	for _, segment := range segments {
		view.Segments = append(view.Segments, SegmentView{
			ChunkIndex:   segment.ChunkIndex,
			StartSeconds: segment.StartSeconds,
			EndSeconds:   segment.EndSeconds,
			Text:         segment.Text,
			Speaker:      segment.Speaker,
		})
	}
	for _, speaker := range speakers {
		view.Speakers = append(view.Speakers, SpeakerView{
			Label:        speaker.Label,
			TotalSeconds: speaker.TotalSeconds,
			SegmentCount: speaker.SegmentCount,
		})
	}
	if len(languages) > 0 {
		view.Language = &LanguageView{
			Code:       languages[0].Code,
			Confidence: languages[0].Confidence,
			Source:     languages[0].Source,
		}
	}
	if len(translations) > 0 {
		view.TranslatedText = translations[0].Text
		view.TargetLanguage = translations[0].TargetLanguage
	}
	return view, nil
}

// Export renders a job's transcript in the requested format. The job must
// exist and have stored segments.
func Export(ctx context.Context, store *queue.Store, jobID int64, format string) (string, error) {
	job, err := store.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job == nil {
		return "", services.Wrap(services.ErrValidation, "export", "load",
			fmt.Sprintf("Job %d not found", jobID), nil)
	}

	segments, err := store.SegmentsForJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", services.Wrap(services.ErrValidation, "export", "load",
			fmt.Sprintf("Job %d has no transcript; is it completed?", jobID), nil)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "":
		result := transcript.Assemble(segments, nil)
		return result.FullText + "\n", nil
	case FormatSRT:
		return transcript.RenderSRT(segments), nil
	case FormatVTT:
		return transcript.RenderVTT(segments), nil
	default:
		return "", services.Wrap(services.ErrValidation, "export", "format",
			fmt.Sprintf("Unknown export format %q (want text, srt, or vtt)", format), nil)
	}
}
