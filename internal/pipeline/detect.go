package pipeline

import (
	"context"
	"fmt"
	"strings"

	"quill/internal/langid"
	"quill/internal/services"
	"quill/internal/stage"
)

// Language detection sources recorded alongside the detected code.
const (
	languageSourceHint   = "hint"
	languageSourceScript = "script"
)

// DetectLanguage identifies the transcript language. A submitter-provided
// hint short-circuits detection and is recorded with full confidence.
type DetectLanguage struct {
	detector langid.Detector
}

// NewDetectLanguage constructs the language detection stage.
func NewDetectLanguage(detector langid.Detector) *DetectLanguage {
	return &DetectLanguage{detector: detector}
}

// Prepare verifies transcription ran.
func (d *DetectLanguage) Prepare(_ context.Context, st *stage.State) error {
	if st.Transcripts == nil {
		return services.Wrap(services.ErrFatalStage, "detect language", "prepare",
			"No transcripts available for language detection", nil)
	}
	return nil
}

// Execute resolves the transcript language from the hint or from script
// analysis of the joined transcript text.
func (d *DetectLanguage) Execute(_ context.Context, st *stage.State) error {
	job := st.Job

	if hint := strings.TrimSpace(job.LanguageHint); hint != "" {
		code := langid.Normalize(hint)
		st.Language = langid.Detection{
			Code:       code,
			Name:       langid.Name(code),
			Confidence: 1.0,
		}
		st.LanguageSource = languageSourceHint
		st.Progress(percentLanguage, fmt.Sprintf("Language %s from submitter hint", code))
		return nil
	}

	detection, err := d.detector.Detect(strings.Join(st.Transcripts, " "))
	if err != nil {
		return services.Wrap(services.ErrFatalStage, "detect language", "detect",
			"Language detection failed", err)
	}
	st.Language = detection
	st.LanguageSource = languageSourceScript
	st.Progress(percentLanguage, fmt.Sprintf("Detected language %s (%.0f%% confidence)", detection.Code, detection.Confidence*100))
	return nil
}

// HealthCheck is always ready; detection runs in-process.
func (d *DetectLanguage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("detect-language")
}
