package pipeline

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"quill/internal/config"
	"quill/internal/langid"
	"quill/internal/services"
	"quill/internal/services/translate"
	"quill/internal/stage"
)

// Translate renders the transcript into the configured target language.
// Translation failures never fail the job: the transcript is still useful
// without the translation, so failures are recorded as notes instead.
type Translate struct {
	cfg        *config.Config
	translator translate.Translator
}

// NewTranslate constructs the translation stage.
func NewTranslate(cfg *config.Config, translator translate.Translator) *Translate {
	return &Translate{cfg: cfg, translator: translator}
}

// TargetLanguage resolves the target for a job: the job-level override
// wins, falling back to the daemon default.
func (t *Translate) TargetLanguage(st *stage.State) string {
	if target := strings.TrimSpace(st.Job.TargetLanguage); target != "" {
		return langid.Normalize(target)
	}
	return langid.Normalize(t.cfg.Translation.TargetLanguage)
}

// Enabled reports whether translation should run for this job. Translating
// into the transcript's own language is skipped.
func (t *Translate) Enabled(st *stage.State) bool {
	if !t.cfg.Translation.Enabled || !st.Job.EnableTranslation || t.translator == nil {
		return false
	}
	target := t.TargetLanguage(st)
	return target != "" && target != st.Language.Code
}

// Prepare verifies language detection ran; the translator needs the source
// language code.
func (t *Translate) Prepare(_ context.Context, st *stage.State) error {
	if st.Language.Code == "" {
		return services.Wrap(services.ErrFatalStage, "translate", "prepare",
			"No source language available for translation", nil)
	}
	return nil
}

// Execute translates the non-empty chunk transcripts in one batch call,
// preserving per-chunk alignment in the output.
func (t *Translate) Execute(ctx context.Context, st *stage.State) error {
	job := st.Job
	target := t.TargetLanguage(st)
	st.Progress(percentTranslateStart, fmt.Sprintf("Translating %s to %s", st.Language.Code, target))

	indexes := make([]int, 0, len(st.Transcripts))
	texts := make([]string, 0, len(st.Transcripts))
	for i, text := range st.Transcripts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		indexes = append(indexes, i)
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		job.AddNote("Translation skipped: no transcript text")
		return nil
	}

	translated, err := t.translator.TranslateBatch(ctx, texts, st.Language.Code, target)
	if err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrFatalStage, "translate", "batch",
				"Translation interrupted", ctx.Err())
		}
		job.AddNote(fmt.Sprintf("Translation to %s failed: %s", target, services.Message(err)))
		return nil
	}
	if len(translated) != len(texts) {
		job.AddNote(fmt.Sprintf("Translation to %s failed: got %d outputs for %d inputs", target, len(translated), len(texts)))
		return nil
	}

	aligned := make([]string, len(st.Transcripts))
	for i, idx := range indexes {
		aligned[idx] = translated[i]
	}
	st.Translations = aligned
	st.Progress(percentTranslateDone, fmt.Sprintf("Translated %d chunks to %s", len(texts), target))
	return nil
}

// HealthCheck reports whether the configured translation command resolves.
func (t *Translate) HealthCheck(context.Context) stage.Health {
	if !t.cfg.Translation.Enabled {
		return stage.Healthy("translate")
	}
	command := strings.TrimSpace(t.cfg.Translation.Command)
	if command == "" {
		return stage.Unhealthy("translate", "translation enabled but no command configured")
	}
	if _, err := exec.LookPath(command); err != nil {
		return stage.Unhealthy("translate", fmt.Sprintf("%s not found in PATH", command))
	}
	return stage.Healthy("translate")
}
