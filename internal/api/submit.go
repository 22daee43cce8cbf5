package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/config"
	"quill/internal/logging"
	"quill/internal/media"
	"quill/internal/queue"
	"quill/internal/services"
)

// SubmitParams describes one audio file submission.
type SubmitParams struct {
	SourcePath        string
	Title             string
	LanguageHint      string
	EnableDiarization bool
	EnableTranslation bool
	TargetLanguage    string
}

// Submit validates a local audio file and enqueues a transcription job.
// Validation failures return errors tagged services.ErrValidation and no
// job is created.
func Submit(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger, params SubmitParams) (*queue.Job, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	absPath, err := validateSource(cfg, params.SourcePath)
	if err != nil {
		return nil, err
	}

	checksum, err := media.ChecksumFile(absPath)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "submit", "checksum",
			"Could not read source file", err)
	}

	job, err := store.NewJob(ctx, queue.NewJobParams{
		SourcePath:        absPath,
		Title:             params.Title,
		Checksum:          checksum,
		ModelName:         cfg.ASR.Model,
		LanguageHint:      params.LanguageHint,
		EnableDiarization: params.EnableDiarization,
		EnableTranslation: params.EnableTranslation,
		TargetLanguage:    params.TargetLanguage,
		ChunkSeconds:      cfg.Chunking.TargetSeconds,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "submit", "enqueue",
			"Job could not be enqueued", err)
	}

	logger.Info("job submitted",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("source_file", absPath),
		logging.String("title", job.Title),
	)
	return job, nil
}

func validateSource(cfg *config.Config, sourcePath string) (string, error) {
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "submit", "validate",
			"Source path is required", nil)
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "submit", "validate",
			"Source path could not be resolved", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "submit", "validate",
			fmt.Sprintf("Source file does not exist: %s", absPath), err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "submit", "validate",
			fmt.Sprintf("Source path is a directory: %s", absPath), nil)
	}

	ext := strings.ToLower(filepath.Ext(info.Name()))
	if !extensionAllowed(cfg.Ingest.AllowedExtensions, ext) {
		return "", services.Wrap(services.ErrValidation, "submit", "validate",
			fmt.Sprintf("Unsupported file extension %q", ext), nil)
	}

	if max := cfg.Ingest.MaxUploadBytes; max > 0 && info.Size() > max {
		return "", services.Wrap(services.ErrValidation, "submit", "validate",
			fmt.Sprintf("File exceeds size limit (%d > %d bytes)", info.Size(), max), nil)
	}
	return absPath, nil
}

func extensionAllowed(allowed []string, ext string) bool {
	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" {
			continue
		}
		if !strings.HasPrefix(candidate, ".") {
			candidate = "." + candidate
		}
		if candidate == ext {
			return true
		}
	}
	return false
}
