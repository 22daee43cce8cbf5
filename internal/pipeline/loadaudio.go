package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"quill/internal/config"
	"quill/internal/media"
	"quill/internal/services"
	"quill/internal/stage"
)

// LoadAudio converts the submitted file to the pipeline's working format
// and decodes it into memory.
type LoadAudio struct {
	cfg *config.Config
}

// NewLoadAudio constructs the audio loading stage.
func NewLoadAudio(cfg *config.Config) *LoadAudio {
	return &LoadAudio{cfg: cfg}
}

// Prepare verifies the source file still exists.
func (l *LoadAudio) Prepare(_ context.Context, st *stage.State) error {
	if _, err := os.Stat(st.Job.SourcePath); err != nil {
		return services.Wrap(services.ErrFatalStage, "load audio", "stat source",
			"Source audio file is missing", err)
	}
	return nil
}

// Execute transcodes the source to mono 16kHz WAV, decodes it, and records
// the duration and checksum on the job.
func (l *LoadAudio) Execute(ctx context.Context, st *stage.State) error {
	job := st.Job

	probe, err := media.Inspect(ctx, "ffprobe", job.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrFatalStage, "load audio", "inspect",
			"Source file could not be inspected", err)
	}
	if probe.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrFatalStage, "load audio", "inspect",
			"Source file contains no audio stream", nil)
	}
	if max := float64(l.cfg.Ingest.MaxDurationSec); max > 0 && probe.DurationSeconds() > max {
		return services.Wrap(services.ErrFatalStage, "load audio", "inspect",
			fmt.Sprintf("Audio runs %.0fs, above the %ds limit", probe.DurationSeconds(), l.cfg.Ingest.MaxDurationSec), nil)
	}

	processedPath := filepath.Join(l.cfg.ProcessedDir(), job.UUID+".wav")
	if err := media.ConvertToMono16k(ctx, "ffmpeg", job.SourcePath, processedPath); err != nil {
		return services.Wrap(services.ErrFatalStage, "load audio", "convert",
			"Audio conversion failed", err)
	}

	audio, err := media.ReadWAV(processedPath)
	if err != nil {
		return services.Wrap(services.ErrFatalStage, "load audio", "decode",
			"Converted audio could not be decoded", err)
	}
	if len(audio.Samples) == 0 {
		return services.Wrap(services.ErrFatalStage, "load audio", "decode",
			"Converted audio contains no samples", nil)
	}

	if job.Checksum == "" {
		checksum, err := media.ChecksumFile(job.SourcePath)
		if err != nil {
			return services.Wrap(services.ErrFatalStage, "load audio", "checksum",
				"Source checksum failed", err)
		}
		job.Checksum = checksum
	}

	st.Audio = audio
	job.ProcessedPath = processedPath
	job.DurationSeconds = audio.DurationSeconds()
	st.Progress(percentLoadAudio, fmt.Sprintf("Loaded %.1fs of audio", job.DurationSeconds))
	return nil
}

// HealthCheck reports whether ffmpeg is available.
func (l *LoadAudio) HealthCheck(context.Context) stage.Health {
	for _, binary := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("load-audio", binary+" not found in PATH")
		}
	}
	return stage.Healthy("load-audio")
}
