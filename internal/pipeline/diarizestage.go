package pipeline

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"quill/internal/config"
	"quill/internal/services"
	"quill/internal/services/diarize"
	"quill/internal/stage"
)

// Diarize attributes speech spans to speakers. The stage only runs when
// both the job and the daemon opted in; the manager skips it otherwise.
type Diarize struct {
	cfg      *config.Config
	diarizer diarize.Diarizer
}

// NewDiarize constructs the diarization stage.
func NewDiarize(cfg *config.Config, diarizer diarize.Diarizer) *Diarize {
	return &Diarize{cfg: cfg, diarizer: diarizer}
}

// Enabled reports whether diarization should run for this job.
func (d *Diarize) Enabled(st *stage.State) bool {
	return d.cfg.Diarization.Enabled && st.Job.EnableDiarization && d.diarizer != nil
}

// Prepare verifies the converted audio file exists on disk; the diarizer
// reads the file rather than the in-memory samples.
func (d *Diarize) Prepare(_ context.Context, st *stage.State) error {
	if st.Job.ProcessedPath == "" {
		return services.Wrap(services.ErrFatalStage, "diarize", "prepare",
			"No processed audio available for diarization", nil)
	}
	return nil
}

// Execute runs the diarizer over the full converted file. Diarization was
// explicitly requested when this stage runs, so its failure fails the job
// rather than degrading silently.
func (d *Diarize) Execute(ctx context.Context, st *stage.State) error {
	turns, err := d.diarizer.Diarize(ctx, st.Job.ProcessedPath)
	if err != nil {
		return services.Wrap(services.ErrFatalStage, "diarize", "identify speakers",
			"Speaker diarization failed", err)
	}
	st.Turns = turns
	st.Progress(percentDiarized, fmt.Sprintf("Identified %d speakers in %d turns", len(diarize.Labels(turns)), len(turns)))
	return nil
}

// HealthCheck reports whether the configured diarization command resolves.
func (d *Diarize) HealthCheck(context.Context) stage.Health {
	if !d.cfg.Diarization.Enabled {
		return stage.Healthy("diarize")
	}
	command := strings.TrimSpace(d.cfg.Diarization.Command)
	if command == "" {
		return stage.Unhealthy("diarize", "diarization enabled but no command configured")
	}
	if _, err := exec.LookPath(command); err != nil {
		return stage.Unhealthy("diarize", fmt.Sprintf("%s not found in PATH", command))
	}
	return stage.Healthy("diarize")
}
