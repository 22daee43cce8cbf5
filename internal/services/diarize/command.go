package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"quill/internal/config"
)

// CommandDiarizer runs an external diarization tool (e.g. a pyannote
// wrapper). The tool receives the audio path and prints a JSON array of
// {"start", "end", "speaker"} turns on stdout.
type CommandDiarizer struct {
	command string
	timeout time.Duration
}

// NewCommandDiarizer builds a diarizer from the diarization config section.
func NewCommandDiarizer(cfg config.Diarization) *CommandDiarizer {
	return &CommandDiarizer{
		command: strings.TrimSpace(cfg.Command),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Diarize implements Diarizer.
func (d *CommandDiarizer) Diarize(ctx context.Context, audioPath string) ([]Turn, error) {
	if d.command == "" {
		return nil, fmt.Errorf("diarization command not configured")
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	args := []string{"--output-format", "json", "--", audioPath}
	cmd := exec.CommandContext(ctx, d.command, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(d.command), err, strings.TrimSpace(stderr.String()))
	}

	var turns []Turn
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &turns); err != nil {
		return nil, fmt.Errorf("diarize parse output: %w", err)
	}
	return turns, nil
}
