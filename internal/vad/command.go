package vad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"quill/internal/config"
	"quill/internal/media"
)

// CommandDetector shells out to an external VAD tool (e.g. a Silero wrapper).
// The tool receives a WAV path plus threshold parameters and prints a JSON
// array of {"start", "end"} intervals on stdout.
type CommandDetector struct {
	command   string
	threshold float64
	workDir   string
}

// NewCommandDetector builds a detector around the configured external command.
func NewCommandDetector(cfg config.VAD, workDir string) *CommandDetector {
	return &CommandDetector{
		command:   strings.TrimSpace(cfg.Command),
		threshold: cfg.Threshold,
		workDir:   workDir,
	}
}

// DetectSpeech implements Detector by round-tripping the audio through the
// external tool.
func (d *CommandDetector) DetectSpeech(ctx context.Context, audio media.Audio) ([]Interval, error) {
	if d.command == "" {
		return nil, fmt.Errorf("vad command not configured")
	}

	tmpDir := d.workDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	tmpFile, err := os.CreateTemp(tmpDir, "vad-*.wav")
	if err != nil {
		return nil, fmt.Errorf("vad temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := media.WriteWAV(tmpPath, audio); err != nil {
		return nil, fmt.Errorf("vad write audio: %w", err)
	}

	args := []string{
		"--input", tmpPath,
		"--threshold", fmt.Sprintf("%g", d.threshold),
		"--output-format", "json",
	}
	cmd := exec.CommandContext(ctx, d.command, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(d.command), err, strings.TrimSpace(stderr.String()))
	}

	var intervals []Interval
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &intervals); err != nil {
		return nil, fmt.Errorf("vad parse output: %w", err)
	}
	return intervals, nil
}
