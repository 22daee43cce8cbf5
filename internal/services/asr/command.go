package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quill/internal/config"
)

// CommandTranscriber runs an external ASR inference wrapper. The wrapper
// receives audio paths plus model parameters and prints a JSON array of
// transcripts (one per input, in order) on stdout.
type CommandTranscriber struct {
	command   string
	model     string
	device    string
	batchSize int
	timeout   time.Duration
}

// NewCommandTranscriber builds a transcriber from the ASR config section.
func NewCommandTranscriber(cfg config.ASR) *CommandTranscriber {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &CommandTranscriber{
		command:   strings.TrimSpace(cfg.Command),
		model:     cfg.Model,
		device:    cfg.Device,
		batchSize: cfg.BatchSize,
		timeout:   timeout,
	}
}

// TranscribeBatch implements Transcriber.
func (t *CommandTranscriber) TranscribeBatch(ctx context.Context, audioPaths []string, languageHint string) ([]string, error) {
	if len(audioPaths) == 0 {
		return nil, nil
	}
	texts, err := t.run(ctx, audioPaths, languageHint)
	if err != nil {
		return nil, err
	}
	if len(texts) != len(audioPaths) {
		return nil, fmt.Errorf("asr batch: got %d transcripts for %d inputs", len(texts), len(audioPaths))
	}
	for i := range texts {
		texts[i] = CleanRepetitions(texts[i])
	}
	return texts, nil
}

// TranscribeOne implements Transcriber.
func (t *CommandTranscriber) TranscribeOne(ctx context.Context, audioPath string, languageHint string) (string, error) {
	texts, err := t.run(ctx, []string{audioPath}, languageHint)
	if err != nil {
		return "", err
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("asr: empty result for %s", filepath.Base(audioPath))
	}
	return CleanRepetitions(texts[0]), nil
}

func (t *CommandTranscriber) run(ctx context.Context, audioPaths []string, languageHint string) ([]string, error) {
	if t.command == "" {
		return nil, fmt.Errorf("asr command not configured")
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := []string{
		"--model", t.model,
		"--device", t.device,
		"--output-format", "json",
	}
	if t.batchSize > 0 {
		args = append(args, "--batch-size", strconv.Itoa(t.batchSize))
	}
	if languageHint != "" {
		args = append(args, "--language", languageHint)
	}
	args = append(args, "--")
	args = append(args, audioPaths...)

	cmd := exec.CommandContext(ctx, t.command, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(t.command), err, strings.TrimSpace(stderr.String()))
	}

	var texts []string
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &texts); err != nil {
		return nil, fmt.Errorf("asr parse output: %w", err)
	}
	return texts, nil
}
