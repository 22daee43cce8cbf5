package translate

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

// CommandTranslator runs an external translation tool (an NLLB-200 wrapper
// by default). Input texts are passed as a JSON array on stdin; the tool
// prints a same-length JSON array of translations on stdout.
type CommandTranslator struct {
	command string
	model   string
	timeout time.Duration
}

// NewCommandTranslator builds a translator from the translation config section.
func NewCommandTranslator(cfg config.Translation) *CommandTranslator {
	return &CommandTranslator{
		command: strings.TrimSpace(cfg.Command),
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// TranslateBatch implements Translator.
func (t *CommandTranslator) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if t.command == "" {
		return nil, fmt.Errorf("translation command not configured")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("translate encode input: %w", err)
	}

	args := []string{
		"--model", t.model,
		"--source", NLLBCode(sourceLang),
		"--target", NLLBCode(targetLang),
		"--output-format", "json",
	}
	cmd := exec.CommandContext(ctx, t.command, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(t.command), err, strings.TrimSpace(stderr.String()))
	}

	var translated []string
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &translated); err != nil {
		return nil, fmt.Errorf("translate parse output: %w", err)
	}
	if len(translated) != len(texts) {
		return nil, fmt.Errorf("translate: got %d outputs for %d inputs", len(translated), len(texts))
	}
	return translated, nil
}
