package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a minimal config file backed by temp directories
// and returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
storage_dir = %q
log_dir = %q
api_bind = ""
`, filepath.Join(base, "storage"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standup.mp3")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x5a}, 2048), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestQueueStatusEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, cfgPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestSubmitThenListAndCancel(t *testing.T) {
	cfgPath := writeTestConfig(t)
	audio := writeAudioFixture(t)

	out, err := runCommand(t, cfgPath, "submit", audio, "--title", "Standup")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(out, "Queued job 1") {
		t.Fatalf("unexpected submit output: %s", out)
	}

	out, err = runCommand(t, cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Standup") || !strings.Contains(out, "queued") {
		t.Fatalf("unexpected list output: %s", out)
	}

	out, err = runCommand(t, cfgPath, "cancel", "1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !strings.Contains(out, "cancelled") {
		t.Fatalf("unexpected cancel output: %s", out)
	}

	out, err = runCommand(t, cfgPath, "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Status:      cancelled") {
		t.Fatalf("unexpected show output: %s", out)
	}
}

func TestSubmitRejectsUnknownExtension(t *testing.T) {
	cfgPath := writeTestConfig(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := runCommand(t, cfgPath, "submit", path)
	if err == nil {
		t.Fatal("expected submit to reject a .txt file")
	}
}

func TestQueueClearRemovesCancelledViaAll(t *testing.T) {
	cfgPath := writeTestConfig(t)
	audio := writeAudioFixture(t)

	if _, err := runCommand(t, cfgPath, "submit", audio); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := runCommand(t, cfgPath, "cancel", "1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	out, err := runCommand(t, cfgPath, "queue", "clear", "--all")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	if !strings.Contains(out, "Removed 1 job(s)") {
		t.Fatalf("unexpected clear output: %s", out)
	}
}

func TestConfigValidateWithExplicitPath(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, cfgPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestConfigShowPrintsResolvedTOML(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[paths]") || !strings.Contains(out, "storage_dir") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestShowUnknownJobFails(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCommand(t, cfgPath, "show", "99"); err == nil {
		t.Fatal("expected show to fail for an unknown job")
	}
}
