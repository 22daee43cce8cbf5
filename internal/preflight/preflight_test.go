package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"quill/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckNtfy_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckNtfy(context.Background(), srv.URL+"/quill-jobs")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckNtfy_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	result := CheckNtfy(context.Background(), srv.URL+"/quill-jobs")
	if result.Passed {
		t.Fatal("expected failure for 5xx response")
	}
}

func TestCheckNtfy_MissingURL(t *testing.T) {
	result := CheckNtfy(context.Background(), "  ")
	if result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StorageDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Notifications.NtfyTopic = ""

	results := RunAll(context.Background(), &cfg)
	// Storage dir + storage headroom + log dir.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Name == "Storage headroom" {
			continue // depends on the host filesystem
		}
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDiskSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass for 1-byte requirement, got: %s", result.Detail)
	}
	if result := CheckDiskSpace("space", dir, 1<<62); result.Passed {
		t.Fatal("expected failure for absurd requirement")
	}
	if result := CheckDiskSpace("space", filepath.Join(dir, "missing"), 1); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestRunAll_IncludesNtfyWhenConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.StorageDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.Notifications.NtfyTopic = srv.URL + "/quill-jobs"

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Notifications" {
			found = true
			if !r.Passed {
				t.Errorf("ntfy check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected ntfy check in results")
	}
}

func TestCheckSystemDepsHonorsFeatureToggles(t *testing.T) {
	cfg := config.Default()
	cfg.ASR.Command = "whisper-cli"
	cfg.VAD.Command = ""
	cfg.Diarization.Enabled = false
	cfg.Translation.Enabled = false

	results := CheckSystemDeps(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 base requirements, got %d", len(results))
	}

	cfg.Diarization.Enabled = true
	cfg.Diarization.Command = "diarize"
	cfg.Translation.Enabled = true
	cfg.Translation.Command = "translate"
	cfg.VAD.Command = "silero-vad"

	results = CheckSystemDeps(&cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 requirements with all features on, got %d", len(results))
	}
}
