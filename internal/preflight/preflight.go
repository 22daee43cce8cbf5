package preflight

import (
	"context"

	"quill/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minStorageBytes is the headroom required on the storage filesystem before
// the daemon accepts work. Converted WAV plus chunk copies roughly triple the
// source footprint.
const minStorageBytes = 1 << 30

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Storage directory (always checked)
	storage := CheckDirectoryAccess("Storage directory", cfg.Paths.StorageDir)
	results = append(results, storage)
	if storage.Passed {
		results = append(results, CheckDiskSpace("Storage headroom", cfg.Paths.StorageDir, minStorageBytes))
	}

	// Log directory (when configured)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	// ntfy
	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNtfy(ctx, cfg.Notifications.NtfyTopic))
	}

	return results
}
