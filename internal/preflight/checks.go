package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"quill/internal/config"
	"quill/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies that the filesystem holding path has at least
// minBytes available.
func CheckDiskSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, need %.1f GiB)",
			path, float64(available)/(1<<30), float64(minBytes)/(1<<30))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, float64(available)/(1<<30))}
}

// CheckNtfy verifies that the configured ntfy endpoint answers HTTP requests.
// Auth failures still prove reachability, so anything below 500 passes.
func CheckNtfy(ctx context.Context, endpoint string) Result {
	const name = "Notifications"

	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return Result{Name: name, Detail: "missing topic url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, endpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("endpoint unhealthy (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckSystemDeps evaluates all external tools for the given config.
// Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Required for audio conversion",
		},
		{
			Name:        "FFprobe",
			Command:     "ffprobe",
			Description: "Required for media inspection",
		},
		{
			Name:        "Transcriber",
			Command:     cfg.ASR.Command,
			Description: "Required for speech recognition",
		},
	}
	if strings.TrimSpace(cfg.VAD.Command) != "" {
		requirements = append(requirements, deps.Requirement{
			Name:        "VAD",
			Command:     cfg.VAD.Command,
			Description: "External voice activity detector",
			Optional:    true,
		})
	}
	if cfg.Diarization.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "Diarizer",
			Command:     cfg.Diarization.Command,
			Description: "Required for speaker identification",
		})
	}
	if cfg.Translation.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "Translator",
			Command:     cfg.Translation.Command,
			Description: "Required for transcript translation",
		})
	}
	return deps.CheckBinaries(requirements)
}
