package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StorageDir string `toml:"storage_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// ASR contains configuration for the speech recognition capability.
type ASR struct {
	Command        string `toml:"command"`
	Model          string `toml:"model"`
	Device         string `toml:"device"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BatchSize      int    `toml:"batch_size"`
}

// VAD contains configuration for voice activity detection.
type VAD struct {
	Command           string  `toml:"command"`
	Threshold         float64 `toml:"threshold"`
	MinSpeechMs       int     `toml:"min_speech_ms"`
	MinSilenceMs      int     `toml:"min_silence_ms"`
	FrameMs           int     `toml:"frame_ms"`
	EnergyThresholdDB float64 `toml:"energy_threshold_db"`
}

// Chunking contains the chunk planner parameters.
type Chunking struct {
	TargetSeconds    float64 `toml:"target_seconds"`
	ToleranceSeconds float64 `toml:"tolerance_seconds"`
	MaxSeconds       float64 `toml:"max_seconds"`
	OverlapSeconds   float64 `toml:"overlap_seconds"`
}

// Diarization contains configuration for the speaker diarization capability.
type Diarization struct {
	Enabled         bool   `toml:"enabled"`
	Command         string `toml:"command"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	FallbackSpeaker string `toml:"fallback_speaker"`
}

// Translation contains configuration for the translation capability.
type Translation struct {
	Enabled        bool   `toml:"enabled"`
	Command        string `toml:"command"`
	Model          string `toml:"model"`
	TargetLanguage string `toml:"target_language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Ingest contains limits applied to submitted audio files.
type Ingest struct {
	MaxUploadBytes    int64    `toml:"max_upload_bytes"`
	MaxDurationSec    int      `toml:"max_duration_seconds"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

// Workflow contains daemon timing, concurrency, and timeout settings.
type Workflow struct {
	MaxConcurrentJobs  int `toml:"max_concurrent_jobs"`
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
	JobTimeoutSeconds  int `toml:"job_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	JobStarted     bool   `toml:"job_started"`
	JobCompleted   bool   `toml:"job_completed"`
	Errors         bool   `toml:"errors"`
}

// Config encapsulates all configuration values for quill.
//
// Configuration sections by subsystem:
//   - Paths: storage/log directories and the API bind address
//   - ASR: speech recognition model and inference command
//   - VAD: voice activity detection parameters
//   - Chunking: chunk planner durations and overlap
//   - Diarization: speaker diarization capability
//   - Translation: translation capability and default target language
//   - Ingest: submission validation limits
//   - Workflow: worker concurrency, polling, heartbeats, job timeout
//   - Logging: log format and level
//   - Notifications: ntfy push notification settings
type Config struct {
	Paths         Paths         `toml:"paths"`
	ASR           ASR           `toml:"asr"`
	VAD           VAD           `toml:"vad"`
	Chunking      Chunking      `toml:"chunking"`
	Diarization   Diarization   `toml:"diarization"`
	Translation   Translation   `toml:"translation"`
	Ingest        Ingest        `toml:"ingest"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/quill/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all paths expanded and defaults applied. When path is empty the default
// location is used; a missing file yields defaults and loaded=false.
func Load(path string) (*Config, bool, string, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, false, "", err
		}
		resolved = defaultPath
	} else {
		expanded, err := expandPath(resolved)
		if err != nil {
			return nil, false, "", err
		}
		resolved = expanded
	}

	cfg := Default()
	loaded := false

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, false, resolved, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		loaded = true
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	default:
		return nil, false, resolved, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, loaded, resolved, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, loaded, resolved, err
	}
	return &cfg, loaded, resolved, nil
}

// WriteSample writes the embedded sample configuration to path, creating
// parent directories as needed. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the storage and log directory trees.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StorageDir,
		c.ProcessedDir(),
		c.ChunksDir(),
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ProcessedDir returns the directory holding converted WAV files.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.Paths.StorageDir, "processed")
}

// ChunksDir returns the root directory holding per-job chunk files.
func (c *Config) ChunksDir() string {
	return filepath.Join(c.Paths.StorageDir, "chunks")
}

func (c *Config) expandPaths() error {
	fields := []*string{
		&c.Paths.StorageDir,
		&c.Paths.LogDir,
	}
	for _, field := range fields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		trimmed = filepath.Join(home, trimmed[2:])
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
