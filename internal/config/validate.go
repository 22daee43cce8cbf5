package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateASR(); err != nil {
		return err
	}
	if err := c.validateVAD(); err != nil {
		return err
	}
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StorageDir) == "" {
		return errors.New("paths.storage_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateASR() error {
	if strings.TrimSpace(c.ASR.Command) == "" {
		return errors.New("asr.command must be set")
	}
	if c.ASR.TimeoutSeconds <= 0 {
		return errors.New("asr.timeout_seconds must be positive")
	}
	if c.ASR.BatchSize <= 0 {
		return errors.New("asr.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateVAD() error {
	if c.VAD.Threshold < 0 || c.VAD.Threshold > 1 {
		return errors.New("vad.threshold must be between 0 and 1")
	}
	if c.VAD.MinSpeechMs < 0 || c.VAD.MinSilenceMs < 0 {
		return errors.New("vad speech/silence durations must not be negative")
	}
	if c.VAD.FrameMs <= 0 {
		return errors.New("vad.frame_ms must be positive")
	}
	return nil
}

func (c *Config) validateChunking() error {
	ch := c.Chunking
	if ch.TargetSeconds <= 0 {
		return errors.New("chunking.target_seconds must be positive")
	}
	if ch.ToleranceSeconds < 0 {
		return errors.New("chunking.tolerance_seconds must not be negative")
	}
	if ch.ToleranceSeconds >= ch.TargetSeconds {
		return fmt.Errorf("chunking.tolerance_seconds %.1f must be below target_seconds %.1f", ch.ToleranceSeconds, ch.TargetSeconds)
	}
	if ch.MaxSeconds < ch.TargetSeconds {
		return fmt.Errorf("chunking.max_seconds %.1f must be at least target_seconds %.1f", ch.MaxSeconds, ch.TargetSeconds)
	}
	if ch.OverlapSeconds < 0 {
		return errors.New("chunking.overlap_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.MaxUploadBytes <= 0 {
		return errors.New("ingest.max_upload_bytes must be positive")
	}
	if len(c.Ingest.AllowedExtensions) == 0 {
		return errors.New("ingest.allowed_extensions must not be empty")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	wf := c.Workflow
	if wf.MaxConcurrentJobs <= 0 {
		return errors.New("workflow.max_concurrent_jobs must be positive")
	}
	if wf.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if wf.HeartbeatInterval <= 0 || wf.HeartbeatTimeout <= 0 {
		return errors.New("workflow heartbeat interval and timeout must be positive")
	}
	if wf.HeartbeatTimeout <= wf.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must exceed heartbeat_interval")
	}
	if wf.JobTimeoutSeconds <= 0 {
		return errors.New("workflow.job_timeout_seconds must be positive")
	}
	return nil
}

// AllowsExtension reports whether ext (without leading dot) is accepted for submission.
func (c *Config) AllowsExtension(ext string) bool {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if normalized == "" {
		return false
	}
	for _, allowed := range c.Ingest.AllowedExtensions {
		if strings.EqualFold(allowed, normalized) {
			return true
		}
	}
	return false
}
