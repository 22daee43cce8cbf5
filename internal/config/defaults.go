package config

const (
	defaultStorageDir         = "~/.local/share/quill/storage"
	defaultLogDir             = "~/.local/share/quill/logs"
	defaultAPIBind            = "127.0.0.1:8123"
	defaultASRCommand         = "omniasr"
	defaultASRModel           = "CTC_1B"
	defaultASRDevice          = "cuda"
	defaultASRTimeout         = 3600
	defaultASRBatchSize       = 4
	defaultVADThreshold       = 0.5
	defaultVADMinSpeechMs     = 250
	defaultVADMinSilenceMs    = 100
	defaultVADFrameMs         = 30
	defaultVADEnergyDB        = -40.0
	defaultChunkTarget        = 30.0
	defaultChunkTolerance     = 5.0
	defaultChunkMax           = 40.0
	defaultChunkOverlap       = 0.5
	defaultFallbackSpeaker    = "SPEAKER_00"
	defaultTranslateModel     = "nllb-200-distilled-600M"
	defaultTranslateTarget    = "eng"
	defaultTranslateTimeout   = 1800
	defaultDiarizeTimeout     = 1800
	defaultMaxUploadBytes     = 500 << 20
	defaultMaxDurationSec     = 36000
	defaultMaxConcurrentJobs  = 1
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultJobTimeoutSeconds  = 14400
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultAllowedExtensions() []string {
	return []string{
		"mp3", "wav", "m4a", "flac", "ogg", "webm", "mp4",
		"avi", "mkv", "mov", "aac", "wma", "aiff",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorageDir: defaultStorageDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		ASR: ASR{
			Command:        defaultASRCommand,
			Model:          defaultASRModel,
			Device:         defaultASRDevice,
			TimeoutSeconds: defaultASRTimeout,
			BatchSize:      defaultASRBatchSize,
		},
		VAD: VAD{
			Threshold:         defaultVADThreshold,
			MinSpeechMs:       defaultVADMinSpeechMs,
			MinSilenceMs:      defaultVADMinSilenceMs,
			FrameMs:           defaultVADFrameMs,
			EnergyThresholdDB: defaultVADEnergyDB,
		},
		Chunking: Chunking{
			TargetSeconds:    defaultChunkTarget,
			ToleranceSeconds: defaultChunkTolerance,
			MaxSeconds:       defaultChunkMax,
			OverlapSeconds:   defaultChunkOverlap,
		},
		Diarization: Diarization{
			TimeoutSeconds:  defaultDiarizeTimeout,
			FallbackSpeaker: defaultFallbackSpeaker,
		},
		Translation: Translation{
			Model:          defaultTranslateModel,
			TargetLanguage: defaultTranslateTarget,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		Ingest: Ingest{
			MaxUploadBytes:    defaultMaxUploadBytes,
			MaxDurationSec:    defaultMaxDurationSec,
			AllowedExtensions: defaultAllowedExtensions(),
		},
		Workflow: Workflow{
			MaxConcurrentJobs:  defaultMaxConcurrentJobs,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			JobTimeoutSeconds:  defaultJobTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			JobStarted:     true,
			JobCompleted:   true,
			Errors:         true,
		},
	}
}
