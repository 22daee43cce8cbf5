package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JobView describes a transcription job in a transport-friendly format.
type JobView struct {
	ID                int64       `json:"id"`
	UUID              string      `json:"uuid"`
	Title             string      `json:"title"`
	SourcePath        string      `json:"sourcePath"`
	Status            string      `json:"status"`
	Progress          JobProgress `json:"progress"`
	ErrorMessage      string      `json:"errorMessage,omitempty"`
	Notes             []string    `json:"notes,omitempty"`
	DurationSeconds   float64     `json:"durationSeconds,omitempty"`
	LanguageHint      string      `json:"languageHint,omitempty"`
	EnableDiarization bool        `json:"enableDiarization"`
	EnableTranslation bool        `json:"enableTranslation"`
	TargetLanguage    string      `json:"targetLanguage,omitempty"`
	CreatedAt         string      `json:"createdAt,omitempty"`
	StartedAt         string      `json:"startedAt,omitempty"`
	CompletedAt       string      `json:"completedAt,omitempty"`
}

// JobProgress captures stage progress information for a job.
type JobProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// SegmentView is a timestamped transcript span in API form.
type SegmentView struct {
	ChunkIndex   int     `json:"chunkIndex"`
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
	Text         string  `json:"text"`
	Speaker      string  `json:"speaker,omitempty"`
}

// SpeakerView aggregates speaking time for one diarized label.
type SpeakerView struct {
	Label        string  `json:"label"`
	TotalSeconds float64 `json:"totalSeconds"`
	SegmentCount int     `json:"segmentCount"`
}

// LanguageView reports a detected language.
type LanguageView struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// TranscriptView is the assembled result of a completed job.
type TranscriptView struct {
	JobID          int64         `json:"jobId"`
	FullText       string        `json:"fullText"`
	TranslatedText string        `json:"translatedText,omitempty"`
	TargetLanguage string        `json:"targetLanguage,omitempty"`
	Segments       []SegmentView `json:"segments"`
	Speakers       []SpeakerView `json:"speakers,omitempty"`
	Language       *LanguageView `json:"language,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastJob     *JobView       `json:"lastJob,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	JobDBPath    string         `json:"jobDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// JobResponse wraps a single job payload.
type JobResponse struct {
	Job JobView `json:"job"`
}

// SubmitRequest is the JSON body accepted by the submit endpoint.
type SubmitRequest struct {
	SourcePath        string `json:"sourcePath"`
	Title             string `json:"title,omitempty"`
	LanguageHint      string `json:"languageHint,omitempty"`
	EnableDiarization bool   `json:"enableDiarization,omitempty"`
	EnableTranslation bool   `json:"enableTranslation,omitempty"`
	TargetLanguage    string `json:"targetLanguage,omitempty"`
}

// ExportResponse wraps a rendered transcript document.
type ExportResponse struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}
