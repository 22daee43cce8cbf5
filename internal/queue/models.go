package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a transcription job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// UserCancelReason is the error message set when a user explicitly cancels a job.
const UserCancelReason = "Cancelled by user"

// DaemonStopReason is the error message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Failed     int
	Cancelled  int
	Completed  int
}

// DatabaseHealth captures diagnostic information about the job database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	MissingColumns   []string
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}

// Job represents a transcription job persisted in SQLite.
type Job struct {
	ID                int64
	UUID              string
	SourcePath        string
	ProcessedPath     string
	Title             string
	Checksum          string
	Status            Status
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	ProgressStage     string
	ProgressPercent   float64
	ProgressMessage   string
	ModelName         string
	LanguageHint      string
	EnableDiarization bool
	EnableTranslation bool
	TargetLanguage    string
	ChunkSeconds      float64
	DurationSeconds   float64
	NotesJSON         string
	CancelRequested   bool
	LastHeartbeat     *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status can no longer transition.
func IsTerminal(status Status) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// IsTerminal reports whether the job has reached a final state.
func (j Job) IsTerminal() bool {
	return IsTerminal(j.Status)
}

// IsProcessing returns true when the job reflects an in-flight operation.
func (j Job) IsProcessing() bool {
	return j.Status == StatusProcessing
}

// SetProgress updates the progress fields atomically. Percent never moves
// backwards within a job: late or duplicate checkpoints keep the highest
// value already recorded.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	if percent > j.ProgressPercent {
		j.ProgressPercent = percent
	}
}

// SetFailed marks the job as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (j *Job) SetFailed(message string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressMessage = message
	j.ProgressStage = "Failed"
	j.LastHeartbeat = nil
	j.CompletedAt = &now
}

// SetCancelled marks the job as cancelled.
func (j *Job) SetCancelled() {
	now := time.Now().UTC()
	j.Status = StatusCancelled
	j.ErrorMessage = UserCancelReason
	j.ProgressMessage = UserCancelReason
	j.ProgressStage = "Cancelled"
	j.LastHeartbeat = nil
	j.CompletedAt = &now
}

// SetCompleted marks the job as completed at 100 percent.
func (j *Job) SetCompleted(message string) {
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.ErrorMessage = ""
	j.SetProgress("Completed", message, 100)
	j.LastHeartbeat = nil
	j.CompletedAt = &now
}

// Notes returns the non-fatal warnings recorded for the job.
func (j Job) Notes() []string {
	if strings.TrimSpace(j.NotesJSON) == "" {
		return nil
	}
	var notes []string
	if err := json.Unmarshal([]byte(j.NotesJSON), &notes); err != nil {
		return nil
	}
	return notes
}

// AddNote appends a non-fatal warning to the job. Notes survive completion
// so operators can see which optional steps were skipped or degraded.
func (j *Job) AddNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	notes := append(j.Notes(), note)
	encoded, err := json.Marshal(notes)
	if err != nil {
		return
	}
	j.NotesJSON = string(encoded)
}
