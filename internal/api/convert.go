package api

import (
	"sort"

	"quill/internal/queue"
	"quill/internal/workflow"
)

// FromJob converts a store record into its API view.
func FromJob(job *queue.Job) JobView {
	if job == nil {
		return JobView{}
	}
	view := JobView{
		ID:         job.ID,
		UUID:       job.UUID,
		Title:      job.Title,
		SourcePath: job.SourcePath,
		Status:     string(job.Status),
		Progress: JobProgress{
			Stage:   job.ProgressStage,
			Percent: job.ProgressPercent,
			Message: job.ProgressMessage,
		},
		ErrorMessage:      job.ErrorMessage,
		Notes:             job.Notes(),
		DurationSeconds:   job.DurationSeconds,
		LanguageHint:      job.LanguageHint,
		EnableDiarization: job.EnableDiarization,
		EnableTranslation: job.EnableTranslation,
		TargetLanguage:    job.TargetLanguage,
	}
	if !job.CreatedAt.IsZero() {
		view.CreatedAt = job.CreatedAt.Format(dateTimeFormat)
	}
	if job.StartedAt != nil {
		view.StartedAt = job.StartedAt.Format(dateTimeFormat)
	}
	if job.CompletedAt != nil {
		view.CompletedAt = job.CompletedAt.Format(dateTimeFormat)
	}
	return view
}

// FromJobs converts a slice of store records.
func FromJobs(jobs []*queue.Job) []JobView {
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, FromJob(job))
	}
	return views
}

// FromStatusSummary converts workflow diagnostics into the API shape.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:    summary.Running,
		LastError:  summary.LastError,
		QueueStats: MergeQueueStats(summary.QueueStats),
	}
	if summary.LastJob != nil {
		view := FromJob(summary.LastJob)
		status.LastJob = &view
	}
	names := make([]string, 0, len(summary.StageHealth))
	for name := range summary.StageHealth {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		health := summary.StageHealth[name]
		status.StageHealth = append(status.StageHealth, StageHealth{
			Name:   health.Name,
			Ready:  health.Ready,
			Detail: health.Detail,
		})
	}
	return status
}

// MergeQueueStats normalizes status counts, filling zero entries for every
// known status so consumers render stable tables.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	merged := make(map[string]int, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		merged[string(status)] = 0
	}
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}
