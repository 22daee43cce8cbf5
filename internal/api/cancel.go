package api

import (
	"context"
	"fmt"

	"quill/internal/queue"
	"quill/internal/services"
)

// CancelOutcome reports how a cancellation request was resolved.
type CancelOutcome struct {
	Job *queue.Job
	// Immediate is true when the job was still queued and transitioned to
	// cancelled directly; false means a processing job will observe the
	// flag at its next stage boundary.
	Immediate bool
}

// Cancel requests cancellation of a job. Terminal jobs are rejected.
func Cancel(ctx context.Context, store *queue.Store, jobID int64) (CancelOutcome, error) {
	job, err := store.GetByID(ctx, jobID)
	if err != nil {
		return CancelOutcome{}, err
	}
	if job == nil {
		return CancelOutcome{}, services.Wrap(services.ErrValidation, "cancel", "load",
			fmt.Sprintf("Job %d not found", jobID), nil)
	}
	if job.IsTerminal() {
		return CancelOutcome{}, services.Wrap(services.ErrValidation, "cancel", "check",
			fmt.Sprintf("Job %d is already %s", jobID, job.Status), nil)
	}

	updated, err := store.RequestCancel(ctx, jobID)
	if err != nil {
		return CancelOutcome{}, err
	}
	return CancelOutcome{
		Job:       updated,
		Immediate: updated.Status == queue.StatusCancelled,
	}, nil
}
