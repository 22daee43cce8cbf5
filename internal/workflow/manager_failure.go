package workflow

import (
	"context"
	"errors"
	"strings"

	"quill/internal/logging"
	"quill/internal/queue"
	"quill/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, job *queue.Job, stageErr error) {
	logger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := classifyStageFailure(stageName, stageErr)
	job.SetFailed(message)

	// The job context may already be expired (timeouts land here); detach so
	// the terminal status still persists.
	ctx = context.WithoutCancel(ctx)

	logger.Error("stage failed",
		logging.String(logging.FieldStage, stageName),
		logging.String("error_message", message),
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastJob(job)
	m.broadcast(job)
	if err := m.notifier.NotifyJobFailed(ctx, job.Title, message); err != nil {
		logger.Debug("job failed notification failed", logging.Error(err))
	}
}

func classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return stageName + " failed without error detail"
	}
	message := strings.TrimSpace(services.Message(stageErr))
	if message == "" {
		message = stageName + " failed"
	}
	return message
}
