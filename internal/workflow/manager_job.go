package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quill/internal/logging"
	"quill/internal/progress"
	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/stage"
)

func (m *Manager) processJob(ctx context.Context, workerLogger *slog.Logger, job *queue.Job) error {
	jobStart := time.Now()
	requestID := uuid.NewString()
	jobCtx := services.WithJobID(ctx, job.ID)
	jobCtx = services.WithRequestID(jobCtx, requestID)

	if timeout := time.Duration(m.cfg.Workflow.JobTimeoutSeconds) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, timeout)
		defer cancel()
	}

	logger := logging.WithContext(jobCtx, workerLogger)
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("title", job.Title),
		logging.String("source_file", job.SourcePath),
	)
	if err := m.notifier.NotifyJobStarted(jobCtx, job.Title); err != nil {
		logger.Debug("job started notification failed", logging.Error(err))
	}

	st := &stage.State{Job: job}
	currentStage := ""
	st.Progress = func(percent float64, message string) {
		job.SetProgress(currentStage, message, percent)
		if err := m.store.Update(jobCtx, job); err != nil {
			logger.Warn("failed to persist progress checkpoint", logging.Error(err))
		}
		m.broadcast(job)
	}

	for _, stg := range m.stages {
		cancelled, err := m.checkCancellation(jobCtx, job)
		if err != nil {
			logger.Warn("cancellation check failed", logging.Error(err))
		}
		if cancelled {
			logger.Info("job cancelled",
				logging.String(logging.FieldEventType, "job_cancelled"),
				logging.String(logging.FieldStage, stg.Name),
			)
			return nil
		}

		if stg.Skip != nil && stg.Skip(st) {
			logger.Debug("stage skipped", logging.String(logging.FieldStage, stg.Name))
			continue
		}

		currentStage = stg.Name
		stageCtx := services.WithStage(jobCtx, stg.Name)
		if err := m.executeStage(stageCtx, logger, stg, st); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				logger.Debug("stage interrupted by shutdown", logging.String(logging.FieldStage, stg.Name))
				return err
			}
			m.handleStageFailure(jobCtx, stg.Name, job, err)
			m.setLastError(err)
			return err
		}
	}

	job.SetCompleted(fmt.Sprintf("Transcribed %.1fs of audio", job.DurationSeconds))
	if err := m.store.Update(jobCtx, job); err != nil {
		wrapped := fmt.Errorf("persist completion: %w", err)
		logger.Error("failed to persist job completion", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	m.setLastJob(job)
	m.broadcast(job)

	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Duration("job_duration", time.Since(jobStart)),
	)
	if err := m.notifier.NotifyJobCompleted(jobCtx, job.Title, time.Since(jobStart)); err != nil {
		logger.Debug("job completed notification failed", logging.Error(err))
	}
	return nil
}

func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, stg Stage, st *stage.State) error {
	stageStart := time.Now()
	stageLogger := logging.WithContext(ctx, logger)
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldStage, stg.Name),
	)

	if err := stg.Handler.Prepare(ctx, st); err != nil {
		return err
	}
	if err := m.store.Update(ctx, st.Job); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := m.executeWithHeartbeat(ctx, stg.Handler, st); err != nil {
		return err
	}

	if err := m.store.Update(ctx, st.Job); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	m.setLastJob(st.Job)
	m.broadcast(st.Job)

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String(logging.FieldStage, stg.Name),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, st *stage.State) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, st.Job.ID)

	execErr := handler.Execute(ctx, st)
	hbCancel()
	hbWG.Wait()
	return execErr
}

// checkCancellation refreshes the cancel flag from the store and, when set,
// moves the job to its terminal cancelled status.
func (m *Manager) checkCancellation(ctx context.Context, job *queue.Job) (bool, error) {
	current, err := m.store.GetByID(ctx, job.ID)
	if err != nil {
		return false, err
	}
	if current == nil || !current.CancelRequested {
		return false, nil
	}

	job.CancelRequested = true
	job.SetCancelled()
	if err := m.store.Update(ctx, job); err != nil {
		return true, err
	}
	m.setLastJob(job)
	m.broadcast(job)
	return true, nil
}

func (m *Manager) broadcast(job *queue.Job) {
	m.registry.Broadcast(progress.Event{
		JobID:   job.UUID,
		Status:  job.Status,
		Stage:   job.ProgressStage,
		Message: job.ProgressMessage,
		Percent: job.ProgressPercent,
	})
}
