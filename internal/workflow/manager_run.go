package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quill/internal/logging"
	"quill/internal/queue"
)

// Start begins background processing. Jobs left in processing by a previous
// daemon run are reset to queued before the workers launch.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	workers := m.workerCount()
	m.wg.Add(workers)
	m.mu.Unlock()

	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.logger.Warn("failed to reset stuck processing jobs", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("requeued jobs interrupted by previous shutdown", logging.Int64("count", reset))
	}

	for i := 0; i < workers; i++ {
		go m.runWorker(runCtx, i)
	}
	return nil
}

// Stop terminates background processing and waits for workers to finish.
// In-flight jobs are interrupted via context cancellation and requeued on
// the next Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runWorker(ctx context.Context, index int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", index))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Only the first worker reclaims so the queue is not hammered with
		// identical sweeps.
		if index == 0 {
			if err := m.heartbeat.ReclaimStaleJobs(ctx, logger); err != nil {
				logger.Warn("reclaim stale processing failed; stuck jobs may remain",
					logging.Error(err),
					logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
					logging.String(logging.FieldErrorHint, "check job database access"),
				)
			}
		}

		job, err := m.claimNext(ctx)
		if err != nil {
			m.handleClaimError(ctx, logger, err)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx)
			continue
		}

		if err := m.processJob(ctx, logger, job); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return
			}
		}
	}
}

// claimNext atomically takes the oldest queued job and moves it to
// processing, so two workers can never claim the same job.
func (m *Manager) claimNext(ctx context.Context) (*queue.Job, error) {
	m.claimMu.Lock()
	defer m.claimMu.Unlock()

	job, err := m.store.NextQueued(ctx)
	if err != nil || job == nil {
		return nil, err
	}

	now := time.Now().UTC()
	job.Status = queue.StatusProcessing
	job.StartedAt = &now
	job.LastHeartbeat = &now
	job.ErrorMessage = ""
	job.SetProgress("Starting", "Job claimed by worker", 0)
	if err := m.store.Update(ctx, job); err != nil {
		return nil, err
	}
	m.setLastJob(job)
	m.broadcast(job)
	return job, nil
}

func (m *Manager) handleClaimError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to claim next queued job",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check job database access"),
	)
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}
