package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quill/internal/config"
	"quill/internal/notifications"
	"quill/internal/progress"
	"quill/internal/queue"
	"quill/internal/stage"
)

// Stage pairs a handler with its name and an optional per-job skip rule.
type Stage struct {
	Name    string
	Handler stage.Handler
	// Skip reports whether this stage should be bypassed for the job. Nil
	// means the stage always runs.
	Skip func(*stage.State) bool
}

// Manager coordinates queue processing across a bounded worker pool.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	registry     *progress.Registry
	stages       []Stage
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor

	claimMu sync.Mutex

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// NewManager constructs a workflow manager. The stage slice defines the
// processing order; see pipeline.Stages for the standard sequence.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, registry *progress.Registry, stages []Stage) *Manager {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if registry == nil {
		registry = progress.NewRegistry()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		registry:     registry,
		stages:       stages,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// Registry exposes the progress fan-out so transports can subscribe
// websocket clients.
func (m *Manager) Registry() *progress.Registry {
	return m.registry
}

func (m *Manager) workerCount() int {
	count := m.cfg.Workflow.MaxConcurrentJobs
	if count < 1 {
		count = 1
	}
	return count
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *queue.Job) {
	m.mu.Lock()
	if job != nil {
		copy := *job
		m.lastJob = &copy
	} else {
		m.lastJob = nil
	}
	m.mu.Unlock()
}
