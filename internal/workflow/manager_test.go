package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quill/internal/logging"
	"quill/internal/progress"
	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/stage"
	"quill/internal/testsupport"
	"quill/internal/workflow"
)

type stubStage struct {
	name       string
	mu         sync.Mutex
	executions int
	execute    func(context.Context, *stage.State) error
}

func (s *stubStage) Prepare(context.Context, *stage.State) error { return nil }

func (s *stubStage) Execute(ctx context.Context, st *stage.State) error {
	s.mu.Lock()
	s.executions++
	s.mu.Unlock()
	if s.execute != nil {
		return s.execute(ctx, st)
	}
	return nil
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(s.name)
}

func (s *stubStage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executions
}

func newTestManager(t *testing.T, stages []workflow.Stage) (*workflow.Manager, *queue.Store, *progress.Registry) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.HeartbeatInterval = 1
	cfg.Workflow.HeartbeatTimeout = 60
	store := testsupport.MustOpenStore(t, cfg)
	registry := progress.NewRegistry()
	manager := workflow.NewManager(cfg, store, logging.NewNop(), nil, registry, stages)
	return manager, store, registry
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if job != nil && job.Status == want {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %d never reached status %s", id, want)
	return nil
}

func TestManagerProcessesJobToCompletion(t *testing.T) {
	first := &stubStage{name: "first"}
	second := &stubStage{name: "second", execute: func(_ context.Context, st *stage.State) error {
		st.Progress(50, "halfway")
		return nil
	}}
	manager, store, _ := newTestManager(t, []workflow.Stage{
		{Name: "First", Handler: first},
		{Name: "Second", Handler: second},
	})

	job := testsupport.NewJob(t, store, "/tmp/audio.mp3")

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	done := waitForStatus(t, store, job.ID, queue.StatusCompleted)
	if first.count() != 1 || second.count() != 1 {
		t.Fatalf("executions = %d/%d, want 1/1", first.count(), second.count())
	}
	if done.ProgressPercent != 100 {
		t.Fatalf("percent = %v, want 100", done.ProgressPercent)
	}
	if done.CompletedAt == nil {
		t.Fatal("completed job must carry a completion time")
	}
}

func TestManagerMarksJobFailedOnStageError(t *testing.T) {
	boom := &stubStage{name: "boom", execute: func(context.Context, *stage.State) error {
		return services.Wrap(services.ErrFatalStage, "boom", "execute", "Audio conversion failed", errors.New("exit status 1"))
	}}
	after := &stubStage{name: "after"}
	manager, store, _ := newTestManager(t, []workflow.Stage{
		{Name: "Boom", Handler: boom},
		{Name: "After", Handler: after},
	})

	job := testsupport.NewJob(t, store, "/tmp/audio.mp3")

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	failed := waitForStatus(t, store, job.ID, queue.StatusFailed)
	if failed.ErrorMessage == "" {
		t.Fatal("failed job must carry an error message")
	}
	if after.count() != 0 {
		t.Fatal("stages after a failure must not run")
	}
}

func TestManagerSkipsStagesPerJob(t *testing.T) {
	skipped := &stubStage{name: "skipped"}
	final := &stubStage{name: "final"}
	manager, store, _ := newTestManager(t, []workflow.Stage{
		{
			Name:    "Skipped",
			Handler: skipped,
			Skip:    func(*stage.State) bool { return true },
		},
		{Name: "Final", Handler: final},
	})

	job := testsupport.NewJob(t, store, "/tmp/audio.mp3")

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	waitForStatus(t, store, job.ID, queue.StatusCompleted)
	if skipped.count() != 0 {
		t.Fatal("skip rule must prevent stage execution")
	}
	if final.count() != 1 {
		t.Fatalf("final executions = %d, want 1", final.count())
	}
}

func TestManagerCancelsBetweenStages(t *testing.T) {
	var store *queue.Store
	canceller := &stubStage{name: "canceller", execute: func(ctx context.Context, st *stage.State) error {
		_, err := store.RequestCancel(ctx, st.Job.ID)
		return err
	}}
	never := &stubStage{name: "never"}
	manager, s, _ := newTestManager(t, []workflow.Stage{
		{Name: "Canceller", Handler: canceller},
		{Name: "Never", Handler: never},
	})
	store = s

	job := testsupport.NewJob(t, store, "/tmp/audio.mp3")

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	cancelled := waitForStatus(t, store, job.ID, queue.StatusCancelled)
	if never.count() != 0 {
		t.Fatal("stages after a cancellation must not run")
	}
	if cancelled.ErrorMessage != queue.UserCancelReason {
		t.Fatalf("error message = %q, want %q", cancelled.ErrorMessage, queue.UserCancelReason)
	}
}

func TestManagerBroadcastsProgress(t *testing.T) {
	worker := &stubStage{name: "worker", execute: func(_ context.Context, st *stage.State) error {
		st.Progress(40, "working")
		return nil
	}}
	manager, store, registry := newTestManager(t, []workflow.Stage{
		{Name: "Worker", Handler: worker},
	})

	job := testsupport.NewJob(t, store, "/tmp/audio.mp3")

	var mu sync.Mutex
	var events []progress.Event
	registry.Subscribe(job.UUID, progress.SubscriberFunc(func(event progress.Event) error {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
		return nil
	}))

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	waitForStatus(t, store, job.ID, queue.StatusCompleted)

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		count := len(events)
		last := progress.Event{}
		if count > 0 {
			last = events[count-1]
		}
		mu.Unlock()
		if count > 0 && last.Status == queue.StatusCompleted {
			if last.Percent != 100 {
				t.Fatalf("final percent = %v, want 100", last.Percent)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("never observed completion event")
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	sawMidpoint := false
	for _, event := range events {
		if event.Message == "working" && event.Percent == 40 {
			sawMidpoint = true
		}
	}
	if !sawMidpoint {
		t.Fatal("intra-stage checkpoint never reached subscribers")
	}
}

func TestManagerStatusReportsStageHealth(t *testing.T) {
	manager, _, _ := newTestManager(t, []workflow.Stage{
		{Name: "Only", Handler: &stubStage{name: "only"}},
	})

	summary := manager.Status(context.Background())
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	health, ok := summary.StageHealth["Only"]
	if !ok || !health.Ready {
		t.Fatalf("stage health = %+v", summary.StageHealth)
	}
}
