package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/daemon"
	"quill/internal/logging"
	"quill/internal/progress"
	"quill/internal/queue"
	"quill/internal/stage"
	"quill/internal/testsupport"
	"quill/internal/workflow"
)

type idleStage struct{}

func (idleStage) Prepare(context.Context, *stage.State) error { return nil }
func (idleStage) Execute(context.Context, *stage.State) error { return nil }
func (idleStage) HealthCheck(context.Context) stage.Health    { return stage.Healthy("idle") }

func startTestDaemon(t *testing.T, mutate func(*config.Config)) (*daemon.Daemon, *queue.Store, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	if mutate != nil {
		mutate(cfg)
	}
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop(), nil, progress.NewRegistry(), []workflow.Stage{
		{Name: "Idle", Handler: idleStage{}},
	})
	d, err := daemon.New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, store, "http://" + d.APIAddr()
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop(), nil, progress.NewRegistry(), []workflow.Stage{
		{Name: "Idle", Handler: idleStage{}},
	})

	first, err := daemon.New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	secondCfg := *cfg
	secondCfg.Paths.APIBind = ""
	secondManager := workflow.NewManager(&secondCfg, store, logging.NewNop(), nil, progress.NewRegistry(), []workflow.Stage{
		{Name: "Idle", Handler: idleStage{}},
	})
	second, err := daemon.New(&secondCfg, store, logging.NewNop(), secondManager)
	if err != nil {
		t.Fatalf("daemon.New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon instance must not acquire the lock")
	}
}

func TestAPIStatusEndpoint(t *testing.T) {
	_, _, base := startTestDaemon(t, nil)

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
	var payload struct {
		Running  bool `json:"running"`
		Workflow struct {
			Running bool `json:"running"`
		} `json:"workflow"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Running || !payload.Workflow.Running {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestAPISubmitListAndCancel(t *testing.T) {
	_, store, base := startTestDaemon(t, func(cfg *config.Config) {
		// Keep the worker from claiming jobs so queue state is stable.
		cfg.Workflow.QueuePollInterval = 3600
	})

	audio := t.TempDir() + "/meeting.mp3"
	testsupport.WriteFile(t, audio, 4096)

	body, _ := json.Marshal(map[string]any{"sourcePath": audio, "title": "Meeting"})
	resp, err := http.Post(base+"/api/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST jobs: %v", err)
	}
	var created struct {
		Job struct {
			ID     int64  `json:"id"`
			UUID   string `json:"uuid"`
			Status string `json:"status"`
		} `json:"job"`
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode submit: %v", err)
	}
	resp.Body.Close()
	if created.Job.Status != "queued" || created.Job.UUID == "" {
		t.Fatalf("created = %+v", created.Job)
	}

	resp, err = http.Get(base + "/api/jobs")
	if err != nil {
		t.Fatalf("GET jobs: %v", err)
	}
	var listed struct {
		Jobs []struct {
			ID int64 `json:"id"`
		} `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if len(listed.Jobs) != 1 || listed.Jobs[0].ID != created.Job.ID {
		t.Fatalf("listed = %+v", listed)
	}

	resp, err = http.Post(fmt.Sprintf("%s/api/jobs/%d/cancel", base, created.Job.ID), "application/json", nil)
	if err != nil {
		t.Fatalf("POST cancel: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", resp.StatusCode)
	}
	job, err := store.GetByID(context.Background(), created.Job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != queue.StatusCancelled {
		t.Fatalf("status after cancel = %s", job.Status)
	}

	// Cancelling a terminal job conflicts.
	resp, err = http.Post(fmt.Sprintf("%s/api/jobs/%d/cancel", base, created.Job.ID), "application/json", nil)
	if err != nil {
		t.Fatalf("POST cancel again: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second cancel status = %d", resp.StatusCode)
	}
}

func TestAPISubmitRejectsInvalidInput(t *testing.T) {
	_, _, base := startTestDaemon(t, nil)

	body, _ := json.Marshal(map[string]any{"sourcePath": "/does/not/exist.mp3"})
	resp, err := http.Post(base+"/api/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST jobs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	_, _, base := startTestDaemon(t, func(cfg *config.Config) {
		cfg.Paths.APIToken = "sekret"
	})

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, base+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with token = %d", resp.StatusCode)
	}
}

func TestAPIExportUnknownJob(t *testing.T) {
	_, _, base := startTestDaemon(t, nil)

	resp, err := http.Get(base + "/api/jobs/424242/export?format=srt")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	d, _, _ := startTestDaemon(t, nil)
	d.Stop()
	d.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !d.Status(context.Background()).Running {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("daemon still reports running after Stop")
}
