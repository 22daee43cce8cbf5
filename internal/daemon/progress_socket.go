package daemon

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"quill/internal/logging"
	"quill/internal/progress"
	"quill/internal/queue"
)

// handleProgressSocket streams live progress events for one job over a
// WebSocket at /ws/jobs/{id}. The id may be the numeric job id or its
// public UUID. The initial job state is sent on connect so late
// subscribers see where the job stands.
func (s *apiServer) handleProgressSocket(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/ws/jobs/")
	if key == "" || strings.Contains(key, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	ctx := r.Context()
	job, err := s.daemon.store.GetByUUID(ctx, key)
	if err == nil && job == nil {
		if id, parseErr := strconv.ParseInt(key, 10, 64); parseErr == nil {
			job, err = s.daemon.store.GetByID(ctx, id)
		}
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log().Warn("websocket accept failed", logging.Error(err))
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	// Buffered so a slow client is dropped by the registry instead of
	// stalling the pipeline worker.
	events := make(chan progress.Event, 32)
	registry := s.daemon.workflow.Registry()
	token := registry.Subscribe(job.UUID, progress.SubscriberFunc(func(event progress.Event) error {
		select {
		case events <- event:
			return nil
		default:
			return errSlowSubscriber
		}
	}))
	defer registry.Unsubscribe(job.UUID, token)

	initial := progress.Event{
		JobID:   job.UUID,
		Status:  job.Status,
		Stage:   job.ProgressStage,
		Message: job.ProgressMessage,
		Percent: job.ProgressPercent,
	}
	if err := wsjson.Write(ctx, conn, initial); err != nil {
		return
	}
	if job.IsTerminal() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			if err := wsjson.Write(ctx, conn, event); err != nil {
				return
			}
			if queue.IsTerminal(event.Status) {
				return
			}
		}
	}
}

var errSlowSubscriber = errors.New("subscriber buffer full")
