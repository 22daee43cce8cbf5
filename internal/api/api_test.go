package api_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quill/internal/api"
	"quill/internal/logging"
	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/testsupport"
)

func TestSubmitValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	valid := cfg.Paths.StorageDir + "/talk.mp3"
	testsupport.WriteFile(t, valid, 2048)
	oversize := cfg.Paths.StorageDir + "/huge.mp3"
	testsupport.WriteFile(t, oversize, 2048)
	badExt := cfg.Paths.StorageDir + "/talk.exe"
	testsupport.WriteFile(t, badExt, 2048)

	tests := []struct {
		name    string
		params  api.SubmitParams
		maxSize int64
		wantErr bool
	}{
		{name: "valid audio file", params: api.SubmitParams{SourcePath: valid}},
		{name: "missing path", params: api.SubmitParams{SourcePath: ""}, wantErr: true},
		{name: "nonexistent file", params: api.SubmitParams{SourcePath: "/does/not/exist.mp3"}, wantErr: true},
		{name: "directory", params: api.SubmitParams{SourcePath: cfg.Paths.StorageDir}, wantErr: true},
		{name: "disallowed extension", params: api.SubmitParams{SourcePath: badExt}, wantErr: true},
		{name: "oversize file", params: api.SubmitParams{SourcePath: oversize}, maxSize: 1024, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			caseCfg := *cfg
			if tc.maxSize > 0 {
				caseCfg.Ingest.MaxUploadBytes = tc.maxSize
			}
			job, err := api.Submit(ctx, &caseCfg, store, logging.NewNop(), tc.params)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("error %v is not a validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if job.Checksum == "" {
				t.Fatal("submission must record the source checksum")
			}
			if job.Status != queue.StatusQueued {
				t.Fatalf("status = %s, want queued", job.Status)
			}
		})
	}
}

func TestCancelOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	queued := testsupport.NewJob(t, store, "/tmp/a.mp3")
	outcome, err := api.Cancel(ctx, store, queued.ID)
	if err != nil {
		t.Fatalf("Cancel queued: %v", err)
	}
	if !outcome.Immediate || outcome.Job.Status != queue.StatusCancelled {
		t.Fatalf("queued cancel outcome = %+v", outcome)
	}

	processing := testsupport.NewJob(t, store, "/tmp/b.mp3")
	processing.Status = queue.StatusProcessing
	if err := store.Update(ctx, processing); err != nil {
		t.Fatalf("Update: %v", err)
	}
	outcome, err = api.Cancel(ctx, store, processing.ID)
	if err != nil {
		t.Fatalf("Cancel processing: %v", err)
	}
	if outcome.Immediate {
		t.Fatal("processing cancel must be cooperative, not immediate")
	}
	if !outcome.Job.CancelRequested {
		t.Fatal("processing cancel must set the flag")
	}

	if _, err := api.Cancel(ctx, store, queued.ID); err == nil {
		t.Fatal("cancelling a terminal job must fail")
	}
	if _, err := api.Cancel(ctx, store, 99999); err == nil {
		t.Fatal("cancelling an unknown job must fail")
	}
}

func seedResult(t *testing.T, store *queue.Store) *queue.Job {
	t.Helper()
	ctx := context.Background()
	job := testsupport.NewJob(t, store, "/tmp/talk.mp3")
	segments := []queue.Segment{
		{JobID: job.ID, ChunkIndex: 0, StartSeconds: 0, EndSeconds: 75.5, Text: "hello there", Speaker: "SPEAKER_00"},
		{JobID: job.ID, ChunkIndex: 1, StartSeconds: 75.5, EndSeconds: 80.25, Text: "goodbye", Speaker: "SPEAKER_01"},
	}
	if err := store.ReplaceSegments(ctx, job.ID, segments); err != nil {
		t.Fatalf("ReplaceSegments: %v", err)
	}
	if err := store.SaveTranslation(ctx, queue.Translation{JobID: job.ID, TargetLanguage: "spa", Text: "hola adios"}); err != nil {
		t.Fatalf("SaveTranslation: %v", err)
	}
	if err := store.ReplaceDetectedLanguages(ctx, job.ID, []queue.DetectedLanguage{{JobID: job.ID, Code: "eng", Confidence: 0.7, Source: "script"}}); err != nil {
		t.Fatalf("ReplaceDetectedLanguages: %v", err)
	}
	return job
}

func TestExportFormats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	job := seedResult(t, store)

	text, err := api.Export(ctx, store, job.ID, api.FormatText)
	if err != nil {
		t.Fatalf("Export text: %v", err)
	}
	if text != "hello there goodbye\n" {
		t.Fatalf("text = %q", text)
	}

	srt, err := api.Export(ctx, store, job.ID, api.FormatSRT)
	if err != nil {
		t.Fatalf("Export srt: %v", err)
	}
	if !strings.Contains(srt, "00:01:15,500 --> 00:01:20,250") {
		t.Fatalf("srt missing truncated timestamps:\n%s", srt)
	}

	vtt, err := api.Export(ctx, store, job.ID, api.FormatVTT)
	if err != nil {
		t.Fatalf("Export vtt: %v", err)
	}
	if !strings.HasPrefix(vtt, "WEBVTT") || !strings.Contains(vtt, "00:01:15.500") {
		t.Fatalf("vtt rendering wrong:\n%s", vtt)
	}

	if _, err := api.Export(ctx, store, job.ID, "pdf"); err == nil {
		t.Fatal("unknown format must be rejected")
	}
	empty := testsupport.NewJob(t, store, "/tmp/empty.mp3")
	if _, err := api.Export(ctx, store, empty.ID, api.FormatText); err == nil {
		t.Fatal("export without stored segments must fail")
	}
}

func TestTranscriptView(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	job := seedResult(t, store)

	view, err := api.Transcript(ctx, store, job.ID)
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if view == nil {
		t.Fatal("expected transcript view")
	}
	if view.FullText != "hello there goodbye" {
		t.Fatalf("full text = %q", view.FullText)
	}
	if len(view.Segments) != 2 {
		t.Fatalf("segments = %d", len(view.Segments))
	}
	if view.TranslatedText != "hola adios" || view.TargetLanguage != "spa" {
		t.Fatalf("translation view = %+v", view)
	}
	if view.Language == nil || view.Language.Code != "eng" {
		t.Fatalf("language view = %+v", view.Language)
	}

	missing, err := api.Transcript(ctx, store, 99999)
	if err != nil {
		t.Fatalf("Transcript missing: %v", err)
	}
	if missing != nil {
		t.Fatal("unknown job must yield nil view")
	}
}

func TestQueueServiceViews(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "/tmp/a.mp3")

	svc := api.NewQueueService(store)
	views, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].ID != job.ID {
		t.Fatalf("views = %+v", views)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["queued"] != 1 || stats["completed"] != 0 {
		t.Fatalf("stats = %v", stats)
	}

	view, err := svc.DescribeUUID(ctx, job.UUID)
	if err != nil {
		t.Fatalf("DescribeUUID: %v", err)
	}
	if view == nil || view.UUID != job.UUID {
		t.Fatalf("view = %+v", view)
	}
}
