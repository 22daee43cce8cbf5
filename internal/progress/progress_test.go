package progress_test

import (
	"errors"
	"sync"
	"testing"

	"quill/internal/progress"
	"quill/internal/queue"
)

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	registry := progress.NewRegistry()

	var mu sync.Mutex
	var got []progress.Event
	for i := 0; i < 3; i++ {
		registry.Subscribe("job-1", progress.SubscriberFunc(func(event progress.Event) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, event)
			return nil
		}))
	}

	registry.Broadcast(progress.Event{JobID: "job-1", Status: queue.StatusProcessing, Stage: "Transcribing", Percent: 50})
	if len(got) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(got))
	}
	if got[0].Percent != 50 || got[0].Stage != "Transcribing" {
		t.Fatalf("unexpected event: %#v", got[0])
	}
}

func TestBroadcastIsScopedToJob(t *testing.T) {
	registry := progress.NewRegistry()

	delivered := 0
	registry.Subscribe("job-a", progress.SubscriberFunc(func(progress.Event) error {
		delivered++
		return nil
	}))

	registry.Broadcast(progress.Event{JobID: "job-b", Percent: 10})
	if delivered != 0 {
		t.Fatalf("expected no deliveries for other job, got %d", delivered)
	}
}

func TestFailingSubscriberIsDropped(t *testing.T) {
	registry := progress.NewRegistry()

	healthy := 0
	registry.Subscribe("job-1", progress.SubscriberFunc(func(progress.Event) error {
		healthy++
		return nil
	}))
	registry.Subscribe("job-1", progress.SubscriberFunc(func(progress.Event) error {
		return errors.New("connection closed")
	}))

	registry.Broadcast(progress.Event{JobID: "job-1", Percent: 25})
	if registry.SubscriberCount("job-1") != 1 {
		t.Fatalf("expected failing subscriber dropped, count=%d", registry.SubscriberCount("job-1"))
	}

	registry.Broadcast(progress.Event{JobID: "job-1", Percent: 50})
	if healthy != 2 {
		t.Fatalf("expected healthy subscriber to keep receiving, got %d deliveries", healthy)
	}
}

func TestUnsubscribe(t *testing.T) {
	registry := progress.NewRegistry()

	delivered := 0
	token := registry.Subscribe("job-1", progress.SubscriberFunc(func(progress.Event) error {
		delivered++
		return nil
	}))
	registry.Unsubscribe("job-1", token)
	registry.Broadcast(progress.Event{JobID: "job-1", Percent: 75})
	if delivered != 0 {
		t.Fatalf("expected no deliveries after unsubscribe, got %d", delivered)
	}
	if registry.SubscriberCount("job-1") != 0 {
		t.Fatal("expected empty registry for job")
	}
}

func TestConcurrentSubscribeBroadcast(t *testing.T) {
	registry := progress.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				token := registry.Subscribe("job-1", progress.SubscriberFunc(func(progress.Event) error { return nil }))
				registry.Broadcast(progress.Event{JobID: "job-1", Percent: float64(j)})
				registry.Unsubscribe("job-1", token)
			}
		}()
	}
	wg.Wait()

	if registry.SubscriberCount("job-1") != 0 {
		t.Fatalf("expected no leaked subscribers, got %d", registry.SubscriberCount("job-1"))
	}
}
