// Package progress fans job progress events out to live subscribers, such
// as websocket clients watching a job. Delivery is best-effort and
// at-most-once: a subscriber that fails to accept an event is dropped from
// the registry, and no subscriber can stall the pipeline or its peers.
package progress

import (
	"sync"

	"quill/internal/queue"
)

// Event is one progress checkpoint for a job.
type Event struct {
	JobID   string       `json:"job_id"`
	Status  queue.Status `json:"status"`
	Stage   string       `json:"stage"`
	Message string       `json:"message,omitempty"`
	Percent float64      `json:"percent"`
}

// Subscriber receives progress events for one job. Send must not block
// indefinitely; returning an error removes the subscriber.
type Subscriber interface {
	Send(event Event) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(event Event) error

// Send implements Subscriber.
func (f SubscriberFunc) Send(event Event) error {
	return f(event)
}

// Registry tracks progress subscribers keyed by job id.
type Registry struct {
	mu   sync.Mutex
	subs map[string]map[int64]Subscriber
	next int64
}

// NewRegistry returns an empty subscriber registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[int64]Subscriber)}
}

// Subscribe registers a subscriber for a job and returns a token for
// Unsubscribe.
func (r *Registry) Subscribe(jobID string, sub Subscriber) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	token := r.next
	if r.subs[jobID] == nil {
		r.subs[jobID] = make(map[int64]Subscriber)
	}
	r.subs[jobID][token] = sub
	return token
}

// Unsubscribe removes a previously registered subscriber. Unknown tokens
// are ignored.
func (r *Registry) Unsubscribe(jobID string, token int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.subs[jobID]
	if !ok {
		return
	}
	delete(subs, token)
	if len(subs) == 0 {
		delete(r.subs, jobID)
	}
}

// Broadcast delivers an event to every subscriber of the event's job.
// Subscribers whose Send returns an error are dropped.
func (r *Registry) Broadcast(event Event) {
	r.mu.Lock()
	subs := r.subs[event.JobID]
	targets := make(map[int64]Subscriber, len(subs))
	for token, sub := range subs {
		targets[token] = sub
	}
	r.mu.Unlock()

	var failed []int64
	for token, sub := range targets {
		if err := sub.Send(event); err != nil {
			failed = append(failed, token)
		}
	}
	for _, token := range failed {
		r.Unsubscribe(event.JobID, token)
	}
}

// SubscriberCount reports how many subscribers are watching a job.
func (r *Registry) SubscriberCount(jobID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[jobID])
}
