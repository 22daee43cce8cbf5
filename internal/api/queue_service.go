package api

import (
	"context"

	"quill/internal/queue"
)

// JobReader abstracts the store interactions needed for API queries.
type JobReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Job, error)
	GetByUUID(ctx context.Context, id string) (*queue.Job, error)
}

// QueueService exposes read-only job queries returning API DTOs.
type QueueService struct {
	store JobReader
}

// NewQueueService constructs a QueueService around the provided reader.
func NewQueueService(store JobReader) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

// List returns jobs filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]JobView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Stats returns job counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// Describe fetches a single job by numeric id.
func (s *QueueService) Describe(ctx context.Context, id int64) (*JobView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetByID(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	view := FromJob(job)
	return &view, nil
}

// DescribeUUID fetches a single job by its public UUID.
func (s *QueueService) DescribeUUID(ctx context.Context, id string) (*JobView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetByUUID(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	view := FromJob(job)
	return &view, nil
}
