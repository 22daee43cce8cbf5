package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"quill/internal/chunking"
	"quill/internal/config"
	"quill/internal/services"
	"quill/internal/stage"
	"quill/internal/vad"
)

// SegmentChunk runs voice activity detection and carves the audio into
// transcription-sized chunk files.
type SegmentChunk struct {
	cfg       *config.Config
	segmenter *vad.Segmenter
	planner   *chunking.Planner
}

// NewSegmentChunk constructs the segmentation and chunking stage.
func NewSegmentChunk(cfg *config.Config, segmenter *vad.Segmenter, planner *chunking.Planner) *SegmentChunk {
	return &SegmentChunk{cfg: cfg, segmenter: segmenter, planner: planner}
}

// Prepare verifies audio was loaded by the previous stage.
func (s *SegmentChunk) Prepare(_ context.Context, st *stage.State) error {
	if len(st.Audio.Samples) == 0 {
		return services.Wrap(services.ErrFatalStage, "chunk", "prepare",
			"No audio loaded for chunking", nil)
	}
	return nil
}

// Execute detects speech, plans chunk boundaries, and writes the chunk
// files. No detected speech is not an error: the whole file becomes one
// chunk.
func (s *SegmentChunk) Execute(ctx context.Context, st *stage.State) error {
	intervals, err := s.segmenter.Segment(ctx, st.Audio)
	if err != nil {
		return services.Wrap(services.ErrFatalStage, "chunk", "voice activity detection",
			"Speech detection failed", err)
	}
	st.Intervals = intervals

	chunks := s.planner.Plan(st.Audio, intervals)
	if len(chunks) == 0 {
		return services.Wrap(services.ErrFatalStage, "chunk", "plan",
			"Audio has zero duration", nil)
	}

	chunkDir := filepath.Join(s.cfg.ChunksDir(), st.Job.UUID)
	paths, err := chunking.WriteChunks(chunkDir, chunks)
	if err != nil {
		return services.Wrap(services.ErrFatalStage, "chunk", "write chunks",
			"Chunk files could not be written", err)
	}

	st.Chunks = chunks
	st.ChunkDir = chunkDir
	st.ChunkPaths = paths
	st.Progress(percentChunked, fmt.Sprintf("Planned %d chunks across %d speech intervals", len(chunks), len(intervals)))
	return nil
}

// HealthCheck is always ready; chunking has no external dependencies.
func (s *SegmentChunk) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("chunk")
}
