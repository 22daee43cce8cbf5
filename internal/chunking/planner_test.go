package chunking_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"quill/internal/chunking"
	"quill/internal/config"
	"quill/internal/media"
	"quill/internal/vad"
)

func testAudio(seconds float64) media.Audio {
	const rate = 1000
	return media.Audio{SampleRate: rate, Samples: make([]float64, int(seconds*rate))}
}

func defaultChunkingConfig() config.Chunking {
	cfg := config.Default()
	return cfg.Chunking
}

func assertCoverage(t *testing.T, chunks []chunking.Chunk, totalSeconds float64) {
	t.Helper()
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if chunks[0].Start != 0 {
		t.Fatalf("expected first chunk to start at 0, got %v", chunks[0].Start)
	}
	for i := 0; i+1 < len(chunks); i++ {
		if chunks[i].End != chunks[i+1].Start {
			t.Fatalf("gap between chunk %d end (%v) and chunk %d start (%v)",
				i, chunks[i].End, i+1, chunks[i+1].Start)
		}
		if chunks[i].Index != i {
			t.Fatalf("chunk %d has index %d", i, chunks[i].Index)
		}
	}
	last := chunks[len(chunks)-1]
	if math.Abs(last.End-totalSeconds) > 1e-9 {
		t.Fatalf("expected final chunk to end at %v, got %v", totalSeconds, last.End)
	}
}

func TestPlanEmptyAudio(t *testing.T) {
	planner := chunking.NewPlanner(defaultChunkingConfig())
	chunks := planner.Plan(media.Audio{SampleRate: 1000}, nil)
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for zero-duration audio, got %d", len(chunks))
	}
}

func TestPlanNoSpeechSingleChunk(t *testing.T) {
	planner := chunking.NewPlanner(defaultChunkingConfig())
	chunks := planner.Plan(testAudio(90), nil)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].HasSpeech {
		t.Fatal("expected has_speech=false for silence")
	}
	assertCoverage(t, chunks, 90)
}

func TestPlanSilent15sWithTarget30MergesIntoOneChunk(t *testing.T) {
	// Remaining exactly equals target/2: the merge convention is inclusive.
	planner := chunking.NewPlanner(defaultChunkingConfig())
	chunks := planner.Plan(testAudio(15), []vad.Interval{{Start: 0, End: 15}})
	if len(chunks) != 1 {
		t.Fatalf("expected single merged chunk, got %d", len(chunks))
	}
	assertCoverage(t, chunks, 15)
}

func TestPlanSplitsAtPause(t *testing.T) {
	planner := chunking.NewPlanner(defaultChunkingConfig())
	// Speech until 29s, a 2s pause, speech to 60s. Pause midpoint at 30s
	// lands exactly in the tolerance window.
	intervals := []vad.Interval{
		{Start: 0, End: 29},
		{Start: 31, End: 60},
	}
	chunks := planner.Plan(testAudio(60), intervals)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if math.Abs(chunks[0].End-30) > 1e-9 {
		t.Fatalf("expected split at pause midpoint 30, got %v", chunks[0].End)
	}
	assertCoverage(t, chunks, 60)
}

func TestPlanHardCapsWithoutPauses(t *testing.T) {
	cfg := defaultChunkingConfig()
	planner := chunking.NewPlanner(cfg)
	// One uninterrupted speech interval: no pauses anywhere.
	chunks := planner.Plan(testAudio(100), []vad.Interval{{Start: 0, End: 100}})
	assertCoverage(t, chunks, 100)
	for i, chunk := range chunks[:len(chunks)-1] {
		if chunk.Duration() > cfg.MaxSeconds+1e-9 {
			t.Fatalf("chunk %d exceeds max duration: %v", i, chunk.Duration())
		}
	}
	if chunks[0].Duration() != cfg.MaxSeconds {
		t.Fatalf("expected first chunk hard-capped at %v, got %v", cfg.MaxSeconds, chunks[0].Duration())
	}
}

func TestPlanForwardSearchPastIdeal(t *testing.T) {
	cfg := defaultChunkingConfig()
	planner := chunking.NewPlanner(cfg)
	// No pause within the tolerance window [25, 35], but a pause at 37-38
	// (midpoint 37.5) sits under the 40s hard cap.
	intervals := []vad.Interval{
		{Start: 0, End: 37},
		{Start: 38, End: 80},
	}
	chunks := planner.Plan(testAudio(80), intervals)
	assertCoverage(t, chunks, 80)
	if math.Abs(chunks[0].End-37.5) > 1e-9 {
		t.Fatalf("expected forward search to split at 37.5, got %v", chunks[0].End)
	}
}

func TestPlanForwardSearchAcceptsShortGaps(t *testing.T) {
	cfg := defaultChunkingConfig()
	planner := chunking.NewPlanner(cfg)
	// The only break is a 0.1s gap at 35.95-36.05: too short for the scored
	// window search, but the forward search takes any gap past the ideal
	// point rather than running to the hard cap.
	intervals := []vad.Interval{
		{Start: 0, End: 35.95},
		{Start: 36.05, End: 80},
	}
	chunks := planner.Plan(testAudio(80), intervals)
	assertCoverage(t, chunks, 80)
	if math.Abs(chunks[0].End-36) > 1e-9 {
		t.Fatalf("expected forward search to split at the 36s gap, got %v", chunks[0].End)
	}
}

func TestPlanOverlapExtendsAudioTailOnly(t *testing.T) {
	cfg := defaultChunkingConfig()
	cfg.OverlapSeconds = 0.5
	planner := chunking.NewPlanner(cfg)
	intervals := []vad.Interval{
		{Start: 0, End: 29},
		{Start: 31, End: 60},
	}
	chunks := planner.Plan(testAudio(60), intervals)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	// Logical boundaries stay contiguous.
	assertCoverage(t, chunks, 60)

	// Extracted samples of the first chunk run to End+overlap.
	wantSeconds := chunks[0].End - chunks[0].Start + cfg.OverlapSeconds
	gotSeconds := chunks[0].Audio.DurationSeconds()
	if math.Abs(gotSeconds-wantSeconds) > 0.01 {
		t.Fatalf("expected chunk audio of %vs, got %vs", wantSeconds, gotSeconds)
	}

	// The final chunk cannot extend past the end of the file.
	lastSeconds := chunks[1].Audio.DurationSeconds()
	if math.Abs(lastSeconds-(chunks[1].End-chunks[1].Start)) > 0.01 {
		t.Fatalf("expected final chunk audio clamped to file end, got %vs", lastSeconds)
	}
}

func TestPlanLongAudioCoverage(t *testing.T) {
	cfg := defaultChunkingConfig()
	planner := chunking.NewPlanner(cfg)
	// Speech with a 1s pause every 20s.
	var intervals []vad.Interval
	for start := 0.0; start < 300; start += 20 {
		intervals = append(intervals, vad.Interval{Start: start, End: start + 19})
	}
	chunks := planner.Plan(testAudio(300), intervals)
	assertCoverage(t, chunks, 300)
	for i, chunk := range chunks[:len(chunks)-1] {
		if chunk.Duration() > cfg.MaxSeconds+1e-9 {
			t.Fatalf("chunk %d exceeds max duration: %v", i, chunk.Duration())
		}
	}
}

func TestFindBestPause(t *testing.T) {
	t.Run("eligible pause within window", func(t *testing.T) {
		intervals := []vad.Interval{
			{Start: 0, End: 28},
			{Start: 29, End: 60},
		}
		split, found := chunking.FindBestPause(intervals, 25, 35, 30)
		if !found {
			t.Fatal("expected pause to be found")
		}
		if split < 25 || split > 35 {
			t.Fatalf("expected split inside window, got %v", split)
		}
		if math.Abs(split-28.5) > 1e-9 {
			t.Fatalf("expected midpoint 28.5, got %v", split)
		}
	})

	t.Run("no eligible pause returns ideal end", func(t *testing.T) {
		intervals := []vad.Interval{
			{Start: 0, End: 10},
			{Start: 10.05, End: 60}, // pause too short
		}
		split, found := chunking.FindBestPause(intervals, 25, 35, 30)
		if found {
			t.Fatal("expected no pause")
		}
		if split != 30 {
			t.Fatalf("expected idealEnd 30, got %v", split)
		}
	})

	t.Run("longer pause wins near same proximity", func(t *testing.T) {
		intervals := []vad.Interval{
			{Start: 0, End: 28.3},
			{Start: 28.7, End: 30.9}, // pause 28.3-28.7: 0.4s, mid 28.5
			{Start: 31.9, End: 60},   // pause 30.9-31.9: 1.0s, mid 31.4
		}
		split, found := chunking.FindBestPause(intervals, 25, 35, 30)
		if !found {
			t.Fatal("expected pause to be found")
		}
		if math.Abs(split-31.4) > 1e-9 {
			t.Fatalf("expected the long pause at 31.4 to win, got %v", split)
		}
	})

	t.Run("exact tie keeps first candidate", func(t *testing.T) {
		// Two identical pauses equidistant from idealEnd score identically;
		// the scan keeps the earlier one.
		intervals := []vad.Interval{
			{Start: 0, End: 27.75},
			{Start: 28.25, End: 31.75}, // pause mid 28, duration 0.5
			{Start: 32.25, End: 60},    // pause mid 32, duration 0.5
		}
		split, found := chunking.FindBestPause(intervals, 26, 34, 30)
		if !found {
			t.Fatal("expected pause to be found")
		}
		if math.Abs(split-28) > 1e-9 {
			t.Fatalf("expected first-encountered pause at 28, got %v", split)
		}
	})
}

func TestWriteChunks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "job-1")
	audio := media.Audio{SampleRate: 1000, Samples: make([]float64, 2000)}
	chunks := []chunking.Chunk{
		{Index: 0, Start: 0, End: 1, Audio: audio.Slice(0, 1)},
		{Index: 1, Start: 1, End: 2, Audio: audio.Slice(1, 2)},
	}

	paths, err := chunking.WriteChunks(dir, chunks)
	if err != nil {
		t.Fatalf("WriteChunks failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "chunk_0000.wav" || filepath.Base(paths[1]) != "chunk_0001.wav" {
		t.Fatalf("unexpected chunk names: %v", paths)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected chunk file %s: %v", path, err)
		}
	}

	if err := chunking.RemoveChunks(dir); err != nil {
		t.Fatalf("RemoveChunks failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected chunk dir removed, stat err=%v", err)
	}
}
